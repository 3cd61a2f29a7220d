package caret

import (
	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

// Range is a pair of boundary points in a node tree.
//
// A boundary in a text node counts bytes into its data; a boundary in an
// element counts children, so (p, 1) sits between the first and second
// child of p. Range is a value type; mutating the tree does not update it.
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// Collapsed returns a collapsed range at (node, offset).
func Collapsed(node *html.Node, offset int) Range {
	return Range{
		StartContainer: node,
		StartOffset:    offset,
		EndContainer:   node,
		EndOffset:      offset,
	}
}

// IsZero reports whether the range has no containers.
func (r Range) IsZero() bool {
	return r.StartContainer == nil && r.EndContainer == nil
}

// IsCollapsed reports whether start and end are the same point.
func (r Range) IsCollapsed() bool {
	return r.StartContainer == r.EndContainer && r.StartOffset == r.EndOffset
}

// CommonAncestor returns the deepest node containing both boundaries.
func (r Range) CommonAncestor() *html.Node {
	if r.StartContainer == nil || r.EndContainer == nil {
		return nil
	}
	for a := r.StartContainer; a != nil; a = a.Parent {
		if dom.Contains(a, r.EndContainer) {
			return a
		}
	}
	return nil
}

// boundary is a point anchored on nodes rather than on child indexes, so it
// survives reparenting of the nodes it refers to.
type boundary struct {
	node   *html.Node
	offset int
	before *html.Node
	atEnd  bool
}

func capture(container *html.Node, offset int) boundary {
	if container.Type == html.TextNode {
		return boundary{node: container, offset: offset}
	}
	if ch := dom.ChildAt(container, offset); ch != nil {
		return boundary{before: ch}
	}
	return boundary{node: container, atEnd: true}
}

func (b boundary) resolve() (*html.Node, int) {
	switch {
	case b.before != nil:
		if b.before.Parent == nil {
			return nil, 0
		}
		return b.before.Parent, dom.Index(b.before)
	case b.atEnd:
		return b.node, dom.ChildCount(b.node)
	default:
		return b.node, min(b.offset, len(b.node.Data))
	}
}

type savedRange struct {
	start boundary
	end   boundary
}

// TextOffset converts the boundary (container, offset) into a byte offset
// into the concatenated text of anchor. It reports false when container is
// not inside anchor.
func TextOffset(anchor, container *html.Node, offset int) (int, bool) {
	if anchor == nil || container == nil || !dom.Contains(anchor, container) {
		return 0, false
	}
	count := 0
	dom.Walk(anchor, func(n *html.Node) bool {
		if n == container {
			if n.Type == html.TextNode {
				count += min(offset, len(n.Data))
				return false
			}
			i := 0
			for ch := n.FirstChild; ch != nil && i < offset; ch = ch.NextSibling {
				count += len(dom.TextContent(ch))
				i++
			}
			return false
		}
		if n.Type == html.TextNode {
			count += len(n.Data)
		}
		return true
	})
	return count, true
}

// Locate maps a byte offset into the text of anchor back to a boundary
// inside a text node. At a seam between two text nodes, forward picks the
// start of the later node and !forward the end of the earlier one. Without
// any text the boundary falls at the end of anchor.
func Locate(anchor *html.Node, off int, forward bool) (*html.Node, int) {
	type candidate struct {
		node *html.Node
		base int
	}
	var cands []candidate
	base := 0
	for _, t := range dom.TextNodes(anchor) {
		l := len(t.Data)
		if base <= off && off <= base+l {
			cands = append(cands, candidate{t, base})
		}
		base += l
	}
	if len(cands) == 0 {
		return anchor, dom.ChildCount(anchor)
	}
	if forward {
		for _, c := range cands {
			if off < c.base+len(c.node.Data) {
				return c.node, off - c.base
			}
		}
		last := cands[len(cands)-1]
		return last.node, off - last.base
	}
	for _, c := range cands {
		if off > c.base {
			return c.node, off - c.base
		}
	}
	return cands[0].node, off - cands[0].base
}
