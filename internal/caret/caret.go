// Package caret tracks the selection inside an editable element.
//
// A Caret owns the editor root element and the current Range within it. It
// answers the ancestry questions the formatter asks (nearest element, nearest
// block) and supports a save/restore discipline around tree mutations:
// saved boundaries are anchored on nodes, so moving the nodes that hold the
// selection does not lose it.
//
// The marker codec in markers.go builds a root and range from HTML where
// "[" and "]" mark the selection and "|" a collapsed caret. A backslash
// makes any of them literal.
//
// A Caret is not safe for concurrent use.
package caret

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

// Caret is the selection within an editor root element.
type Caret struct {
	root  *html.Node
	rng   Range
	saved []savedRange
}

// New creates a caret for root, collapsed at the end of its content.
func New(root *html.Node) *Caret {
	return &Caret{
		root: root,
		rng:  Collapsed(root, dom.ChildCount(root)),
	}
}

// NewWithRange creates a caret for root with the given selection.
func NewWithRange(root *html.Node, r Range) (*Caret, error) {
	c := New(root)
	if err := c.SetRange(r); err != nil {
		return nil, err
	}
	return c, nil
}

// Element returns the editor root element.
func (c *Caret) Element() *html.Node {
	return c.root
}

// Range returns the current selection.
func (c *Caret) Range() Range {
	return c.rng
}

// SetRange replaces the selection after validating both boundaries.
func (c *Caret) SetRange(r Range) error {
	if err := c.check(r.StartContainer, r.StartOffset); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := c.check(r.EndContainer, r.EndOffset); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	c.rng = r
	return nil
}

// Collapse places a collapsed caret at (node, offset).
func (c *Caret) Collapse(node *html.Node, offset int) error {
	return c.SetRange(Collapsed(node, offset))
}

// SelectNode selects n as a whole, bounded by its parent.
func (c *Caret) SelectNode(n *html.Node) error {
	if n == nil || n.Parent == nil {
		return ErrOutsideRoot
	}
	i := dom.Index(n)
	return c.SetRange(Range{
		StartContainer: n.Parent,
		StartOffset:    i,
		EndContainer:   n.Parent,
		EndOffset:      i + 1,
	})
}

// SelectText selects the byte range [start, end) of the root's text.
func (c *Caret) SelectText(start, end int) error {
	if start > end {
		start, end = end, start
	}
	total := len(dom.TextContent(c.root))
	if start < 0 || end > total {
		return ErrOffset
	}
	sc, so := Locate(c.root, start, start != end)
	ec, eo := Locate(c.root, end, false)
	return c.SetRange(Range{
		StartContainer: sc,
		StartOffset:    so,
		EndContainer:   ec,
		EndOffset:      eo,
	})
}

// Offsets returns the selection as byte offsets into the text of anchor.
// It reports false when the selection lies outside anchor.
func (c *Caret) Offsets(anchor *html.Node) (start, end int, ok bool) {
	start, ok = TextOffset(anchor, c.rng.StartContainer, c.rng.StartOffset)
	if !ok {
		return 0, 0, false
	}
	end, ok = TextOffset(anchor, c.rng.EndContainer, c.rng.EndOffset)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// Parent returns the nearest element enclosing the selection. A selection
// spanning exactly one element child (an image, say) reports that element.
// It returns nil when the selection is not inside any element below the
// root.
func (c *Caret) Parent() *html.Node {
	r := c.rng
	n := r.CommonAncestor()
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && r.StartContainer == r.EndContainer && r.EndOffset == r.StartOffset+1 {
		if ch := dom.ChildAt(n, r.StartOffset); dom.IsElement(ch) {
			n = ch
		}
	}
	if n.Type != html.ElementNode {
		n = n.Parent
	}
	if n == nil || n == c.root || !dom.Contains(c.root, n) {
		return nil
	}
	return n
}

// BlockParent returns the nearest block-level element enclosing the
// selection, or nil. A selection spanning several top-level blocks reports
// the block holding its start.
func (c *Caret) BlockParent() *html.Node {
	if b := dom.Closest(c.Parent(), c.root, dom.IsBlock); b != nil {
		return b
	}
	r := c.rng
	if r.IsCollapsed() || r.CommonAncestor() != c.root {
		return nil
	}
	start := r.StartContainer
	if start.Type == html.ElementNode {
		start = dom.ChildAt(start, r.StartOffset)
	}
	return dom.Closest(start, c.root, dom.IsBlock)
}

// Save pushes the current selection. Saved boundaries follow their nodes
// when the tree is rearranged.
func (c *Caret) Save() {
	c.saved = append(c.saved, savedRange{
		start: capture(c.rng.StartContainer, c.rng.StartOffset),
		end:   capture(c.rng.EndContainer, c.rng.EndOffset),
	})
}

// Restore pops the most recently saved selection. When a saved node has
// left the tree the caret collapses at the end of the root and Restore
// reports false.
func (c *Caret) Restore() bool {
	if len(c.saved) == 0 {
		return false
	}
	s := c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]

	sc, so := s.start.resolve()
	ec, eo := s.end.resolve()
	if sc == nil || ec == nil || !dom.Contains(c.root, sc) || !dom.Contains(c.root, ec) {
		c.rng = Collapsed(c.root, dom.ChildCount(c.root))
		return false
	}
	c.rng = Range{StartContainer: sc, StartOffset: so, EndContainer: ec, EndOffset: eo}
	return true
}

// HTML renders the root content with selection markers.
func (c *Caret) HTML() (string, error) {
	return Render(c.root, c.rng)
}

func (c *Caret) check(n *html.Node, offset int) error {
	if n == nil || !dom.Contains(c.root, n) {
		return ErrOutsideRoot
	}
	limit := dom.ChildCount(n)
	if n.Type == html.TextNode {
		limit = len(n.Data)
	}
	if offset < 0 || offset > limit {
		return ErrOffset
	}
	return nil
}
