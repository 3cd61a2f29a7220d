package engine

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

// formatBlockTags are the block elements formatblock accepts.
var formatBlockTags = map[string]bool{
	"p":          true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"blockquote": true,
	"div":        true,
	"pre":        true,
	"address":    true,
}

// cellTags hold text but cannot be renamed without breaking their parent.
var cellTags = map[string]bool{"li": true, "td": true, "th": true, "dd": true, "dt": true}

// groupTags only hold other blocks or items.
var groupTags = map[string]bool{"ul": true, "ol": true, "dl": true, "table": true, "hr": true}

// normalizeBlockTag turns "<h2>", "H2" or "h2" into "h2".
func normalizeBlockTag(param string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(param), "<>"))
}

func (d *Document) formatBlock(param string) bool {
	tag := normalizeBlockTag(param)
	if !formatBlockTags[tag] {
		return false
	}

	nodes := d.selectedNodes()
	if len(nodes) == 0 {
		d.insertEmptyBlock(tag)
		return true
	}

	d.caret.Save()
	seen := make(map[*html.Node]bool)
	for _, n := range nodes {
		b := d.blockOf(n)
		if b == nil {
			seen[d.wrapInlineRun(n, tag)] = true
			continue
		}
		if seen[b] {
			continue
		}
		seen[b] = true

		switch btag := dom.Tag(b); {
		case groupTags[btag]:
		case cellTags[btag]:
			inner := dom.NewElement(tag)
			dom.MoveChildren(inner, b)
			b.AppendChild(inner)
			seen[inner] = true
		default:
			dom.Rename(b, tag)
		}
	}
	d.caret.Restore()
	return true
}

// insertEmptyBlock inserts an empty block at a caret sitting directly in the
// root and moves the caret into it.
func (d *Document) insertEmptyBlock(tag string) {
	el := dom.NewElement(tag)
	text := dom.NewText("")
	el.AppendChild(text)
	d.insertNodes([]*html.Node{el})
	_ = d.caret.Collapse(text, 0)
}

// outerBlock returns the nearest block-level element holding n, wrapping
// loose inline content in a separator paragraph first.
func (d *Document) outerBlock(n *html.Node) *html.Node {
	if b := dom.Closest(n, d.caret.Element(), dom.IsBlock); b != nil {
		return b
	}
	return d.wrapInlineRun(n, d.separator)
}

func (d *Document) indent() bool {
	nodes := d.selectedNodes()
	if len(nodes) == 0 {
		return false
	}

	d.caret.Save()
	defer d.caret.Restore()

	var quote *html.Node
	seen := make(map[*html.Node]bool)
	for _, n := range nodes {
		b := d.outerBlock(n)
		if seen[b] {
			continue
		}
		seen[b] = true
		if quote != nil && b.PrevSibling == quote {
			dom.Detach(b)
			quote.AppendChild(b)
			continue
		}
		quote = dom.NewElement("blockquote")
		dom.Wrap(b, quote)
	}
	return true
}

func (d *Document) outdent() bool {
	nodes := d.selectedNodes()
	if len(nodes) == 0 {
		return false
	}

	d.caret.Save()
	defer d.caret.Restore()

	changed := false
	seen := make(map[*html.Node]bool)
	for _, n := range nodes {
		b := dom.Closest(n, d.caret.Element(), dom.IsBlock)
		if b == nil || seen[b] {
			continue
		}
		seen[b] = true

		if dom.Tag(b) == "blockquote" {
			dom.Rename(b, d.separator)
			changed = true
			continue
		}
		q := d.closest(b.Parent, "blockquote")
		if q == nil {
			continue
		}
		x := b
		for x.Parent != q {
			x = x.Parent
		}
		lift(q, x)
		changed = true
	}
	return changed
}

// lift moves the child x out of q, splitting q when x sits in the middle.
// An emptied q is removed.
func lift(q, x *html.Node) {
	switch {
	case x.PrevSibling == nil:
		dom.Detach(x)
		q.Parent.InsertBefore(x, q)
	case x.NextSibling == nil:
		dom.Detach(x)
		dom.InsertAfter(x, q)
	default:
		tail := shallowCopy(q)
		for s := x.NextSibling; s != nil; {
			next := s.NextSibling
			q.RemoveChild(s)
			tail.AppendChild(s)
			s = next
		}
		dom.InsertAfter(tail, q)
		dom.Detach(x)
		dom.InsertAfter(x, q)
	}
	if q.FirstChild == nil {
		dom.Detach(q)
	}
}

func (d *Document) insertRule() bool {
	d.deleteSelection()
	hr := dom.NewElement("hr")

	b := dom.Closest(d.focus(), d.caret.Element(), dom.IsBlock)
	if b == nil || groupTags[dom.Tag(b)] {
		d.insertNodes([]*html.Node{hr})
		return true
	}
	dom.InsertAfter(hr, b)
	_ = d.caret.Collapse(hr.Parent, dom.Index(hr)+1)
	return true
}
