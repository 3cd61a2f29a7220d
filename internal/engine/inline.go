package engine

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/caret"
	"github.com/dshills/richfmt/internal/dom"
)

// markTags lists, per inline command, the elements that carry the mark.
// The first tag is the one the engine creates.
var markTags = map[string][]string{
	"bold":          {"b", "strong"},
	"italic":        {"i", "em"},
	"underline":     {"u"},
	"strikethrough": {"s", "strike", "del"},
	"subscript":     {"sub"},
	"superscript":   {"sup"},
}

// formatTags are the inline elements removeformat strips. Links survive.
var formatTags = []string{
	"b", "strong", "i", "em", "u", "s", "strike", "del", "ins",
	"sub", "sup", "span", "font", "code", "mark", "small", "big",
}

func isMark(name string) bool {
	_, ok := markTags[strings.ToLower(name)]
	return ok
}

func markCommand(name string) commandFunc {
	return func(d *Document, _ string) bool {
		segs := d.segments()
		if len(segs) == 0 {
			d.pending[name] = !d.markState(name)
			return true
		}
		clear(d.pending)
		if d.allMarked(name, segs) {
			d.unwrapSegments(segs, markTags[name]...)
		} else {
			d.wrapSegments(name, segs)
		}
		return true
	}
}

func (d *Document) markOf(n *html.Node, name string) *html.Node {
	return d.closest(n, markTags[name]...)
}

// markState reports whether the whole selection carries the mark. A
// collapsed caret reports a pending toggle first.
func (d *Document) markState(name string) bool {
	if v, ok := d.pending[name]; ok && d.caret.Range().IsCollapsed() {
		return v
	}
	nodes := d.selectedNodes()
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if d.markOf(n, name) == nil {
			return false
		}
	}
	return true
}

func (d *Document) allMarked(name string, segs []segment) bool {
	for _, s := range segs {
		if d.markOf(s.node, name) == nil {
			return false
		}
	}
	return true
}

// wrapSegments puts every unmarked selected piece of text in a new mark
// element and selects the affected text.
func (d *Document) wrapSegments(name string, segs []segment) {
	tag := markTags[name][0]
	mids := make([]*html.Node, 0, len(segs))
	for _, s := range segs {
		mid := splitSegment(s)
		if d.markOf(mid, name) == nil {
			dom.Wrap(mid, dom.NewElement(tag))
		}
		mids = append(mids, mid)
	}
	d.selectTexts(mids)
}

// unwrapSegments removes the given elements from above every selected piece
// of text, splitting them so text outside the selection keeps them.
func (d *Document) unwrapSegments(segs []segment, tags ...string) bool {
	changed := false
	mids := make([]*html.Node, 0, len(segs))
	for _, s := range segs {
		mid := splitSegment(s)
		for m := d.closest(mid, tags...); m != nil; m = d.closest(mid, tags...) {
			dom.Unwrap(isolate(mid, m))
			changed = true
		}
		mids = append(mids, mid)
	}
	d.selectTexts(mids)
	return changed
}

// splitSegment splits the segment's text node so that the selected part is
// a node of its own, and returns that node.
func splitSegment(s segment) *html.Node {
	mid := s.node
	if s.end < len(mid.Data) {
		dom.SplitText(mid, s.end)
	}
	if s.start > 0 {
		mid = dom.SplitText(mid, s.start)
	}
	return mid
}

// isolate splits every element from n's parent up to top so that n is the
// only content of top, and returns top. Split-off siblings go to shallow
// copies placed around it.
func isolate(n, top *html.Node) *html.Node {
	cur := n
	for {
		p := cur.Parent
		if cur.NextSibling != nil {
			after := shallowCopy(p)
			for s := cur.NextSibling; s != nil; {
				next := s.NextSibling
				p.RemoveChild(s)
				after.AppendChild(s)
				s = next
			}
			dom.InsertAfter(after, p)
		}
		if cur.PrevSibling != nil {
			before := shallowCopy(p)
			for s := p.FirstChild; s != cur; {
				next := s.NextSibling
				p.RemoveChild(s)
				before.AppendChild(s)
				s = next
			}
			p.Parent.InsertBefore(before, p)
		}
		if p == top {
			return p
		}
		cur = p
	}
}

// shallowCopy copies an element without children. The id is dropped so it
// stays unique.
func shallowCopy(n *html.Node) *html.Node {
	c := dom.NewElement(n.Data)
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, "id") {
			continue
		}
		c.Attr = append(c.Attr, a)
	}
	return c
}

// selectTexts selects from the start of the first node to the end of the
// last.
func (d *Document) selectTexts(nodes []*html.Node) {
	if len(nodes) == 0 {
		return
	}
	last := nodes[len(nodes)-1]
	_ = d.caret.SetRange(caret.Range{
		StartContainer: nodes[0],
		EndContainer:   last,
		EndOffset:      len(last.Data),
	})
}

func (d *Document) removeFormat() bool {
	segs := d.segments()
	if len(segs) == 0 {
		return true
	}
	d.unwrapSegments(segs, formatTags...)
	return true
}

func (d *Document) createLink(url string) bool {
	if url == "" {
		return false
	}
	segs := d.segments()
	if len(segs) == 0 {
		a := dom.NewElement("a", html.Attribute{Key: "href", Val: url})
		a.AppendChild(dom.NewText(url))
		d.insertNodes([]*html.Node{a})
		return true
	}

	mids := make([]*html.Node, 0, len(segs))
	for _, s := range segs {
		mid := splitSegment(s)
		if a := d.closest(mid, "a"); a != nil {
			dom.SetAttr(a, "href", url)
		} else {
			dom.Wrap(mid, dom.NewElement("a", html.Attribute{Key: "href", Val: url}))
		}
		mids = append(mids, mid)
	}
	d.selectTexts(mids)
	return true
}

func (d *Document) unlink() bool {
	if segs := d.segments(); len(segs) > 0 {
		return d.unwrapSegments(segs, "a")
	}
	a := d.closest(d.focus(), "a")
	if a == nil {
		return false
	}
	d.caret.Save()
	dom.Unwrap(a)
	d.caret.Restore()
	return true
}
