package engine

import (
	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

// nestingTags receive a new list inside themselves instead of being
// replaced by it.
var nestingTags = map[string]bool{"div": true, "td": true, "th": true, "dd": true, "dt": true}

// insertList toggles a list of the given type ("ul" or "ol") over the
// selected blocks.
func (d *Document) insertList(tag string) bool {
	nodes := d.selectedNodes()
	if len(nodes) == 0 {
		d.insertEmptyList(tag)
		return true
	}
	if !d.listAllowed() {
		return false
	}

	d.caret.Save()
	defer d.caret.Restore()

	// Resolve every target before changing the tree, so items created for
	// one node are not taken for existing items of the next.
	var targets []*html.Node
	seen := make(map[*html.Node]bool)
	for _, n := range nodes {
		t := d.closest(n, "li")
		if t == nil {
			if t = d.blockOf(n); t == nil {
				t = d.wrapInlineRun(n, d.separator)
			}
			if groupTags[dom.Tag(t)] {
				continue
			}
		}
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}

	var created *html.Node
	renamed := make(map[*html.Node]bool)
	for _, b := range targets {
		if dom.Tag(b) == "li" {
			list := b.Parent
			switch dom.Tag(list) {
			case tag:
				d.unlistItem(b)
			case "ul", "ol":
				if !renamed[list] {
					dom.Rename(list, tag)
					renamed[list] = true
				}
			}
			continue
		}

		btag := dom.Tag(b)
		if nestingTags[btag] || (btag == "p" && d.listInParagraph) {
			list := dom.NewElement(tag)
			li := dom.NewElement("li")
			dom.MoveChildren(li, b)
			list.AppendChild(li)
			b.AppendChild(list)
			continue
		}

		li := dom.NewElement("li")
		dom.MoveChildren(li, b)
		if created != nil && b.PrevSibling == created {
			created.AppendChild(li)
			dom.Detach(b)
			continue
		}
		created = dom.NewElement(tag)
		created.AppendChild(li)
		b.Parent.InsertBefore(created, b)
		dom.Detach(b)
	}
	return true
}

// listAllowed rejects selections that span several table cells.
func (d *Document) listAllowed() bool {
	ca := d.caret.Range().CommonAncestor()
	if d.closest(ca, "td", "th") != nil {
		return true
	}
	return d.closest(ca, "table", "tbody", "thead", "tfoot", "tr") == nil
}

// unlistItem turns li into a separator paragraph placed where the item was,
// splitting its list around it. A list nested in a paragraph hands the
// item's content back to that paragraph instead.
func (d *Document) unlistItem(li *html.Node) {
	list := li.Parent
	inPara := dom.Tag(list.Parent) == "p"
	para := dom.NewElement(d.separator)
	dom.MoveChildren(para, li)

	if li.NextSibling != nil {
		tail := shallowCopy(list)
		for s := li.NextSibling; s != nil; {
			next := s.NextSibling
			list.RemoveChild(s)
			tail.AppendChild(s)
			s = next
		}
		dom.InsertAfter(tail, list)
	}
	dom.Detach(li)
	dom.InsertAfter(para, list)
	if list.FirstChild == nil {
		dom.Detach(list)
	}
	if inPara {
		dom.Unwrap(para)
	}
}

// insertEmptyList inserts a list with one empty item at a caret sitting
// directly in the root and moves the caret into the item.
func (d *Document) insertEmptyList(tag string) {
	list := dom.NewElement(tag)
	li := dom.NewElement("li")
	text := dom.NewText("")
	li.AppendChild(text)
	list.AppendChild(li)
	d.insertNodes([]*html.Node{list})
	_ = d.caret.Collapse(text, 0)
}
