package format

import (
	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
	"github.com/dshills/richfmt/internal/host"
)

// toggleBlock applies the block format tag, or removes it when the
// selection is already inside such a block.
func (f *Formatter) toggleBlock(tag string) bool {
	el := f.caret.BlockParent()
	if f.isOn(tag) || (el != nil && dom.Tag(el) == tag) {
		f.command(actions["p"], "")
		return f.command(actions["outdent"], "")
	}

	if f.isOn("ul") {
		f.toggleList(actions["ul"])
	} else if f.isOn("ol") {
		f.toggleList(actions["ol"])
	}
	return f.command(Command(host.CommandFormatBlock, "<"+tag+">"), "")
}

// toggleList runs the host list command for a.Tag. When the selection
// ends up outside a list it becomes a paragraph; otherwise lists the host
// nested in a paragraph are repaired.
func (f *Formatter) toggleList(a Action) bool {
	ok := f.command(Command(a.Command), "")
	if !f.isOn(a.Tag) {
		return f.command(actions["p"], "")
	}
	f.cleanupList(a.Tag)
	return ok
}

// cleanupList walks up from the selection and, at the first list of type
// tag whose parent is a paragraph, unwraps that paragraph. The walk stops
// at a div, at an element with an id or class, and at the editor root. A
// selection spanning several top-level blocks is repaired at both ends. It
// reports whether a paragraph was removed.
func (f *Formatter) cleanupList(tag string) bool {
	r := f.caret.Range()
	ca := r.CommonAncestor()
	if ca == nil {
		return false
	}
	if ca != f.caret.Element() {
		return f.unwrapListParagraph(ca, tag)
	}

	removed := f.unwrapListParagraph(r.StartContainer, tag)
	if r.EndContainer != r.StartContainer && f.unwrapListParagraph(r.EndContainer, tag) {
		removed = true
	}
	return removed
}

// unwrapListParagraph runs the cleanupList walk from the ancestors of n.
func (f *Formatter) unwrapListParagraph(n *html.Node, tag string) bool {
	root := f.caret.Element()
	for el := n.Parent; el != nil; el = el.Parent {
		if el == root || dom.Tag(el) == "div" || dom.HasIdentity(el) {
			return false
		}
		if dom.Tag(el) != tag {
			continue
		}

		el = el.Parent
		if el == nil || el == root {
			return false
		}
		if dom.Tag(el) == "p" {
			f.caret.Save()
			dom.Unwrap(el)
			f.caret.Restore()
			f.logger.Debug("list unwrapped from paragraph", "list", tag)
			return true
		}
	}
	return false
}

func (f *Formatter) isOn(name string) bool {
	s, err := f.Is(name)
	return err == nil && s == On
}
