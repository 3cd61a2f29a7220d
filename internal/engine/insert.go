package engine

import (
	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

func (d *Document) insertImage(src string) bool {
	if src == "" {
		return false
	}
	d.deleteSelection()
	d.insertNodes([]*html.Node{dom.NewElement("img", html.Attribute{Key: "src", Val: src})})
	return true
}

func (d *Document) insertHTML(markup string) bool {
	d.deleteSelection()
	if markup == "" {
		return true
	}

	context := d.blockOf(d.focus())
	if context == nil {
		context = d.caret.Element()
	}
	nodes, err := dom.ParseFragment(markup, context)
	if err != nil {
		d.logger.Debug("inserthtml parse failed", "error", err)
		return false
	}
	d.insertNodes(nodes)
	return true
}
