package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/caret"
	"github.com/dshills/richfmt/internal/dom"
	"github.com/dshills/richfmt/internal/host"
	"github.com/dshills/richfmt/internal/logging"
)

var separatorTags = map[string]bool{"p": true, "div": true}

// commandFunc runs one command. Callers hold the document lock.
type commandFunc func(d *Document, param string) bool

// commands maps lower-case command names to their implementation.
var commands = map[string]commandFunc{
	"bold":                      markCommand("bold"),
	"italic":                    markCommand("italic"),
	"underline":                 markCommand("underline"),
	"strikethrough":             markCommand("strikethrough"),
	"subscript":                 markCommand("subscript"),
	"superscript":               markCommand("superscript"),
	"formatblock":               (*Document).formatBlock,
	"insertorderedlist":         func(d *Document, _ string) bool { return d.insertList("ol") },
	"insertunorderedlist":       func(d *Document, _ string) bool { return d.insertList("ul") },
	"indent":                    func(d *Document, _ string) bool { return d.indent() },
	"outdent":                   func(d *Document, _ string) bool { return d.outdent() },
	"removeformat":              func(d *Document, _ string) bool { return d.removeFormat() },
	"inserthorizontalrule":      func(d *Document, _ string) bool { return d.insertRule() },
	"createlink":                (*Document).createLink,
	"insertimage":               (*Document).insertImage,
	"inserthtml":                (*Document).insertHTML,
	"unlink":                    func(d *Document, _ string) bool { return d.unlink() },
	"defaultparagraphseparator": (*Document).setSeparator,
}

// Document is a headless editable document.
type Document struct {
	mu sync.Mutex

	caret  *caret.Caret
	logger *slog.Logger

	separator       string
	listInParagraph bool

	// pending holds inline marks toggled at a collapsed caret.
	pending map[string]bool
}

var _ host.Document = (*Document)(nil)

// New creates a document editing the caret's root element.
func New(c *caret.Caret, opts ...Option) *Document {
	d := &Document{
		caret:     c,
		logger:    logging.Discard(),
		separator: DefaultSeparator,
		pending:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse creates a document from markup carrying selection markers.
func Parse(markup string, opts ...Option) (*Document, error) {
	root, rng, err := caret.Parse(markup)
	if err != nil {
		return nil, err
	}
	c, err := caret.NewWithRange(root, rng)
	if err != nil {
		return nil, err
	}
	return New(c, opts...), nil
}

// Caret returns the document's selection.
func (d *Document) Caret() *caret.Caret {
	return d.caret
}

// Root returns the editor root element.
func (d *Document) Root() *html.Node {
	return d.caret.Element()
}

// Separator returns the current paragraph separator tag.
func (d *Document) Separator() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.separator
}

// HTML renders the document content without selection markers.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return dom.RenderChildren(d.caret.Element())
}

// MarkedHTML renders the document content with selection markers.
func (d *Document) MarkedHTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.caret.HTML()
}

// Supports reports whether the engine implements the command.
func (d *Document) Supports(name string) bool {
	_, ok := commands[strings.ToLower(name)]
	return ok
}

// Run executes a command and reports whether it changed or was accepted by
// the document. Unknown commands return ErrUnknownCommand.
func (d *Document) Run(name, param string) (bool, error) {
	fn, ok := commands[strings.ToLower(name)]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !isMark(name) {
		clear(d.pending)
	}
	return fn(d, param), nil
}

// ExecCommand implements host.Document.
func (d *Document) ExecCommand(name, param string) bool {
	ok, err := d.Run(name, param)
	if err != nil {
		d.logger.Debug("command rejected", "command", name, "error", err)
		return false
	}
	d.logger.Debug("command executed", "command", name, "param", param, "ok", ok)
	return ok
}

// QueryCommandValue implements host.Document.
func (d *Document) QueryCommandValue(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	name = strings.ToLower(name)
	switch {
	case isMark(name):
		return boolString(d.markState(name))
	case name == "formatblock":
		return dom.Tag(d.blockOf(d.focus()))
	case name == "insertorderedlist":
		return boolString(d.inList("ol"))
	case name == "insertunorderedlist":
		return boolString(d.inList("ul"))
	case name == "defaultparagraphseparator":
		return d.separator
	default:
		return ""
	}
}

func (d *Document) setSeparator(param string) bool {
	tag := strings.ToLower(param)
	if !separatorTags[tag] {
		return false
	}
	d.separator = tag
	return true
}

// segment is the part of a text node covered by the selection.
type segment struct {
	node       *html.Node
	start, end int
}

// segments returns the non-empty pieces of text inside the selection, in
// document order. A collapsed selection has none.
func (d *Document) segments() []segment {
	root := d.caret.Element()
	s, e, ok := d.caret.Offsets(root)
	if !ok || s == e {
		return nil
	}
	var out []segment
	base := 0
	for _, t := range dom.TextNodes(root) {
		l := len(t.Data)
		lo, hi := max(s, base), min(e, base+l)
		if lo < hi && !d.structural(t) {
			out = append(out, segment{node: t, start: lo - base, end: hi - base})
		}
		base += l
	}
	return out
}

// structural reports whether t is whitespace between blocks, list items or
// table parts rather than content.
func (d *Document) structural(t *html.Node) bool {
	if strings.TrimSpace(t.Data) != "" {
		return false
	}
	p := t.Parent
	return p == d.caret.Element() || dom.HasTag("ul", "ol", "dl", "table", "thead", "tbody", "tfoot", "tr")(p)
}

// focus returns the node holding the start of the selection.
func (d *Document) focus() *html.Node {
	return d.caret.Range().StartContainer
}

// selectedNodes returns the text nodes touched by the selection, or the
// focus node for a collapsed selection. A caret sitting directly in the
// root selects nothing.
func (d *Document) selectedNodes() []*html.Node {
	if segs := d.segments(); len(segs) > 0 {
		nodes := make([]*html.Node, len(segs))
		for i, s := range segs {
			nodes[i] = s.node
		}
		return nodes
	}
	n := d.focus()
	if n == nil || n == d.caret.Element() {
		return nil
	}
	return []*html.Node{n}
}

// blockOf returns the nearest block or text container holding n.
func (d *Document) blockOf(n *html.Node) *html.Node {
	return dom.Closest(n, d.caret.Element(), dom.IsContainer)
}

func (d *Document) closest(n *html.Node, tags ...string) *html.Node {
	return dom.Closest(n, d.caret.Element(), dom.HasTag(tags...))
}

func (d *Document) inList(tag string) bool {
	li := d.closest(d.focus(), "li")
	return li != nil && dom.Tag(li.Parent) == tag
}

// wrapInlineRun wraps the run of inline siblings around n, up to the
// nearest container or the root, into a new element.
func (d *Document) wrapInlineRun(n *html.Node, tag string) *html.Node {
	root := d.caret.Element()
	top := n
	for top.Parent != nil && top.Parent != root && !dom.IsContainer(top.Parent) {
		top = top.Parent
	}
	first, last := top, top
	for p := first.PrevSibling; p != nil && !breaksRun(p); p = p.PrevSibling {
		first = p
	}
	for s := last.NextSibling; s != nil && !breaksRun(s); s = s.NextSibling {
		last = s
	}

	w := dom.NewElement(tag)
	parent := top.Parent
	parent.InsertBefore(w, first)
	for c := first; c != nil; {
		next := c.NextSibling
		parent.RemoveChild(c)
		w.AppendChild(c)
		if c == last {
			break
		}
		c = next
	}
	return w
}

func breaksRun(n *html.Node) bool {
	return dom.IsContainer(n) || dom.Tag(n) == "br"
}

// insertNodes inserts detached nodes at the start of the selection and
// collapses the caret after them.
func (d *Document) insertNodes(nodes []*html.Node) {
	if len(nodes) == 0 {
		return
	}
	r := d.caret.Range()
	c, off := r.StartContainer, r.StartOffset

	var parent, before *html.Node
	if c.Type == html.TextNode {
		parent = c.Parent
		switch {
		case off <= 0:
			before = c
		case off >= len(c.Data):
			before = c.NextSibling
		default:
			before = dom.SplitText(c, off)
		}
	} else {
		parent = c
		before = dom.ChildAt(c, off)
	}

	for _, n := range nodes {
		parent.InsertBefore(n, before)
	}
	_ = d.caret.Collapse(parent, dom.Index(nodes[len(nodes)-1])+1)
}

// deleteSelection removes the selected text and collapses the caret at the
// former start.
func (d *Document) deleteSelection() {
	segs := d.segments()
	if len(segs) == 0 {
		return
	}
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		s.node.Data = s.node.Data[:s.start] + s.node.Data[s.end:]
	}
	_ = d.caret.Collapse(segs[0].node, segs[0].start)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
