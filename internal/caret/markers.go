package caret

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

// Selection markers recognized in text content by Parse and written by
// Render. A marker character preceded by EscapeChar is literal text, as is
// a doubled EscapeChar.
const (
	StartMarker = '['
	EndMarker   = ']'
	CaretMarker = '|'
	EscapeChar  = '\\'
)

const specialChars = "[]|\\"

type point struct {
	node   *html.Node
	offset int
	set    bool
}

// Parse builds an editor root from an HTML fragment carrying selection
// markers. "[" and "]" mark a selection, "|" a collapsed caret. Markers are
// only recognized in text, never in attribute values; write \[, \], \| or
// \\ for the literal characters. Without markers the caret collapses at the
// end of the root.
func Parse(markup string) (*html.Node, Range, error) {
	nodes, err := dom.ParseFragment(markup, nil)
	if err != nil {
		return nil, Range{}, fmt.Errorf("parsing fragment: %w", err)
	}
	root := dom.NewElement("div", html.Attribute{Key: "contenteditable", Val: "true"})
	for _, n := range nodes {
		root.AppendChild(n)
	}

	var start, end, collapsed point
	for _, t := range dom.TextNodes(root) {
		if !strings.ContainsAny(t.Data, specialChars) {
			continue
		}
		var b strings.Builder
		for i := 0; i < len(t.Data); i++ {
			ch := t.Data[i]
			if ch == EscapeChar && i+1 < len(t.Data) && strings.IndexByte(specialChars, t.Data[i+1]) >= 0 {
				i++
				b.WriteByte(t.Data[i])
				continue
			}
			var p *point
			switch ch {
			case StartMarker:
				p = &start
			case EndMarker:
				p = &end
			case CaretMarker:
				p = &collapsed
			default:
				b.WriteByte(ch)
				continue
			}
			if p.set {
				return nil, Range{}, fmt.Errorf("%w: duplicate %q", ErrMarkers, ch)
			}
			*p = point{node: t, offset: b.Len(), set: true}
		}
		t.Data = b.String()
	}

	switch {
	case collapsed.set && (start.set || end.set):
		return nil, Range{}, fmt.Errorf("%w: %q combined with a range", ErrMarkers, CaretMarker)
	case collapsed.set:
		return root, Collapsed(collapsed.node, collapsed.offset), nil
	case start.set != end.set:
		return nil, Range{}, fmt.Errorf("%w: unbalanced range", ErrMarkers)
	case !start.set:
		return root, Collapsed(root, dom.ChildCount(root)), nil
	}

	so, _ := TextOffset(root, start.node, start.offset)
	eo, _ := TextOffset(root, end.node, end.offset)
	if eo < so {
		return nil, Range{}, fmt.Errorf("%w: end before start", ErrMarkers)
	}
	return root, Range{
		StartContainer: start.node,
		StartOffset:    start.offset,
		EndContainer:   end.node,
		EndOffset:      end.offset,
	}, nil
}

// Render serializes the content of root with markers for r. Literal
// marker characters in text are escaped so Parse reads them back as text.
func Render(root *html.Node, r Range) (string, error) {
	mapping := make(map[*html.Node]*html.Node)
	clone := cloneMapped(root, mapping)

	sc, sok := mapping[r.StartContainer]
	ec, eok := mapping[r.EndContainer]
	if !sok || !eok {
		return "", ErrOutsideRoot
	}

	marks := make(map[*html.Node][]textMark)
	inserted := make(map[*html.Node]bool)
	add := func(n *html.Node, offset int, marker byte) {
		if n.Type == html.TextNode {
			offset = min(max(offset, 0), len(n.Data))
			marks[n] = append(marks[n], textMark{offset: offset, marker: marker})
			return
		}
		t := dom.NewText(string(marker))
		n.InsertBefore(t, dom.ChildAt(n, offset))
		inserted[t] = true
	}
	if r.IsCollapsed() {
		add(sc, r.StartOffset, CaretMarker)
	} else {
		add(ec, r.EndOffset, EndMarker)
		add(sc, r.StartOffset, StartMarker)
	}

	for _, t := range dom.TextNodes(clone) {
		if inserted[t] {
			continue
		}
		t.Data = escapeText(t.Data, marks[t], startsSpecial(t.NextSibling, marks, inserted))
	}
	return dom.RenderChildren(clone)
}

// startsSpecial reports whether the rendered form of n begins with a
// marker or an escaped character.
func startsSpecial(n *html.Node, marks map[*html.Node][]textMark, inserted map[*html.Node]bool) bool {
	if n == nil || n.Type != html.TextNode {
		return false
	}
	if inserted[n] {
		return true
	}
	for _, m := range marks[n] {
		if m.offset == 0 {
			return true
		}
	}
	return n.Data != "" && strings.IndexByte(specialChars, n.Data[0]) >= 0
}

// textMark is a marker to write into a text node at a byte offset.
type textMark struct {
	offset int
	marker byte
}

// escapeText writes data with its marks, escaping literal marker
// characters. A backslash is doubled only where it would otherwise escape
// the character after it; nextSpecial tells whether the text following
// data starts with such a character.
func escapeText(data string, marks []textMark, nextSpecial bool) string {
	if len(marks) == 0 && !strings.ContainsAny(data, specialChars) {
		return data
	}

	var pieces []string
	for i := 0; i <= len(data); i++ {
		// Start is recorded after end, so walk marks backwards.
		for j := len(marks) - 1; j >= 0; j-- {
			if marks[j].offset == i {
				pieces = append(pieces, string(marks[j].marker))
			}
		}
		if i == len(data) {
			break
		}
		switch ch := data[i]; ch {
		case StartMarker, EndMarker, CaretMarker:
			pieces = append(pieces, string([]byte{EscapeChar, ch}))
		default:
			pieces = append(pieces, data[i:i+1])
		}
	}

	var b strings.Builder
	for i, p := range pieces {
		if p == string(EscapeChar) {
			special := nextSpecial
			if i+1 < len(pieces) {
				special = strings.IndexByte(specialChars, pieces[i+1][0]) >= 0
			}
			if special {
				b.WriteByte(EscapeChar)
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

// MustRender is Render for fixtures known to be valid.
func MustRender(root *html.Node, r Range) string {
	out, err := Render(root, r)
	if err != nil {
		panic(err)
	}
	return out
}

func cloneMapped(n *html.Node, mapping map[*html.Node]*html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	mapping[n] = c
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(cloneMapped(ch, mapping))
	}
	return c
}
