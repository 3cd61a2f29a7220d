// Package dom provides small helpers over golang.org/x/net/html node trees.
//
// The helpers cover the handful of tree operations the caret, the headless
// document engine and the formatter need: tag classification, wrapping and
// unwrapping elements, splitting text nodes and collecting text in document
// order. Nodes are always *html.Node; the package keeps no state.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags are the elements treated as block-level for selection queries.
// List items and table cells are deliberately absent: they are containers
// inside a block, not blocks themselves.
var blockTags = map[string]bool{
	"address":    true,
	"article":    true,
	"aside":      true,
	"blockquote": true,
	"div":        true,
	"dl":         true,
	"figure":     true,
	"footer":     true,
	"form":       true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"header":     true,
	"hr":         true,
	"main":       true,
	"nav":        true,
	"ol":         true,
	"p":          true,
	"pre":        true,
	"section":    true,
	"table":      true,
	"ul":         true,
}

// containerTags hold flowing text but are not blocks on their own.
var containerTags = map[string]bool{
	"li": true,
	"dd": true,
	"dt": true,
	"td": true,
	"th": true,
}

// Tag returns the lower-case tag name of an element node, or "" for any
// other node type (including nil).
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// IsBlock reports whether n is a block-level element.
func IsBlock(n *html.Node) bool {
	return blockTags[Tag(n)]
}

// IsContainer reports whether n is a block or a text container such as a
// list item or table cell.
func IsContainer(n *html.Node) bool {
	tag := Tag(n)
	return blockTags[tag] || containerTags[tag]
}

// Attr returns the value of the attribute key, or "" when absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets (or replaces) the attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasIdentity reports whether the element carries a non-empty id or class.
func HasIdentity(n *html.Node) bool {
	return Attr(n, "id") != "" || Attr(n, "class") != ""
}

// NewElement creates a detached element with the given attributes.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText creates a detached text node.
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Rename changes the tag of an element in place, keeping its children and
// attributes.
func Rename(n *html.Node, tag string) {
	tag = strings.ToLower(tag)
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// Index returns the position of n among its siblings, or -1 when detached.
func Index(n *html.Node) int {
	if n == nil || n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// Children returns the direct children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ChildAt returns the i-th child of n, or nil when out of range.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

// ChildCount returns the number of direct children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// Contains reports whether n is ancestor or n itself.
func Contains(ancestor, n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// InsertAfter inserts the detached node n right after ref.
func InsertAfter(n, ref *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Detach removes n from its parent, if any.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// MoveChildren appends every child of src to dst, preserving order.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; {
		next := c.NextSibling
		src.RemoveChild(c)
		dst.AppendChild(c)
		c = next
	}
}

// Unwrap moves the children of n in front of n and removes n.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// Wrap puts the detached element w where n is and moves n inside w.
func Wrap(n, w *html.Node) {
	n.Parent.InsertBefore(w, n)
	n.Parent.RemoveChild(n)
	w.AppendChild(n)
}

// SplitText splits text node t at byte offset and returns the new node
// holding the tail. The tail is inserted right after t.
func SplitText(t *html.Node, offset int) *html.Node {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.Data) {
		offset = len(t.Data)
	}
	tail := NewText(t.Data[offset:])
	t.Data = t.Data[:offset]
	if t.Parent != nil {
		InsertAfter(tail, t)
	}
	return tail
}

// Walk visits n and its descendants in document order. Returning false
// from fn stops the walk.
func Walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !Walk(c, fn) {
			return false
		}
		c = next
	}
	return true
}

// TextNodes returns the text nodes below root in document order.
func TextNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TextContent concatenates all text below n.
func TextContent(n *html.Node) string {
	var b strings.Builder
	for _, t := range TextNodes(n) {
		b.WriteString(t.Data)
	}
	return b.String()
}

// Closest returns the nearest inclusive ancestor of n, strictly below stop,
// for which match returns true.
func Closest(n, stop *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil && n != stop; n = n.Parent {
		if match(n) {
			return n
		}
	}
	return nil
}

// HasTag returns a matcher for elements whose tag is one of tags.
func HasTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		tag := Tag(n)
		if tag == "" {
			return false
		}
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	}
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(Clone(ch))
	}
	return c
}

// ParseFragment parses markup as the content of an element shaped like
// context (a body element when context is nil). The returned nodes are
// detached.
func ParseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if IsElement(context) {
		ctx = &html.Node{Type: html.ElementNode, Data: context.Data, DataAtom: context.DataAtom}
	}
	return html.ParseFragment(strings.NewReader(markup), ctx)
}

// RenderChildren serializes the children of n.
func RenderChildren(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Outline renders the element structure of n as a compact string such as
// "div(p(#text),ul(li(#text)))". It is used to compare tree shapes.
func Outline(n *html.Node) string {
	var b strings.Builder
	outline(&b, n)
	return b.String()
}

func outline(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString("#text")
		return
	case html.ElementNode:
		b.WriteString(Tag(n))
	default:
		b.WriteString("#node")
	}
	if n.FirstChild == nil {
		return
	}
	b.WriteByte('(')
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c != n.FirstChild {
			b.WriteByte(',')
		}
		outline(b, c)
	}
	b.WriteByte(')')
}
