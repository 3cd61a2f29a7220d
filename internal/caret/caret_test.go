package caret

import (
	"errors"
	"testing"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/dom"
)

func mustParse(t *testing.T, markup string) (*html.Node, *Caret) {
	t.Helper()
	root, r, err := Parse(markup)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", markup, err)
	}
	c, err := NewWithRange(root, r)
	if err != nil {
		t.Fatalf("NewWithRange error: %v", err)
	}
	return root, c
}

func TestParseRenderRoundTrip(t *testing.T) {
	tests := []string{
		`<p>a|b</p>`,
		`<p>[ab]</p>`,
		`<p>a[b</p><p>c]d</p>`,
		`<ul><li>x|</li></ul>`,
		`<p>|</p>`,
		`<h2><b>[bold]</b> text</h2>`,
	}

	for _, markup := range tests {
		t.Run(markup, func(t *testing.T) {
			root, r, err := Parse(markup)
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			got, err := Render(root, r)
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			if got != markup {
				t.Errorf("round trip = %s, expected %s", got, markup)
			}
		})
	}
}

func TestEscapedMarkerCharacters(t *testing.T) {
	tests := []struct {
		markup string
		text   string
		start  int
		end    int
	}{
		{`<p>items\[0\] do|ne</p>`, "items[0] done", 11, 11},
		{`<p>a \| b [c]</p>`, "a | b c", 6, 7},
		{`<p>C:\\tmp|</p>`, `C:\tmp`, 6, 6},
		{`<p>[x\]]</p>`, "x]", 0, 2},
		{`<p>a\b|</p>`, `a\b`, 3, 3},
		{`<p>a\\|b</p>`, `a\b`, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.markup, func(t *testing.T) {
			root, c := mustParse(t, tt.markup)
			if got := dom.TextContent(root); got != tt.text {
				t.Errorf("text = %q, expected %q", got, tt.text)
			}
			start, end, ok := c.Offsets(root)
			if !ok || start != tt.start || end != tt.end {
				t.Errorf("Offsets = %d,%d,%v expected %d,%d,true", start, end, ok, tt.start, tt.end)
			}
			got, err := c.HTML()
			if err != nil {
				t.Fatalf("Render error: %v", err)
			}
			reparsed, r, err := Parse(got)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", got, err)
			}
			if dom.TextContent(reparsed) != tt.text {
				t.Errorf("rendered %s lost text, expected %q", got, tt.text)
			}
			rc, _ := NewWithRange(reparsed, r)
			if s, e, _ := rc.Offsets(reparsed); s != tt.start || e != tt.end {
				t.Errorf("rendered %s moved selection to %d,%d", got, s, e)
			}
		})
	}
}

func TestRenderEscapesLiteralText(t *testing.T) {
	root := dom.NewElement("div")
	p := dom.NewElement("p")
	root.AppendChild(p)
	text := dom.NewText(`a[0]|b\`)
	p.AppendChild(text)

	got, err := Render(root, Collapsed(text, 1))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got != `<p>a|\[0\]\|b\</p>` {
		t.Errorf("expected escaped render, got %s", got)
	}
}

func TestParseWithoutMarkers(t *testing.T) {
	root, r, err := Parse(`<p>plain</p>`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if r.StartContainer != root || r.StartOffset != 1 || !r.IsCollapsed() {
		t.Errorf("expected caret collapsed at root end, got %+v", r)
	}
}

func TestParseMalformedMarkers(t *testing.T) {
	tests := []string{
		`<p>a[b</p>`,
		`<p>a]b</p>`,
		`<p>a||b</p>`,
		`<p>[a|b]</p>`,
		`<p>]a[</p>`,
		`<p>[a[b]</p>`,
	}

	for _, markup := range tests {
		t.Run(markup, func(t *testing.T) {
			_, _, err := Parse(markup)
			if !errors.Is(err, ErrMarkers) {
				t.Errorf("expected ErrMarkers, got %v", err)
			}
		})
	}
}

func TestParentAndBlockParent(t *testing.T) {
	tests := []struct {
		markup string
		parent string
		block  string
	}{
		{`<p>a|b</p>`, "p", "p"},
		{`<h2><b>bo|ld</b></h2>`, "b", "h2"},
		{`<ul><li>it|em</li></ul>`, "li", "ul"},
		{`<blockquote><p>q|</p></blockquote>`, "p", "p"},
		{`loose|text`, "", ""},
		{`<span>inline|</span>`, "span", ""},
		{`<h2>a[b</h2><p>c]d</p>`, "", "h2"},
		{`<ul><li>a[b</li></ul><p>c]d</p>`, "", "ul"},
		{`lo[ose<p>c]d</p>`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.markup, func(t *testing.T) {
			_, c := mustParse(t, tt.markup)
			if got := dom.Tag(c.Parent()); got != tt.parent {
				t.Errorf("Parent() = %q, expected %q", got, tt.parent)
			}
			if got := dom.Tag(c.BlockParent()); got != tt.block {
				t.Errorf("BlockParent() = %q, expected %q", got, tt.block)
			}
		})
	}
}

func TestParentOnEmptyRoot(t *testing.T) {
	root := dom.NewElement("div")
	c := New(root)

	if c.Parent() != nil {
		t.Error("expected nil parent for empty root")
	}
	if c.BlockParent() != nil {
		t.Error("expected nil block parent for empty root")
	}
}

func TestParentSelectsSingleElement(t *testing.T) {
	root, c := mustParse(t, `<p>a<img src="x.png">b</p>`)
	img := root.FirstChild.FirstChild.NextSibling

	if err := c.SelectNode(img); err != nil {
		t.Fatalf("SelectNode error: %v", err)
	}
	if got := dom.Tag(c.Parent()); got != "img" {
		t.Errorf("Parent() = %q, expected img", got)
	}
	if got := dom.Tag(c.BlockParent()); got != "p" {
		t.Errorf("BlockParent() = %q, expected p", got)
	}
}

func TestSetRangeValidation(t *testing.T) {
	root, c := mustParse(t, `<p>abc</p>`)
	text := root.FirstChild.FirstChild

	if err := c.Collapse(text, 4); !errors.Is(err, ErrOffset) {
		t.Errorf("expected ErrOffset, got %v", err)
	}
	if err := c.Collapse(dom.NewText("x"), 0); !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("expected ErrOutsideRoot, got %v", err)
	}
	if err := c.Collapse(text, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveRestoreFollowsMovedNodes(t *testing.T) {
	root, c := mustParse(t, `<p>ab[cd</p><p>ef]gh</p>`)
	before, _, _ := c.Offsets(root)

	c.Save()
	// Move the first paragraph's text into the second paragraph.
	first := root.FirstChild
	second := first.NextSibling
	text := first.FirstChild
	first.RemoveChild(text)
	second.InsertBefore(text, second.FirstChild)
	root.RemoveChild(first)

	if !c.Restore() {
		t.Fatal("expected Restore to succeed")
	}
	if got := MustRender(root, c.Range()); got != "<p>ab[cdef]gh</p>" {
		t.Errorf("after restore = %s", got)
	}
	after, _, _ := c.Offsets(root)
	if before != after {
		t.Errorf("start offset = %d, expected %d", after, before)
	}
}

func TestSaveRestoreElementBoundary(t *testing.T) {
	root, c := mustParse(t, `<p>a</p><p>b</p>`)
	second := root.LastChild

	if err := c.Collapse(root, 1); err != nil {
		t.Fatal(err)
	}
	c.Save()

	root.InsertBefore(dom.NewElement("section"), root.FirstChild)

	if !c.Restore() {
		t.Fatal("expected Restore to succeed")
	}
	r := c.Range()
	if r.StartContainer != root || r.StartOffset != 2 {
		t.Errorf("expected boundary before the second paragraph at index 2, got %+v", r)
	}

	// The boundary follows the node it sits in front of.
	c.Save()
	quote := dom.NewElement("blockquote")
	dom.Wrap(second, quote)
	if !c.Restore() {
		t.Fatal("expected Restore to succeed")
	}
	r = c.Range()
	if r.StartContainer != quote || r.StartOffset != 0 {
		t.Errorf("expected boundary inside the blockquote, got %+v", r)
	}
}

func TestRestoreDetachedFallsBackToRootEnd(t *testing.T) {
	root, c := mustParse(t, `<p>a|b</p>`)
	c.Save()
	root.RemoveChild(root.FirstChild)

	if c.Restore() {
		t.Error("expected Restore to report failure")
	}
	if r := c.Range(); r.StartContainer != root || !r.IsCollapsed() {
		t.Errorf("expected collapse at root, got %+v", r)
	}
	if c.Restore() {
		t.Error("expected false with nothing saved")
	}
}

func TestSelectTextAndOffsets(t *testing.T) {
	root, c := mustParse(t, `<p>ab<b>cd</b>ef</p>`)

	if err := c.SelectText(2, 4); err != nil {
		t.Fatalf("SelectText error: %v", err)
	}
	if got := MustRender(root, c.Range()); got != "<p>ab<b>[cd]</b>ef</p>" {
		t.Errorf("selection = %s", got)
	}
	start, end, ok := c.Offsets(root)
	if !ok || start != 2 || end != 4 {
		t.Errorf("Offsets = %d,%d,%v expected 2,4,true", start, end, ok)
	}

	if err := c.SelectText(4, 4); err != nil {
		t.Fatalf("SelectText error: %v", err)
	}
	if got := MustRender(root, c.Range()); got != "<p>ab<b>cd|</b>ef</p>" {
		t.Errorf("collapsed selection = %s", got)
	}
	if err := c.SelectText(0, 99); !errors.Is(err, ErrOffset) {
		t.Errorf("expected ErrOffset, got %v", err)
	}
}

func TestCommonAncestor(t *testing.T) {
	root, c := mustParse(t, `<p>a[b</p><p>c]d</p>`)
	if got := c.Range().CommonAncestor(); got != root {
		t.Errorf("expected root as common ancestor, got %s", dom.Tag(got))
	}
	if (Range{}).CommonAncestor() != nil {
		t.Error("expected nil for zero range")
	}
}
