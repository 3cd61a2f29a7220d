package format

import (
	"strings"

	"github.com/dshills/richfmt/internal/dom"
	"github.com/dshills/richfmt/internal/host"
)

// PredicateKind identifies how a predicate is evaluated.
type PredicateKind int

const (
	// PredicateQuery asks the host for the command state.
	PredicateQuery PredicateKind = iota
	// PredicateParent compares the nearest enclosing element's tag.
	PredicateParent
	// PredicateMark asks the host and falls back to the nearest inline
	// element's tag.
	PredicateMark
)

// Predicate describes a formatting query.
type Predicate struct {
	// Kind selects the evaluation.
	Kind PredicateKind

	// Command is the host command state queried by PredicateQuery and
	// PredicateMark.
	Command string

	// Tags are the element tags PredicateParent and PredicateMark accept.
	Tags []string

	// Inline checks the nearest element instead of the nearest block.
	Inline bool
}

// Query returns a predicate on the host state of cmd.
func Query(cmd string) Predicate {
	return Predicate{Kind: PredicateQuery, Command: cmd}
}

// HasParent returns a predicate comparing the nearest block (or, when
// inline is true, the nearest element) with tag.
func HasParent(tag string, inline bool) Predicate {
	return Predicate{Kind: PredicateParent, Tags: []string{normalizeTag(tag)}, Inline: inline}
}

// Mark returns a predicate that is on when the host reports cmd or the
// nearest element is one of tags.
func Mark(cmd string, tags ...string) Predicate {
	norm := make([]string, len(tags))
	for i, t := range tags {
		norm[i] = normalizeTag(t)
	}
	return Predicate{Kind: PredicateMark, Command: cmd, Tags: norm, Inline: true}
}

// queries is the query registry. It is not modified after init.
var queries = map[string]Predicate{
	"bold":      Mark(host.CommandBold, "b", "strong"),
	"italic":    Mark(host.CommandItalic, "i", "em"),
	"strike":    Query(host.CommandStrikethrough),
	"sub":       Query(host.CommandSubscript),
	"sup":       Query(host.CommandSuperscript),
	"underline": Query(host.CommandUnderline),

	"p":          HasParent("p", false),
	"h1":         HasParent("h1", false),
	"h2":         HasParent("h2", false),
	"h3":         HasParent("h3", false),
	"h4":         HasParent("h4", false),
	"h5":         HasParent("h5", false),
	"h6":         HasParent("h6", false),
	"blockquote": HasParent("blockquote", false),
	"div":        HasParent("div", false),

	"ul": HasParent("ul", false),
	"ol": HasParent("ol", false),

	"a":   HasParent("a", true),
	"img": HasParent("img", true),
}

// Queries returns the registered query names, sorted.
func Queries() []string {
	return sortedKeys(queries)
}

// check evaluates p against the host and caret.
func (f *Formatter) check(p Predicate) State {
	switch p.Kind {
	case PredicateQuery:
		return f.query(p.Command)
	case PredicateParent:
		return f.parentIs(p.Tags, p.Inline)
	case PredicateMark:
		if f.query(p.Command) == On {
			return On
		}
		return f.parentIs(p.Tags, true)
	default:
		return Unknown
	}
}

func (f *Formatter) query(cmd string) State {
	return stateOf(host.IsTrue(f.doc.QueryCommandValue(cmd)))
}

// parentIs compares the nearest element (or block) with tags. Without such
// an element the answer is Unknown.
func (f *Formatter) parentIs(tags []string, inline bool) State {
	el := f.caret.BlockParent()
	if inline {
		el = f.caret.Parent()
	}
	if el == nil {
		return Unknown
	}
	tag := dom.Tag(el)
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return On
		}
	}
	return Off
}
