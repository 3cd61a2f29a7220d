package format

import (
	"sort"
	"strings"

	"github.com/dshills/richfmt/internal/host"
)

// Kind identifies how an action is carried out.
type Kind int

const (
	// KindCommand runs a single host command.
	KindCommand Kind = iota
	// KindBlock toggles a block format.
	KindBlock
	// KindList toggles a list and repairs its nesting.
	KindList
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindBlock:
		return "block"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Action describes a formatting action.
type Action struct {
	// Kind selects the behavior.
	Kind Kind

	// Command is the host command run by KindCommand and KindList.
	Command string

	// Param is bound to the host command. When empty the call argument
	// is passed instead.
	Param string

	// Tag is the block or list tag for KindBlock and KindList.
	Tag string
}

// Command returns an action running the host command cmd with an optional
// bound parameter.
func Command(cmd string, param ...string) Action {
	a := Action{Kind: KindCommand, Command: cmd}
	if len(param) > 0 {
		a.Param = param[0]
	}
	return a
}

// FormatBlock returns a block toggle for tag. "h2" and "<h2>" are
// equivalent.
func FormatBlock(tag string) Action {
	return Action{Kind: KindBlock, Command: host.CommandFormatBlock, Tag: normalizeTag(tag)}
}

// List returns a list toggle for "ul" or "ol".
func List(tag string) Action {
	tag = normalizeTag(tag)
	cmd := host.CommandInsertUnorderedList
	if tag == "ol" {
		cmd = host.CommandInsertOrderedList
	}
	return Action{Kind: KindList, Command: cmd, Tag: tag}
}

// normalizeTag strips one leading "<" and one trailing ">".
func normalizeTag(tag string) string {
	tag = strings.TrimPrefix(tag, "<")
	tag = strings.TrimSuffix(tag, ">")
	return strings.ToLower(tag)
}

// reserved names are never actions.
var reserved = map[string]bool{
	"on":   true,
	"once": true,
	"off":  true,
	"is":   true,
	"_":    true,
}

// actions is the action registry. It is not modified after init.
var actions = map[string]Action{
	"bold":      Command(host.CommandBold),
	"italic":    Command(host.CommandItalic),
	"strike":    Command(host.CommandStrikethrough),
	"sub":       Command(host.CommandSubscript),
	"sup":       Command(host.CommandSuperscript),
	"underline": Command(host.CommandUnderline),

	"p":          Command(host.CommandFormatBlock, "<p>"),
	"h1":         FormatBlock("h1"),
	"h2":         FormatBlock("h2"),
	"h3":         FormatBlock("h3"),
	"h4":         FormatBlock("h4"),
	"h5":         FormatBlock("h5"),
	"h6":         FormatBlock("h6"),
	"blockquote": FormatBlock("blockquote"),
	"div":        FormatBlock("div"),

	"ol": List("ol"),
	"ul": List("ul"),

	"indent":  Command(host.CommandIndent),
	"outdent": Command(host.CommandOutdent),
	"clear":   Command(host.CommandRemoveFormat),

	"hr":     Command(host.CommandInsertHorizontalRule),
	"a":      Command(host.CommandCreateLink),
	"img":    Command(host.CommandInsertImage),
	"br":     Command(host.CommandInsertHTML, "<br>"),
	"html":   Command(host.CommandInsertHTML),
	"unlink": Command(host.CommandUnlink),
}

// lookupAction returns the registered action for name.
func lookupAction(name string) (Action, error) {
	if reserved[name] {
		return Action{}, ErrReservedName
	}
	a, ok := actions[name]
	if !ok {
		return Action{}, ErrUnknownAction
	}
	return a, nil
}

// Actions returns the registered action names, sorted.
func Actions() []string {
	return sortedKeys(actions)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
