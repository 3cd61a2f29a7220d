// Package host declares the rich-text primitives richfmt drives.
//
// A host is whatever owns the editable document: a browser engine, an
// embedded editor, or the headless engine in internal/engine. richfmt never
// edits the document itself; it asks the host to run named commands and to
// report named command state.
package host

// Document executes and queries named formatting commands.
type Document interface {
	// ExecCommand runs the named command with an optional parameter and
	// reports whether the host accepted it. Names are case-insensitive.
	ExecCommand(name, param string) bool

	// QueryCommandValue returns the current value of the named command
	// state, e.g. "true" or "false" for bold, or "" when unsupported.
	QueryCommandValue(name string) string
}

// Command names understood by richfmt hosts.
const (
	CommandBold                      = "bold"
	CommandItalic                    = "italic"
	CommandUnderline                 = "underline"
	CommandStrikethrough             = "strikethrough"
	CommandSubscript                 = "subscript"
	CommandSuperscript               = "superscript"
	CommandFormatBlock               = "formatblock"
	CommandInsertOrderedList         = "insertOrderedList"
	CommandInsertUnorderedList       = "insertUnorderedList"
	CommandIndent                    = "indent"
	CommandOutdent                   = "outdent"
	CommandRemoveFormat              = "removeformat"
	CommandInsertHorizontalRule      = "inserthorizontalrule"
	CommandCreateLink                = "createLink"
	CommandInsertImage               = "insertimage"
	CommandInsertHTML                = "inserthtml"
	CommandUnlink                    = "unlink"
	CommandDefaultParagraphSeparator = "defaultParagraphSeparator"
)

// IsTrue normalizes a command state value. Hosts report booleans as the
// strings "true" and "false".
func IsTrue(value string) bool {
	return value == "true"
}
