// Package engine provides a headless rich-text document for richfmt.
//
// The engine implements host.Document over an HTML node tree and a caret,
// standing in for a browser's content-editable command machinery. It runs
// the commands the formatter issues (inline marks, formatblock, lists,
// indent/outdent, links, images, HTML insertion) and reports command state.
//
// # Basic Usage
//
//	root, rng, _ := caret.Parse(`<p>hello [world]</p>`)
//	c, _ := caret.NewWithRange(root, rng)
//	doc := engine.New(c)
//
//	doc.ExecCommand("bold", "")         // <p>hello <b>[world]</b></p>
//	doc.QueryCommandValue("bold")       // "true"
//	doc.ExecCommand("formatblock", "<h2>")
//
// # Legacy Behavior
//
// WithListInParagraph makes list insertion inside a paragraph nest the new
// list in the paragraph (<p><ul>...</ul></p>), the malformed structure older
// engines produce. The formatter's list cleanup repairs it.
//
// # Thread Safety
//
// Commands and queries serialize on an internal mutex. The caret itself is
// not locked; callers that touch it directly must not race with commands.
package engine
