// Package format provides named formatting actions over a rich-text host.
//
// A Formatter turns short names ("bold", "h2", "ul", "a") into host
// commands, answers named state questions ("is the caret in a heading?")
// and publishes a notification for every host command it runs.
//
// # Actions
//
// Execute runs a registered action:
//
//	f := format.New(doc, caret)
//	f.Execute("bold")
//	f.Execute("h2")                      // toggles a level-2 heading
//	f.Execute("a", "https://example.com") // the argument feeds createLink
//
// Most actions forward to a single host command. Block actions (h1..h6,
// blockquote, div) toggle: running "h2" inside a level-2 heading turns the
// block back into a paragraph and outdents it. List actions (ul, ol) run the
// host list command and then repair lists the host nested inside a
// paragraph.
//
// Unknown names and the reserved names on, once, off, is and _ return
// ErrUnknownAction.
//
// # Queries
//
// Is evaluates a registered predicate and returns a State. Unknown means
// the question has no answer at the current selection, for example a block
// query when the caret is not inside any block.
//
// # Notifications
//
// Every host command the Formatter runs is published twice: once under the
// command name and once under notify.Wildcard. The event carries the
// parameter bound to the action, never the call argument:
//
//	f.On(notify.Wildcard, func(ev notify.Event) {
//		log.Printf("%s %s", ev.Name, ev.Param)
//	})
//
// # Extensions
//
// Ext exposes the descriptor factories and a way to run custom descriptors
// without touching the registries.
package format
