package format

import (
	"github.com/dshills/richfmt/internal/notify"
)

// Extensions gives access to the building blocks behind the registered
// actions and queries. Descriptors built here can be run directly but are
// never added to the registries.
type Extensions struct {
	f *Formatter
}

// Ext returns the Formatter's extension helpers.
func (f *Formatter) Ext() Extensions {
	return Extensions{f: f}
}

// Command returns a host command action. See the package-level Command.
func (Extensions) Command(cmd string, param ...string) Action {
	return Command(cmd, param...)
}

// FormatBlock returns a block toggle action.
func (Extensions) FormatBlock(tag string) Action {
	return FormatBlock(tag)
}

// List returns a list toggle action.
func (Extensions) List(tag string) Action {
	return List(tag)
}

// Query returns a host state predicate.
func (Extensions) Query(cmd string) Predicate {
	return Query(cmd)
}

// HasParent returns an enclosing element predicate.
func (Extensions) HasParent(tag string, inline bool) Predicate {
	return HasParent(tag, inline)
}

// Mark returns an inline mark predicate.
func (Extensions) Mark(cmd string, tags ...string) Predicate {
	return Mark(cmd, tags...)
}

// Run executes a descriptor like a registered action.
func (e Extensions) Run(a Action, arg ...string) (bool, error) {
	var param string
	if len(arg) > 0 {
		param = arg[0]
	}
	return e.f.run(a, param)
}

// Check evaluates a descriptor like a registered query.
func (e Extensions) Check(p Predicate) State {
	return e.f.check(p)
}

// CleanupList repairs a list of type tag that the host nested inside a
// paragraph and reports whether anything changed.
func (e Extensions) CleanupList(tag string) bool {
	return e.f.cleanupList(normalizeTag(tag))
}

// Notifier returns the notification channel.
func (e Extensions) Notifier() *notify.Notifier {
	return e.f.notifier
}
