package format

import (
	"log/slog"

	"golang.org/x/net/html"

	"github.com/dshills/richfmt/internal/caret"
	"github.com/dshills/richfmt/internal/host"
	"github.com/dshills/richfmt/internal/logging"
	"github.com/dshills/richfmt/internal/notify"
)

// Caret is the selection the Formatter inspects. *caret.Caret implements
// it.
type Caret interface {
	// Element returns the editor root.
	Element() *html.Node

	// Range returns the current selection.
	Range() caret.Range

	// Parent returns the nearest element holding the selection, or nil.
	Parent() *html.Node

	// BlockParent returns the nearest block holding the selection, or nil.
	BlockParent() *html.Node

	// Save pushes the selection so it survives tree changes.
	Save()

	// Restore pops the last saved selection.
	Restore() bool
}

var _ Caret = (*caret.Caret)(nil)

// Option configures a Formatter.
type Option func(*Formatter)

// WithNotifier shares an existing notification channel.
func WithNotifier(n *notify.Notifier) Option {
	return func(f *Formatter) {
		if n != nil {
			f.notifier = n
		}
	}
}

// WithLogger sets the logger used for action tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Formatter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Formatter runs named formatting actions against a host document.
//
// A Formatter is not safe for concurrent use; its host and caret are
// shared, mutable state.
type Formatter struct {
	doc      host.Document
	caret    Caret
	notifier *notify.Notifier
	logger   *slog.Logger
}

// New creates a Formatter and sets the host's paragraph separator to "p".
func New(doc host.Document, c Caret, opts ...Option) *Formatter {
	f := &Formatter{
		doc:      doc,
		caret:    c,
		notifier: notify.New(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.command(Command(host.CommandDefaultParagraphSeparator, "p"), "")
	return f
}

// Execute runs the named action. The first argument, if any, is passed to
// the host command when the action binds no parameter of its own. It
// returns the host's result, or ErrUnknownAction for names that are not
// actions.
func (f *Formatter) Execute(name string, arg ...string) (bool, error) {
	a, err := lookupAction(name)
	if err != nil {
		f.logger.Debug("action rejected", "action", name, "error", err)
		return false, err
	}
	var param string
	if len(arg) > 0 {
		param = arg[0]
	}
	f.logger.Debug("action", "action", name, "kind", a.Kind.String())
	return f.run(a, param)
}

// Is evaluates the named query.
func (f *Formatter) Is(name string) (State, error) {
	p, ok := queries[name]
	if !ok {
		return Unknown, ErrUnknownQuery
	}
	return f.check(p), nil
}

// Snapshot evaluates every registered query.
func (f *Formatter) Snapshot() map[string]State {
	out := make(map[string]State, len(queries))
	for name, p := range queries {
		out[name] = f.check(p)
	}
	return out
}

// On subscribes to notifications for event.
func (f *Formatter) On(event string, observer notify.Observer) *notify.Subscription {
	return f.notifier.On(event, observer)
}

// Once subscribes to the next notification for event.
func (f *Formatter) Once(event string, observer notify.Observer) *notify.Subscription {
	return f.notifier.Once(event, observer)
}

// Off removes a subscription, or every subscription for event when sub is
// nil.
func (f *Formatter) Off(event string, sub *notify.Subscription) bool {
	return f.notifier.Off(event, sub)
}

// Notifier returns the notification channel.
func (f *Formatter) Notifier() *notify.Notifier {
	return f.notifier
}

// Caret returns the selection the Formatter inspects.
func (f *Formatter) Caret() Caret {
	return f.caret
}

func (f *Formatter) run(a Action, arg string) (bool, error) {
	switch a.Kind {
	case KindCommand:
		if a.Command == "" {
			return false, ErrInvalidAction
		}
		return f.command(a, arg), nil
	case KindBlock:
		if a.Tag == "" {
			return false, ErrInvalidAction
		}
		return f.toggleBlock(a.Tag), nil
	case KindList:
		if a.Tag != "ul" && a.Tag != "ol" {
			return false, ErrInvalidAction
		}
		return f.toggleList(a), nil
	default:
		return false, ErrInvalidAction
	}
}

// command runs the host command and publishes it under its name and the
// wildcard. The event carries the bound parameter only.
func (f *Formatter) command(a Action, arg string) bool {
	param := a.Param
	if param == "" {
		param = arg
	}
	ok := f.doc.ExecCommand(a.Command, param)

	ev := notify.Event{Name: a.Command, Param: a.Param}
	f.notifier.Emit(a.Command, ev)
	f.notifier.Emit(notify.Wildcard, ev)
	return ok
}
