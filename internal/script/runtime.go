// Package script runs Lua scripts against a Formatter.
//
// Scripts see a global table named richfmt:
//
//	richfmt.exec(name [, arg]) -> bool | nil
//	richfmt.is(name)           -> bool | nil
//	richfmt.on(event, fn)      -> id
//	richfmt.once(event, fn)    -> id
//	richfmt.off(id)            -> bool
//	richfmt.actions()          -> { name, ... }
//	richfmt.queries()          -> { name, ... }
//	richfmt.snapshot()         -> { name = bool, ... }
//	richfmt.html()             -> string
//
// nil stands for an unknown action or query, or a query with no answer.
// Event callbacks receive (name, param).
//
// Only the base, table, string and math libraries are opened; file and
// process access are not available. gopher-lua states are not goroutine
// safe, so a Runtime must be driven from one goroutine.
package script

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richfmt/internal/format"
	"github.com/dshills/richfmt/internal/logging"
	"github.com/dshills/richfmt/internal/notify"
)

// ModuleName is the global table scripts use.
const ModuleName = "richfmt"

// Renderer renders the current document with selection markers.
type Renderer interface {
	MarkedHTML() (string, error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithOutput redirects the Lua print function.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		if w != nil {
			r.out = w
		}
	}
}

// WithLogger sets the logger used for callback failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runtime is a Lua state bound to a Formatter.
type Runtime struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool

	f      *format.Formatter
	doc    Renderer
	out    io.Writer
	logger *slog.Logger

	// handlers pins callback functions so the Lua GC keeps them.
	handlers *lua.LTable
	subs     map[string]*notify.Subscription
	nextID   uint64
}

// New creates a Runtime for f. doc may be nil, in which case html()
// returns an empty string.
func New(f *format.Formatter, doc Renderer, opts ...Option) (*Runtime, error) {
	if f == nil {
		return nil, ErrNoFormatter
	}
	r := &Runtime{
		f:      f,
		doc:    doc,
		out:    os.Stdout,
		logger: logging.Discard(),
		subs:   make(map[string]*notify.Subscription),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.L.SetGlobal("print", r.L.NewFunction(r.print))
	r.register()
	return r, nil
}

// openSafeLibraries opens the libraries scripts may use and removes the
// loaders that reach the file system.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (r *Runtime) register() {
	L := r.L
	r.handlers = L.NewTable()

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"exec":     r.exec,
		"is":       r.is,
		"on":       r.on,
		"once":     r.once,
		"off":      r.off,
		"actions":  r.actions,
		"queries":  r.queries,
		"snapshot": r.snapshot,
		"html":     r.html,
	})
	L.SetField(mod, "_handlers", r.handlers)
	L.SetGlobal(ModuleName, mod)
}

// RunString executes code. Cancelling ctx stops the script.
func (r *Runtime) RunString(ctx context.Context, code string) error {
	return r.run(ctx, func() error { return r.L.DoString(code) })
}

// RunFile executes the script at path. Cancelling ctx stops the script.
func (r *Runtime) RunFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return r.run(ctx, func() error {
		fn, err := r.L.Load(bytes.NewReader(src), path)
		if err != nil {
			return fmt.Errorf("compiling %s: %w", path, err)
		}
		r.L.Push(fn)
		return r.L.PCall(0, lua.MultRet, nil)
	})
}

func (r *Runtime) run(ctx context.Context, fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	r.L.SetContext(ctx)
	defer r.L.RemoveContext()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// Subscriptions returns the number of live script subscriptions. It waits
// for a running script, so script callbacks must not call it.
func (r *Runtime) Subscriptions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Close removes the script's subscriptions and releases the Lua state.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	for id, sub := range r.subs {
		sub.Unsubscribe()
		delete(r.subs, id)
	}
	r.L.Close()
	r.closed = true
	return nil
}

// exec(name [, arg]) -> bool | nil
func (r *Runtime) exec(L *lua.LState) int {
	name := L.CheckString(1)
	var args []string
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		args = append(args, L.CheckString(2))
	}

	ok, err := r.f.Execute(name, args...)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LBool(ok))
	return 1
}

// is(name) -> bool | nil
func (r *Runtime) is(L *lua.LState) int {
	s, err := r.f.Is(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(stateValue(s))
	return 1
}

func (r *Runtime) on(L *lua.LState) int {
	return r.subscribe(L, false)
}

func (r *Runtime) once(L *lua.LState) int {
	return r.subscribe(L, true)
}

// subscribe registers fn for event and returns a script-local id.
func (r *Runtime) subscribe(L *lua.LState, once bool) int {
	event := L.CheckString(1)
	fn := L.CheckFunction(2)
	if event == "" {
		L.ArgError(1, "event name cannot be empty")
		return 0
	}

	r.nextID++
	id := fmt.Sprintf("sub_%d", r.nextID)
	r.handlers.RawSetString(id, fn)

	observer := func(ev notify.Event) {
		if once {
			r.forget(id)
		}
		r.call(fn, ev)
	}

	var sub *notify.Subscription
	if once {
		sub = r.f.Once(event, observer)
	} else {
		sub = r.f.On(event, observer)
	}
	r.subs[id] = sub

	L.Push(lua.LString(id))
	return 1
}

// off(id) -> bool
func (r *Runtime) off(L *lua.LState) int {
	id := L.CheckString(1)
	sub, ok := r.subs[id]
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	sub.Unsubscribe()
	r.forget(id)
	L.Push(lua.LTrue)
	return 1
}

func (r *Runtime) forget(id string) {
	delete(r.subs, id)
	r.handlers.RawSetString(id, lua.LNil)
}

// call runs a callback. Errors are logged; they do not abort the action
// that emitted the event.
func (r *Runtime) call(fn *lua.LFunction, ev notify.Event) {
	err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true},
		lua.LString(ev.Name), lua.LString(ev.Param))
	if err != nil {
		r.logger.Warn("script callback failed", "event", ev.Name, "error", err)
	}
}

func (r *Runtime) actions(L *lua.LState) int {
	L.Push(stringList(L, format.Actions()))
	return 1
}

func (r *Runtime) queries(L *lua.LState) int {
	L.Push(stringList(L, format.Queries()))
	return 1
}

// snapshot() -> { name = bool }. Unknown states are left out.
func (r *Runtime) snapshot(L *lua.LState) int {
	tbl := L.NewTable()
	for name, s := range r.f.Snapshot() {
		if s != format.Unknown {
			tbl.RawSetString(name, stateValue(s))
		}
	}
	L.Push(tbl)
	return 1
}

func (r *Runtime) html(L *lua.LState) int {
	if r.doc == nil {
		L.Push(lua.LString(""))
		return 1
	}
	out, err := r.doc.MarkedHTML()
	if err != nil {
		L.RaiseError("html: %v", err)
		return 0
	}
	L.Push(lua.LString(out))
	return 1
}

// print writes its arguments tab separated to the runtime output.
func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

func stateValue(s format.State) lua.LValue {
	v, known := s.Bool()
	if !known {
		return lua.LNil
	}
	return lua.LBool(v)
}

func stringList(L *lua.LState, items []string) *lua.LTable {
	tbl := L.CreateTable(len(items), 0)
	for _, item := range items {
		tbl.Append(lua.LString(item))
	}
	return tbl
}
