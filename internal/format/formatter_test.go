package format

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/richfmt/internal/caret"
	"github.com/dshills/richfmt/internal/dom"
	"github.com/dshills/richfmt/internal/notify"
)

type call struct {
	name  string
	param string
}

// fakeDoc records commands and answers queries from a fixed table.
type fakeDoc struct {
	calls  []call
	values map[string]string
	result bool
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{values: make(map[string]string), result: true}
}

func (d *fakeDoc) ExecCommand(name, param string) bool {
	d.calls = append(d.calls, call{name, param})
	return d.result
}

func (d *fakeDoc) QueryCommandValue(name string) string {
	return d.values[name]
}

func newFakeFormatter(opts ...Option) (*Formatter, *fakeDoc) {
	doc := newFakeDoc()
	f := New(doc, caret.New(dom.NewElement("div")), opts...)
	doc.calls = nil
	return f, doc
}

func TestNewSetsParagraphSeparator(t *testing.T) {
	n := notify.New()
	var events []notify.Event
	n.On(notify.Wildcard, func(ev notify.Event) { events = append(events, ev) })

	doc := newFakeDoc()
	New(doc, caret.New(dom.NewElement("div")), WithNotifier(n))

	want := []call{{"defaultParagraphSeparator", "p"}}
	if !reflect.DeepEqual(doc.calls, want) {
		t.Errorf("expected %v, got %v", want, doc.calls)
	}
	if len(events) != 1 || events[0].Name != "defaultParagraphSeparator" || events[0].Param != "p" {
		t.Errorf("unexpected init events %v", events)
	}
}

func TestExecuteCommandActions(t *testing.T) {
	tests := []struct {
		action  string
		arg     []string
		command string
		param   string
	}{
		{"bold", nil, "bold", ""},
		{"italic", nil, "italic", ""},
		{"strike", nil, "strikethrough", ""},
		{"sub", nil, "subscript", ""},
		{"sup", nil, "superscript", ""},
		{"underline", nil, "underline", ""},
		{"p", nil, "formatblock", "<p>"},
		{"indent", nil, "indent", ""},
		{"outdent", nil, "outdent", ""},
		{"clear", nil, "removeformat", ""},
		{"hr", nil, "inserthorizontalrule", ""},
		{"a", []string{"https://example.com"}, "createLink", "https://example.com"},
		{"img", []string{"cat.png"}, "insertimage", "cat.png"},
		{"br", []string{"ignored"}, "inserthtml", "<br>"},
		{"html", []string{"<i>x</i>"}, "inserthtml", "<i>x</i>"},
		{"unlink", nil, "unlink", ""},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			f, doc := newFakeFormatter()
			ok, err := f.Execute(tt.action, tt.arg...)
			if err != nil {
				t.Fatalf("Execute(%q) error: %v", tt.action, err)
			}
			if !ok {
				t.Errorf("expected host result true")
			}
			want := []call{{tt.command, tt.param}}
			if !reflect.DeepEqual(doc.calls, want) {
				t.Errorf("expected %v, got %v", want, doc.calls)
			}
		})
	}
}

func TestExecuteReturnsHostResult(t *testing.T) {
	f, doc := newFakeFormatter()
	doc.result = false

	ok, err := f.Execute("bold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false from host")
	}
}

func TestExecuteUnknownAndReserved(t *testing.T) {
	tests := []struct {
		name     string
		reserved bool
	}{
		{"on", true},
		{"once", true},
		{"off", true},
		{"is", true},
		{"_", true},
		{"nope", false},
		{"", false},
		{"Bold", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, doc := newFakeFormatter()
			ok, err := f.Execute(tt.name)
			if ok {
				t.Error("expected false result")
			}
			if !errors.Is(err, ErrUnknownAction) {
				t.Errorf("expected ErrUnknownAction, got %v", err)
			}
			if got := errors.Is(err, ErrReservedName); got != tt.reserved {
				t.Errorf("errors.Is(err, ErrReservedName) = %v, expected %v", got, tt.reserved)
			}
			if len(doc.calls) != 0 {
				t.Errorf("expected no host calls, got %v", doc.calls)
			}
		})
	}
}

func TestEventsCarryBoundParam(t *testing.T) {
	f, _ := newFakeFormatter()

	var named, wild []notify.Event
	f.On("createLink", func(ev notify.Event) { named = append(named, ev) })
	f.On("inserthtml", func(ev notify.Event) { named = append(named, ev) })
	f.On(notify.Wildcard, func(ev notify.Event) { wild = append(wild, ev) })

	f.Execute("a", "https://example.com")
	f.Execute("br")

	want := []notify.Event{
		{Name: "createLink", Param: ""},
		{Name: "inserthtml", Param: "<br>"},
	}
	if !reflect.DeepEqual(named, want) {
		t.Errorf("named events: expected %v, got %v", want, named)
	}
	if !reflect.DeepEqual(wild, want) {
		t.Errorf("wildcard events: expected %v, got %v", want, wild)
	}
}

func TestOnceAndOff(t *testing.T) {
	f, _ := newFakeFormatter()

	once := 0
	f.Once("bold", func(notify.Event) { once++ })
	always := 0
	sub := f.On("bold", func(notify.Event) { always++ })

	f.Execute("bold")
	f.Execute("bold")
	if once != 1 {
		t.Errorf("once observer called %d times, expected 1", once)
	}
	if always != 2 {
		t.Errorf("observer called %d times, expected 2", always)
	}

	if !f.Off("bold", sub) {
		t.Error("expected Off to remove the subscription")
	}
	f.Execute("bold")
	if always != 2 {
		t.Errorf("observer called after Off")
	}
}

func TestIsUnknownQuery(t *testing.T) {
	f, _ := newFakeFormatter()

	for _, name := range []string{"", "nope", "clear", "on"} {
		s, err := f.Is(name)
		if !errors.Is(err, ErrUnknownQuery) {
			t.Errorf("Is(%q): expected ErrUnknownQuery, got %v", name, err)
		}
		if s != Unknown {
			t.Errorf("Is(%q) = %v, expected unknown", name, s)
		}
	}
}

func TestIsWithoutSelectionParent(t *testing.T) {
	f, doc := newFakeFormatter()
	doc.values["bold"] = "false"
	doc.values["strikethrough"] = "false"

	tests := []struct {
		name string
		want State
	}{
		{"h1", Unknown},
		{"ul", Unknown},
		{"a", Unknown},
		{"bold", Unknown},
		{"strike", Off},
	}
	for _, tt := range tests {
		got, err := f.Is(tt.name)
		if err != nil {
			t.Fatalf("Is(%q) error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Is(%q) = %v, expected %v", tt.name, got, tt.want)
		}
	}

	doc.values["bold"] = "true"
	if got, _ := f.Is("bold"); got != On {
		t.Errorf("host bold state: expected on, got %v", got)
	}
}

func TestRegistries(t *testing.T) {
	wantActions := []string{
		"a", "blockquote", "bold", "br", "clear", "div", "h1", "h2", "h3",
		"h4", "h5", "h6", "hr", "html", "img", "indent", "italic", "ol",
		"outdent", "p", "strike", "sub", "sup", "ul", "underline", "unlink",
	}
	if got := Actions(); !reflect.DeepEqual(got, wantActions) {
		t.Errorf("Actions() = %v", got)
	}

	wantQueries := []string{
		"a", "blockquote", "bold", "div", "h1", "h2", "h3", "h4", "h5",
		"h6", "img", "italic", "ol", "p", "strike", "sub", "sup", "ul",
		"underline",
	}
	if got := Queries(); !reflect.DeepEqual(got, wantQueries) {
		t.Errorf("Queries() = %v", got)
	}

	for _, name := range Actions() {
		if _, err := lookupAction(name); err != nil {
			t.Errorf("lookupAction(%q) error: %v", name, err)
		}
	}
}

func TestExtRun(t *testing.T) {
	f, doc := newFakeFormatter()
	ext := f.Ext()

	ok, err := ext.Run(ext.Command("fontName", "serif"), "ignored")
	if err != nil || !ok {
		t.Fatalf("Run: ok=%v err=%v", ok, err)
	}
	if want := []call{{"fontName", "serif"}}; !reflect.DeepEqual(doc.calls, want) {
		t.Errorf("expected %v, got %v", want, doc.calls)
	}

	if _, err := ext.Run(Action{}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := ext.Run(Action{Kind: KindList, Tag: "dl"}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for dl list, got %v", err)
	}

	doc.values["bold"] = "true"
	if got := ext.Check(ext.Query("bold")); got != On {
		t.Errorf("Check(Query(bold)) = %v, expected on", got)
	}
	if ext.Notifier() != f.Notifier() {
		t.Error("expected Ext to expose the formatter's notifier")
	}
}

func TestDescriptorFactories(t *testing.T) {
	if a := FormatBlock("<H2>"); a.Kind != KindBlock || a.Tag != "h2" || a.Command != "formatblock" {
		t.Errorf("FormatBlock(<H2>) = %+v", a)
	}
	if a := List("ol"); a.Command != "insertOrderedList" || a.Tag != "ol" {
		t.Errorf("List(ol) = %+v", a)
	}
	if a := List("<ul>"); a.Command != "insertUnorderedList" || a.Tag != "ul" {
		t.Errorf("List(<ul>) = %+v", a)
	}
	if p := HasParent("<a>", true); !reflect.DeepEqual(p.Tags, []string{"a"}) || !p.Inline {
		t.Errorf("HasParent(<a>, true) = %+v", p)
	}
	if got := normalizeTag("<<p>>"); got != "<p>" {
		t.Errorf("normalizeTag strips one bracket each side, got %q", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s     State
		str   string
		value bool
		known bool
	}{
		{Unknown, "unknown", false, false},
		{Off, "off", false, true},
		{On, "on", true, true},
	}
	for _, tt := range tests {
		if tt.s.String() != tt.str {
			t.Errorf("expected %q, got %q", tt.str, tt.s.String())
		}
		v, k := tt.s.Bool()
		if v != tt.value || k != tt.known {
			t.Errorf("%s.Bool() = %v,%v", tt.str, v, k)
		}
	}
}
