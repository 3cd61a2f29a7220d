package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/richfmt/internal/config"
	"github.com/dshills/richfmt/internal/format"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, environ []string, stdin string, args ...string) (string, error) {
	t.Helper()
	a := newApp(func() []string { return environ })
	defer a.Close()
	return executeApp(t, a, stdin, args...)
}

// executeApp runs the root command for a without releasing its resources.
func executeApp(t *testing.T, a *app, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		steps    []string
		expected string
	}{
		{"bold", `<p>hello [world]</p>`, []string{"bold"}, `<p>hello <b>[world]</b></p>`},
		{"heading", `<p>x|</p>`, []string{"h2"}, `<h2>x|</h2>`},
		{"heading toggles back", `<p>x|</p>`, []string{"h2", "h2"}, `<p>x|</p>`},
		{"image argument", `<p>a|b</p>`, []string{"img=x.png"}, `<p>a<img src="x.png"/>|b</p>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "doc.html", tt.doc)
			out, err := execute(t, nil, "", append([]string{"apply", path}, tt.steps...)...)
			if err != nil {
				t.Fatalf("apply error: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestApplyStdinAndOutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.html")
	out, err := execute(t, nil, `<p>hello [world]</p>`, "apply", "-", "italic", "-o", dest)
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != `<p>hello <i>[world]</i></p>` {
		t.Errorf("unexpected output file %q", got)
	}
}

func TestApplyInPlaceWithoutMarkers(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.html", `<p>hello [world]</p>`)
	environ := []string{"RICHFMT_OUTPUT_MARKERS=false"}

	if _, err := execute(t, environ, "", "apply", path, "bold", "--in-place"); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != `<p>hello <b>world</b></p>` {
		t.Errorf("unexpected file %q", got)
	}
}

func TestApplyErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.html", `<p>x|</p>`)

	if _, err := execute(t, nil, "", "apply", path, "nope"); !errors.Is(err, format.ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := execute(t, nil, "", "apply", path, "on"); !errors.Is(err, format.ErrReservedName) {
		t.Errorf("expected ErrReservedName, got %v", err)
	}
	if _, err := execute(t, nil, "", "apply", path, "unlink", "--strict"); err == nil {
		t.Error("expected strict failure for unlink outside a link")
	}
	if _, err := execute(t, nil, "", "apply", path); err == nil {
		t.Error("expected argument error")
	}
}

func TestQuery(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.html", `<h2><b>x|</b></h2>`)

	out, err := execute(t, nil, "", "query", path, "h2", "bold", "p")
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	expected := "h2\ton\nbold\ton\np\toff\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}

	out, err = execute(t, nil, "", "query", path, "--json")
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	var states map[string]string
	if err := json.Unmarshal([]byte(out), &states); err != nil {
		t.Fatalf("expected json, got %q: %v", out, err)
	}
	if len(states) != len(format.Queries()) {
		t.Errorf("expected %d queries, got %d", len(format.Queries()), len(states))
	}
	if states["h2"] != "on" {
		t.Errorf("expected h2 on, got %q", states["h2"])
	}

	if _, err := execute(t, nil, "", "query", path, "bogus"); !errors.Is(err, format.ErrUnknownQuery) {
		t.Errorf("expected ErrUnknownQuery, got %v", err)
	}
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.html", `<p>hello [world]</p>`)
	lua := writeFile(t, dir, "fmt.lua", `
richfmt.on("bold", function(name) print("ran " .. name) end)
richfmt.exec("bold")
print(richfmt.is("bold"))
`)

	out, err := execute(t, nil, "", "script", doc, lua)
	if err != nil {
		t.Fatalf("script error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expected := []string{"ran bold", "true", `<p>hello <b>[world]</b></p>`}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %q", len(expected), out)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestScriptError(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.html", `<p>x|</p>`)
	lua := writeFile(t, dir, "bad.lua", `error("boom")`)

	if _, err := execute(t, nil, "", "script", doc, lua); err == nil {
		t.Error("expected script error")
	}
}

func TestConfigFlagAndOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "richfmt.toml", "[log]\nlevel = \"bogus\"\n")
	doc := writeFile(t, dir, "doc.html", `<p>x|</p>`)

	if _, err := execute(t, nil, "", "--config", cfgPath, "query", doc, "p"); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed, got %v", err)
	}

	if _, err := execute(t, nil, "", "--log-level", "loud", "actions"); !errors.Is(err, config.ErrValidationFailed) {
		t.Errorf("expected ErrValidationFailed for flag, got %v", err)
	}

	logFile := filepath.Join(dir, "richfmt.log")
	if _, err := execute(t, nil, "", "--log-level", "debug", "--log-file", logFile, "apply", doc, "h1"); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "formatblock") {
		t.Errorf("expected command logged, got %q", data)
	}
}

func TestLogFileReleasedAfterFailure(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.html", `<p>x|</p>`)
	logFile := filepath.Join(dir, "richfmt.log")

	a := newApp(func() []string { return nil })
	if _, err := executeApp(t, a, "", "--log-level", "debug", "--log-file", logFile, "apply", doc, "nope"); !errors.Is(err, format.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if a.closer == nil {
		t.Fatal("expected the log file to stay open until Close")
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
	if a.closer != nil {
		t.Error("expected Close to release the log file")
	}
	if err := a.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "configuration loaded") {
		t.Errorf("expected setup logged, got %q", data)
	}
}

func TestEscapedMarkersInDocument(t *testing.T) {
	path := writeFile(t, t.TempDir(), "doc.html", `<p>items\[0\] do|ne</p>`)

	out, err := execute(t, nil, "", "apply", path, "h2")
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if got := strings.TrimSpace(out); got != `<h2>items\[0\] do|ne</h2>` {
		t.Errorf("expected escaped markers kept, got %q", got)
	}

	out, err = execute(t, []string{"RICHFMT_OUTPUT_MARKERS=false"}, "", "apply", path, "h2")
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if got := strings.TrimSpace(out); got != `<h2>items[0] done</h2>` {
		t.Errorf("expected literal brackets, got %q", got)
	}
}

func TestActionsAndVersion(t *testing.T) {
	out, err := execute(t, nil, "", "actions")
	if err != nil {
		t.Fatalf("actions error: %v", err)
	}
	for _, want := range []string{"Actions:", "  bold\n", "  h2\n", "Queries:", "  img\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}

	out, err = execute(t, nil, "", "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "richfmt dev\n") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		step string
		name string
		arg  []string
	}{
		{"bold", "bold", nil},
		{"a=https://x.test/?q=1", "a", []string{"https://x.test/?q=1"}},
		{"html=", "html", []string{""}},
	}
	for _, tt := range tests {
		name, arg := parseStep(tt.step)
		if name != tt.name || len(arg) != len(tt.arg) || (len(arg) == 1 && arg[0] != tt.arg[0]) {
			t.Errorf("parseStep(%q): expected %q %v, got %q %v", tt.step, tt.name, tt.arg, name, arg)
		}
	}
}
