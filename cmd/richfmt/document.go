package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/richfmt/internal/engine"
	"github.com/dshills/richfmt/internal/format"
	"github.com/dshills/richfmt/internal/host"
	"github.com/dshills/richfmt/internal/logging"
)

// session is a parsed document with its formatter.
type session struct {
	doc *engine.Document
	f   *format.Formatter
}

// readSource reads path, or stdin when path is "-".
func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// open parses markup into a session configured from a.cfg.
func (a *app) open(markup string) (*session, error) {
	doc, err := engine.Parse(markup,
		engine.WithListInParagraph(a.cfg.Engine.ListInParagraph),
		engine.WithSeparator(a.cfg.Engine.Separator),
		engine.WithLogger(logging.Component(a.logger, "engine")),
	)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	f := format.New(doc, doc.Caret(), format.WithLogger(logging.Component(a.logger, "format")))
	// The formatter always selects p; restore the configured separator.
	if sep := a.cfg.Engine.Separator; sep != "p" {
		if _, err := f.Ext().Run(format.Command(host.CommandDefaultParagraphSeparator, sep)); err != nil {
			return nil, err
		}
	}
	return &session{doc: doc, f: f}, nil
}

// render returns the document, with selection markers when configured.
func (a *app) render(s *session) (string, error) {
	if a.cfg.Output.Markers {
		return s.doc.MarkedHTML()
	}
	return s.doc.HTML()
}

// parseStep splits "name=arg" into an action name and its argument.
func parseStep(step string) (name string, arg []string) {
	if n, v, ok := strings.Cut(step, "="); ok {
		return n, []string{v}
	}
	return step, nil
}

// writeResult writes out to path, or to w when path is empty.
func writeResult(w io.Writer, path, out string) error {
	if path == "" {
		_, err := fmt.Fprintln(w, out)
		return err
	}
	return os.WriteFile(path, []byte(out+"\n"), 0o644)
}
