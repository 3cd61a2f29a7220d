package engine

import (
	"log/slog"
	"strings"
)

// DefaultSeparator is the paragraph separator before any
// defaultParagraphSeparator command.
const DefaultSeparator = "div"

// Option configures a Document during creation.
type Option func(*Document)

// WithListInParagraph enables the legacy behavior of nesting new lists
// inside the paragraph they are created from.
func WithListInParagraph(enabled bool) Option {
	return func(d *Document) {
		d.listInParagraph = enabled
	}
}

// WithSeparator sets the initial paragraph separator ("p" or "div").
func WithSeparator(tag string) Option {
	return func(d *Document) {
		if tag = strings.ToLower(tag); separatorTags[tag] {
			d.separator = tag
		}
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}
