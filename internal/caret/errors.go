package caret

import "errors"

// Caret errors.
var (
	// ErrOutsideRoot indicates a range boundary outside the editor root.
	ErrOutsideRoot = errors.New("caret: node is outside the editor root")

	// ErrOffset indicates a boundary offset past the end of its container.
	ErrOffset = errors.New("caret: offset out of range")

	// ErrMarkers indicates malformed selection markers in a fixture.
	ErrMarkers = errors.New("caret: malformed selection markers")
)
