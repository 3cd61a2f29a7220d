package script

import "errors"

var (
	// ErrClosed is returned when running a script on a closed Runtime.
	ErrClosed = errors.New("script: runtime closed")

	// ErrNoFormatter is returned by New without a formatter.
	ErrNoFormatter = errors.New("script: formatter is nil")
)
