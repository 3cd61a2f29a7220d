package format

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownAction is returned by Execute for names with no action.
	ErrUnknownAction = errors.New("format: unknown action")

	// ErrReservedName is returned by Execute for the reserved names on,
	// once, off, is and _. It wraps ErrUnknownAction.
	ErrReservedName = fmt.Errorf("%w: reserved name", ErrUnknownAction)

	// ErrUnknownQuery is returned by Is for names with no predicate.
	ErrUnknownQuery = errors.New("format: unknown query")

	// ErrInvalidAction is returned when running a malformed descriptor.
	ErrInvalidAction = errors.New("format: invalid action")
)
