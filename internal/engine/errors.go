package engine

import "errors"

// ErrUnknownCommand indicates a command the engine does not implement.
var ErrUnknownCommand = errors.New("engine: unknown command")
