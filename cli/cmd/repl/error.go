package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index with no entry.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined is returned when the user declines to re-edit input
	// that failed to parse.
	ErrEditDeclined = errors.New("edit declined")
)
