package brains

import "errors"

var (
	// ErrNotFound is returned when no brain is registered under a name.
	ErrNotFound = errors.New("brain not found")
)
