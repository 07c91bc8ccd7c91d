package behaviour

import "errors"

var (
	// ErrFinished is returned by Update on a finished behaviour that is not
	// idempotent across its finish boundary. Call Reset to run it again.
	ErrFinished = errors.New("behaviour already finished")

	// ErrInvalidConfig is returned when a behaviour is constructed or
	// reconfigured with invalid parameters.
	ErrInvalidConfig = errors.New("invalid behaviour config")

	// ErrUnknownKind is returned by Build for an unregistered kind.
	ErrUnknownKind = errors.New("unknown behaviour kind")
)
