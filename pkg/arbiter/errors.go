package arbiter

import "errors"

var (
	// ErrPartialCommand is returned when a machine state leaves a required
	// field unwritten without declaring it kept.
	ErrPartialCommand = errors.New("state left required fields unwritten")

	// ErrUnknownState is returned when a transition names a state the
	// machine does not have.
	ErrUnknownState = errors.New("unknown state")

	// ErrInvalidStrategy is returned when a strategy is constructed with
	// missing or inconsistent parts.
	ErrInvalidStrategy = errors.New("invalid strategy")
)
