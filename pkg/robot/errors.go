package robot

import "errors"

var (
	// ErrNotWired is returned by Tick when a sensor is unbound or no
	// strategy is set.
	ErrNotWired = errors.New("controller not wired")

	// ErrHalted is returned by Tick after a fatal error until Reset.
	ErrHalted = errors.New("controller halted")

	// ErrDuplicateName is returned when a sensor or behaviour name is
	// registered twice on one controller.
	ErrDuplicateName = errors.New("duplicate name")
)
