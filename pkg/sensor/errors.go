package sensor

import "errors"

var (
	// ErrInvalidConfig is returned when a sensor is constructed with invalid
	// calibration parameters.
	ErrInvalidConfig = errors.New("invalid sensor config")

	// ErrUnbound is returned when a sensor is sampled before it is bound to
	// a probe.
	ErrUnbound = errors.New("sensor not bound to a probe")

	// ErrUnknownKind is returned by Build for an unregistered kind.
	ErrUnknownKind = errors.New("unknown sensor kind")
)
