// Package robot provides the per-robot controller that ties sensors,
// behaviours and an arbitration strategy together.
//
// The package follows the Interface Segregation Principle: hosts depend on
// the small interfaces below rather than on *Controller.
package robot

import (
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Ticker advances a robot by one simulation tick.
type Ticker interface {
	Tick() (actuator.Command, error)
}

// Binder attaches a robot to the host's physical-state queries.
type Binder interface {
	Bind(p sensor.Probe)
}

// Observer reports a robot's state for dashboards and telemetry.
type Observer interface {
	Snapshot() Snapshot
}

// Brain is the composite surface a simulation host drives.
type Brain interface {
	Ticker
	Binder
	Observer
	Reset()
}

var _ Brain = (*Controller)(nil)
