// Package telemetry carries per-tick snapshots of a simulation to sinks: the
// SQLite recorder and the dashboard hub.
package telemetry

import (
	"context"
	"time"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/world"
)

// Frame is the state of every robot after one simulation step.
type Frame struct {
	Tick   uint64        `json:"tick"`
	Time   time.Duration `json:"time"`
	Items  int           `json:"items"`
	Robots []Robot       `json:"robots"`
}

// Robot is one controller and its body in a frame.
type Robot struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	State   string           `json:"state,omitempty"`
	Command actuator.Command `json:"command"`
	Halted  string           `json:"halted,omitempty"`
	Body    world.State      `json:"body"`
}

// Robot returns the named robot in f.
func (f Frame) Robot(name string) (Robot, bool) {
	for _, r := range f.Robots {
		if r.Name == name {
			return r, true
		}
	}
	return Robot{}, false
}

// Sink consumes frames. Publish is called from the simulation goroutine once
// per step and should not block for long.
type Sink interface {
	Publish(ctx context.Context, f Frame) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, f Frame) error

func (fn SinkFunc) Publish(ctx context.Context, f Frame) error { return fn(ctx, f) }
