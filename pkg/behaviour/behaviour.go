// Package behaviour implements reusable control primitives.
//
// A behaviour reads sensors its owner samples once per tick and produces an
// actuator.Command with only the fields it owns written. Progress advances by
// one simulation step per Update; no behaviour reads the wall clock.
package behaviour

import (
	"math"
	"time"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/control"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// DefaultStep is the simulation step behaviours integrate over when none is
// configured (50 ticks per second).
const DefaultStep = 20 * time.Millisecond

// Kind tags a behaviour variant.
type Kind string

const (
	KindDrive          Kind = "drive"
	KindRelativeTurn   Kind = "relative-turn"
	KindAbsoluteTurn   Kind = "absolute-turn"
	KindAvoidObstacle  Kind = "avoid-obstacle"
	KindFollowWall     Kind = "follow-wall"
	KindMoveToObject   Kind = "move-to-object"
	KindMoveToRobot    Kind = "move-to-robot"
	KindFindMoveTo     Kind = "find-move-to"
	KindMoveDropReturn Kind = "move-drop-return"
	KindBounce         Kind = "bounce"
	KindBumpReverse    Kind = "bump-reverse"
	KindGrip           Kind = "grip"
)

// Kinds lists every behaviour kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindDrive, KindRelativeTurn, KindAbsoluteTurn, KindAvoidObstacle,
		KindFollowWall, KindMoveToObject, KindMoveToRobot, KindFindMoveTo,
		KindMoveDropReturn, KindBounce, KindBumpReverse, KindGrip,
	}
}

// Behaviour is a stateful control primitive.
type Behaviour interface {
	Kind() Kind

	// Update advances the behaviour by one step and returns its command.
	// A finished behaviour that is not idempotent returns ErrFinished.
	Update() (actuator.Command, error)

	// Finished reports whether the behaviour has reached its goal.
	Finished() bool

	// Reset returns the behaviour to its configured initial state. Sensor
	// wiring and configured targets are kept.
	Reset()
}

// Timing sets the step a behaviour integrates over. The zero value uses
// DefaultStep.
type Timing struct {
	Step time.Duration `yaml:"-" json:"-"`
}

func (t Timing) step() time.Duration {
	if t.Step <= 0 {
		return DefaultStep
	}
	return t.Step
}

func (t Timing) validate() error {
	if t.Step < 0 {
		return invalid("negative step %v", t.Step)
	}
	return nil
}

// base carries the kind and finish flag shared by every variant.
type base struct {
	kind     Kind
	finished bool
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) Finished() bool { return b.finished }

// cruise holds a speed with the velocity loop.
type cruise struct {
	vel    *sensor.Velocity
	pid    *control.PID
	target float64
}

func newCruise(vel *sensor.Velocity, target float64, step time.Duration) *cruise {
	c := &cruise{vel: vel, pid: control.NewPID(control.VelocityGains, step), target: target}
	c.pid.SetTarget(target)
	return c
}

func (c *cruise) set(v float64) {
	if c.pid.Target() != v {
		c.pid.SetTarget(v)
	}
}

func (c *cruise) motor() float64 {
	return c.pid.Update(c.vel.Value())
}

func (c *cruise) reset() {
	c.pid.Reset()
	c.pid.SetTarget(c.target)
}

// steer holds a heading with the heading loop.
type steer struct {
	compass   *sensor.Compass
	pid       *control.PID
	precision float64
	aimed     bool
}

func newSteer(compass *sensor.Compass, precision float64, step time.Duration) *steer {
	return &steer{
		compass:   compass,
		pid:       control.NewPID(control.HeadingGains, step),
		precision: precision,
	}
}

// aim targets a heading relative to the current one.
func (s *steer) aim(angle float64) {
	s.aimAt(s.compass.Heading() + angle)
}

// aimAt targets an absolute heading.
func (s *steer) aimAt(heading float64) {
	s.pid.SetTarget(control.Wrap(heading))
	s.aimed = true
}

func (s *steer) offset() float64 {
	return control.AngleDiff(s.pid.Target(), s.compass.Heading())
}

func (s *steer) arrived() bool {
	return !s.aimed || math.Abs(s.offset()) < s.precision
}

// steering returns the loop output, or zero once the heading is reached.
func (s *steer) steering() float64 {
	if s.arrived() {
		return 0
	}
	return s.pid.UpdateAngle(s.compass.Heading())
}

func (s *steer) reset() {
	s.pid.Reset()
	s.pid.SetTarget(0)
	s.aimed = false
}

// sign returns -1 for negative values and 1 otherwise.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
