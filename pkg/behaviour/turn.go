package behaviour

import (
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/control"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// turn is the shared machinery of the two turn variants. It writes motor
// and steering; the tick the heading is reached returns a stopped command.
type turn struct {
	base
	cfg     TurnConfig
	compass *sensor.Compass
	steer   *steer
	started bool
	// anchor resolves the target heading on the first update.
	anchor func(t *turn)
}

func newTurn(kind Kind, compass *sensor.Compass, cfg TurnConfig, anchor func(*turn)) (*turn, error) {
	if compass == nil {
		return nil, invalid("%s needs a compass", kind)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &turn{
		base:    base{kind: kind},
		cfg:     cfg,
		compass: compass,
		steer:   newSteer(compass, cfg.Precision, cfg.step()),
		anchor:  anchor,
	}, nil
}

// Update implements Behaviour.
func (t *turn) Update() (actuator.Command, error) {
	if t.finished {
		return actuator.Command{}, ErrFinished
	}
	if !t.compass.Initialized() {
		return actuator.Drive(0, 0), nil
	}
	if !t.started {
		t.anchor(t)
		t.started = true
	}
	if t.steer.arrived() {
		t.finished = true
		return actuator.Drive(0, 0), nil
	}

	if t.cfg.Steering > 0 {
		return actuator.Drive(t.cfg.Velocity, sign(t.steer.offset())*t.cfg.Steering), nil
	}
	return actuator.Drive(t.cfg.Velocity, t.steer.steering()), nil
}

// Reset implements Behaviour.
func (t *turn) Reset() {
	t.finished = false
	t.started = false
	t.steer.reset()
}

// SetAngle changes the turn and re-arms it from the current heading.
func (t *turn) SetAngle(angle float64) {
	t.cfg.Angle = angle
	t.Reset()
}

// SetPrecision changes the finish tolerance.
func (t *turn) SetPrecision(p float64) error {
	if p <= 0 {
		return invalid("turn precision must be positive, got %v", p)
	}
	t.cfg.Precision = p
	t.steer.precision = p
	return nil
}

// Config returns the current configuration.
func (t *turn) Config() TurnConfig { return t.cfg }

// Target returns the heading being turned to. It is meaningful once the
// turn has started.
func (t *turn) Target() float64 { return t.steer.pid.Target() }

// RelativeTurn turns by an angle from the heading at its first update.
type RelativeTurn struct{ *turn }

// NewRelativeTurn creates a relative turn.
func NewRelativeTurn(compass *sensor.Compass, cfg TurnConfig) (*RelativeTurn, error) {
	t, err := newTurn(KindRelativeTurn, compass, cfg, func(t *turn) {
		t.steer.aim(t.cfg.Angle)
	})
	if err != nil {
		return nil, err
	}
	return &RelativeTurn{t}, nil
}

// AbsoluteTurn turns to a fixed heading.
type AbsoluteTurn struct{ *turn }

// NewAbsoluteTurn creates an absolute turn.
func NewAbsoluteTurn(compass *sensor.Compass, cfg TurnConfig) (*AbsoluteTurn, error) {
	t, err := newTurn(KindAbsoluteTurn, compass, cfg, func(t *turn) {
		t.steer.aimAt(t.cfg.Angle)
	})
	if err != nil {
		return nil, err
	}
	return &AbsoluteTurn{t}, nil
}

// Heading returns the configured target heading in (-π, π].
func (a *AbsoluteTurn) Heading() float64 { return control.Wrap(a.cfg.Angle) }
