package behaviour

import (
	"math"
	"time"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Drive holds a velocity until it has travelled a distance or run for a
// duration, whichever comes first. It writes motor and steering.
type Drive struct {
	base
	cfg    DriveConfig
	vel    *sensor.Velocity
	cruise *cruise

	distLeft float64
	timeLeft time.Duration
}

// NewDrive creates a drive.
func NewDrive(vel *sensor.Velocity, cfg DriveConfig) (*Drive, error) {
	if vel == nil {
		return nil, invalid("drive needs a velocity sensor")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Drive{
		base:   base{kind: KindDrive},
		cfg:    cfg,
		vel:    vel,
		cruise: newCruise(vel, cfg.Velocity, cfg.step()),
	}
	d.Reset()
	return d, nil
}

// Update implements Behaviour. The tick a bound is crossed still returns a
// command, with the velocity target dropped to zero.
func (d *Drive) Update() (actuator.Command, error) {
	if d.finished {
		return actuator.Command{}, ErrFinished
	}

	step := d.cfg.step()
	if d.cfg.Duration > 0 {
		d.timeLeft -= step
		if d.timeLeft <= 0 {
			d.finish()
		}
	}
	if d.cfg.Distance > 0 {
		d.distLeft -= math.Abs(d.vel.Value()) * step.Seconds()
		if d.distLeft <= 0 {
			d.finish()
		}
	}

	return actuator.Drive(d.cruise.motor(), 0), nil
}

func (d *Drive) finish() {
	d.finished = true
	d.cruise.set(0)
}

// Reset implements Behaviour.
func (d *Drive) Reset() {
	d.finished = false
	d.distLeft = d.cfg.Distance
	d.timeLeft = d.cfg.Duration
	d.cruise.reset()
}

// Config returns the current configuration.
func (d *Drive) Config() DriveConfig { return d.cfg }

// SetVelocity changes the target speed and re-arms the drive.
func (d *Drive) SetVelocity(v float64) {
	d.cfg.Velocity = v
	d.cruise.target = v
	d.cruise.set(v)
	d.finished = false
}

// SetDistance bounds the drive by distance from now on. Zero removes the
// bound.
func (d *Drive) SetDistance(dist float64) error {
	if dist < 0 {
		return invalid("negative drive distance %v", dist)
	}
	d.cfg.Distance = dist
	d.distLeft = dist
	d.rearm()
	return nil
}

// SetDuration bounds the drive by time from now on. Zero removes the bound.
func (d *Drive) SetDuration(dur time.Duration) error {
	if dur < 0 {
		return invalid("negative drive duration %v", dur)
	}
	d.cfg.Duration = dur
	d.timeLeft = dur
	d.rearm()
	return nil
}

func (d *Drive) rearm() {
	d.finished = false
	d.cruise.set(d.cfg.Velocity)
}

// Remaining returns the distance and time left before the drive finishes.
func (d *Drive) Remaining() (float64, time.Duration) {
	return d.distLeft, d.timeLeft
}
