// Package control provides the feedback controllers and angle helpers shared
// by behaviours.
package control

import (
	"time"
)

// Gains holds PID coefficients.
type Gains struct {
	Kp float64 // Proportional gain
	Ki float64 // Integral gain
	Kd float64 // Derivative gain (on measurement)
}

// Tuned gains used by the stock behaviours.
var (
	VelocityGains = Gains{Kp: 5, Ki: 0.001, Kd: 0.01}
	HeadingGains  = Gains{Kp: 7.5, Ki: 0.05, Kd: 0}
)

// PID is a discrete PID controller advanced once per simulation step.
// It never reads the wall clock.
type PID struct {
	gains Gains
	dt    float64 // step in seconds

	target   float64
	integral float64
	previous float64
	primed   bool // previous holds a real sample
}

// NewPID creates a controller stepping at the given simulation step.
func NewPID(gains Gains, step time.Duration) *PID {
	return &PID{
		gains: gains,
		dt:    step.Seconds(),
	}
}

// SetTarget changes the set point and clears the integral term.
func (p *PID) SetTarget(target float64) {
	p.integral = 0
	p.target = target
}

// Target returns the current set point.
func (p *PID) Target() float64 {
	return p.target
}

// Update advances the controller by one step and returns the control output.
func (p *PID) Update(current float64) float64 {
	err := p.target - current
	p.integral += err * p.dt

	var derivative float64
	if p.primed && p.dt > 0 {
		derivative = (current - p.previous) / p.dt
	}
	p.previous = current
	p.primed = true

	return p.gains.Kp*err + p.gains.Ki*p.integral - p.gains.Kd*derivative
}

// UpdateAngle is Update for a heading loop. The error is the shortest signed
// rotation from current to the target, so set points across the ±π seam do
// not unwind the long way round.
func (p *PID) UpdateAngle(current float64) float64 {
	err := AngleDiff(p.target, current)
	p.integral += err * p.dt

	var derivative float64
	if p.primed && p.dt > 0 {
		derivative = AngleDiff(current, p.previous) / p.dt
	}
	p.previous = current
	p.primed = true

	return p.gains.Kp*err + p.gains.Ki*p.integral - p.gains.Kd*derivative
}

// Reset clears all accumulated state, keeping gains and target.
func (p *PID) Reset() {
	p.integral = 0
	p.previous = 0
	p.primed = false
}
