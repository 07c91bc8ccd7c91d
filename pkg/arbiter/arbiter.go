// Package arbiter turns the outputs of several behaviours into the single
// command a robot emits each tick.
//
// Every strategy is handed the previous tick's command and starts from a
// refreshed copy of it, so fields no behaviour writes this tick keep their
// last values. Which behaviour owns which field is always explicit: a
// strategy copies exactly the fields a behaviour wrote, or the fields a rule
// names.
package arbiter

import (
	"fmt"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/behaviour"
)

// Strategy arbitrates one tick.
type Strategy interface {
	// Step runs one tick given the previous canonical command.
	Step(prev actuator.Command) (actuator.Command, error)

	// Reset returns the strategy to its initial state, resetting the
	// behaviours it holds directly.
	Reset()
}

// Stater is implemented by strategies with a named current state.
type Stater interface {
	State() string
}

// merge lays the fields cmd wrote over a refreshed copy of prev.
func merge(prev, cmd actuator.Command) actuator.Command {
	out := prev.Fresh()
	out.Overlay(cmd, cmd.Written())
	return out
}

// PassThrough returns a single behaviour's output every tick.
type PassThrough struct {
	b behaviour.Behaviour
}

// NewPassThrough wraps b.
func NewPassThrough(b behaviour.Behaviour) (*PassThrough, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: pass-through needs a behaviour", ErrInvalidStrategy)
	}
	return &PassThrough{b: b}, nil
}

// Step implements Strategy.
func (p *PassThrough) Step(prev actuator.Command) (actuator.Command, error) {
	cmd, err := p.b.Update()
	if err != nil {
		return actuator.Command{}, err
	}
	return merge(prev, cmd), nil
}

// Reset implements Strategy.
func (p *PassThrough) Reset() { p.b.Reset() }

// Fallback runs Primary while Applicable holds and Secondary otherwise. The
// choice is made afresh every tick and only the chosen behaviour is
// updated.
type Fallback struct {
	primary    behaviour.Behaviour
	secondary  behaviour.Behaviour
	applicable Condition
	usedLast   bool
}

// NewFallback creates a fallback chain.
func NewFallback(primary, secondary behaviour.Behaviour, applicable Condition) (*Fallback, error) {
	if primary == nil || secondary == nil || applicable == nil {
		return nil, fmt.Errorf("%w: fallback needs two behaviours and a condition", ErrInvalidStrategy)
	}
	return &Fallback{primary: primary, secondary: secondary, applicable: applicable}, nil
}

// Step implements Strategy.
func (f *Fallback) Step(prev actuator.Command) (actuator.Command, error) {
	chosen := f.secondary
	f.usedLast = f.applicable()
	if f.usedLast {
		chosen = f.primary
	}
	cmd, err := chosen.Update()
	if err != nil {
		return actuator.Command{}, err
	}
	return merge(prev, cmd), nil
}

// Reset implements Strategy.
func (f *Fallback) Reset() {
	f.primary.Reset()
	f.secondary.Reset()
	f.usedLast = false
}

// State reports which side ran last.
func (f *Fallback) State() string {
	if f.usedLast {
		return "primary"
	}
	return "secondary"
}
