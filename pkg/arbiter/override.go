package arbiter

import (
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/behaviour"
)

// Rule forces Fields to a behaviour's output, or to a fixed Command, on
// ticks where When holds. A finished rule behaviour is reset before it runs
// again.
type Rule struct {
	Name    string
	When    Condition
	Use     behaviour.Behaviour
	Command actuator.Command
	Fields  actuator.Field
}

// Override runs a default behaviour every tick and then applies each rule
// whose condition holds, in declaration order. Later rules win on fields
// they share with earlier ones. Fields no rule names keep the default's
// output.
type Override struct {
	def   behaviour.Behaviour
	rules []Rule
	fired []string
	log   *slog.Logger
}

// NewOverride creates a priority override.
func NewOverride(def behaviour.Behaviour, rules ...Rule) (*Override, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: override needs a default behaviour", ErrInvalidStrategy)
	}
	for i, r := range rules {
		if r.When == nil {
			return nil, fmt.Errorf("%w: rule %d (%s) has no condition", ErrInvalidStrategy, i, r.Name)
		}
		if r.Fields == actuator.FieldNone {
			return nil, fmt.Errorf("%w: rule %d (%s) overrides no fields", ErrInvalidStrategy, i, r.Name)
		}
	}
	return &Override{def: def, rules: rules, log: log.L()}, nil
}

// Step implements Strategy.
func (o *Override) Step(prev actuator.Command) (actuator.Command, error) {
	cmd, err := o.def.Update()
	if err != nil {
		return actuator.Command{}, fmt.Errorf("default: %w", err)
	}
	out := merge(prev, cmd)

	o.fired = o.fired[:0]
	for _, r := range o.rules {
		if !r.When() {
			continue
		}
		src := r.Command
		if r.Use != nil {
			if r.Use.Finished() {
				r.Use.Reset()
			}
			if src, err = r.Use.Update(); err != nil {
				return actuator.Command{}, fmt.Errorf("rule %s: %w", r.Name, err)
			}
		}
		out.Overlay(src, r.Fields)
		o.fired = append(o.fired, r.Name)
	}
	if len(o.fired) > 0 {
		o.log.Debug("override fired", "rules", o.fired)
	}
	return out, nil
}

// Reset implements Strategy.
func (o *Override) Reset() {
	o.def.Reset()
	for _, r := range o.rules {
		if r.Use != nil {
			r.Use.Reset()
		}
	}
	o.fired = o.fired[:0]
}

// Fired returns the rules applied on the last tick.
func (o *Override) Fired() []string {
	return append([]string(nil), o.fired...)
}

// State names the last rule applied, or "default".
func (o *Override) State() string {
	if len(o.fired) == 0 {
		return "default"
	}
	return o.fired[len(o.fired)-1]
}
