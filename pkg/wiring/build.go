package wiring

import (
	"fmt"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/arbiter"
	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/brains"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Build constructs a controller from doc. Behaviours are built in document
// order, so a search behaviour must be declared before the behaviour that
// names it.
func Build(doc Document, opts brains.Options) (*robot.Controller, error) {
	name := opts.Name
	if name == "" {
		name = doc.Name
	}
	step := opts.Step
	if step == 0 {
		step = doc.Step
	}
	if step == 0 {
		step = behaviour.DefaultStep
	}

	c := robot.New(name, robot.WithLogger(opts.Logger))
	for _, spec := range doc.Sensors {
		s, err := sensor.Build(spec)
		if err != nil {
			return nil, err
		}
		if err := c.AddSensors(s); err != nil {
			return nil, err
		}
	}

	for _, spec := range doc.Behaviours {
		if opts.Anticlockwise && spec.Wall != nil {
			wall := *spec.Wall
			wall.Anticlockwise = !wall.Anticlockwise
			spec.Wall = &wall
		}
		env := c.Env()
		env.Step = step
		b, err := behaviour.Build(spec, env)
		if err != nil {
			return nil, err
		}
		if err := c.AddBehaviour(spec.Name, b); err != nil {
			return nil, err
		}
	}

	s, err := strategy(doc.Strategy, c)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	c.SetStrategy(s)
	return c, nil
}

// Register adds doc to r as a brain.
func Register(r *brains.Registry, doc Document) {
	r.Register(doc.Name, doc.Description, func(opts brains.Options) (*robot.Controller, error) {
		return Build(doc, opts)
	})
}

func strategy(st Strategy, c *robot.Controller) (arbiter.Strategy, error) {
	get := func(name string) (behaviour.Behaviour, error) {
		b, ok := c.Behaviour(name)
		if !ok {
			return nil, fmt.Errorf("%w: behaviour %q", ErrUnknownName, name)
		}
		return b, nil
	}

	switch st.Kind {
	case PassThrough:
		b, err := get(st.Behaviour)
		if err != nil {
			return nil, err
		}
		return arbiter.NewPassThrough(b)

	case Fallback:
		primary, err := get(st.Primary)
		if err != nil {
			return nil, err
		}
		secondary, err := get(st.Secondary)
		if err != nil {
			return nil, err
		}
		if st.When == nil {
			return nil, fmt.Errorf("%w: fallback needs a when condition", ErrInvalid)
		}
		when, err := compile(*st.When, c)
		if err != nil {
			return nil, err
		}
		return arbiter.NewFallback(primary, secondary, when)

	case Override:
		def, err := get(st.Default)
		if err != nil {
			return nil, err
		}
		rules := make([]arbiter.Rule, 0, len(st.Rules))
		for i, rs := range st.Rules {
			r, err := rule(rs, c, get)
			if err != nil {
				return nil, fmt.Errorf("rule %d (%s): %w", i, rs.Name, err)
			}
			rules = append(rules, r)
		}
		return arbiter.NewOverride(def, rules...)

	case Queue:
		steps := make([]behaviour.Behaviour, 0, len(st.Steps))
		for _, name := range st.Steps {
			b, err := get(name)
			if err != nil {
				return nil, err
			}
			steps = append(steps, b)
		}
		var repeat []behaviour.Behaviour
		for _, name := range st.Repeat {
			b, err := get(name)
			if err != nil {
				return nil, err
			}
			repeat = append(repeat, b)
		}
		return arbiter.NewQueue(steps, repeat)
	}
	return nil, fmt.Errorf("%w: unknown strategy kind %q", ErrInvalid, st.Kind)
}

func rule(rs Rule, c *robot.Controller, get func(string) (behaviour.Behaviour, error)) (arbiter.Rule, error) {
	when, err := compile(rs.When, c)
	if err != nil {
		return arbiter.Rule{}, err
	}
	var fields actuator.Field
	for _, f := range rs.Fields {
		parsed, err := actuator.ParseField(f)
		if err != nil {
			return arbiter.Rule{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		fields |= parsed
	}

	out := arbiter.Rule{Name: rs.Name, When: when, Fields: fields}
	switch {
	case rs.Use != "" && rs.Command != nil:
		return arbiter.Rule{}, fmt.Errorf("%w: rule sets both use and command", ErrInvalid)
	case rs.Use != "":
		out.Use, err = get(rs.Use)
		if err != nil {
			return arbiter.Rule{}, err
		}
	case rs.Command != nil:
		out.Command = rs.Command.command()
	default:
		return arbiter.Rule{}, fmt.Errorf("%w: rule needs use or command", ErrInvalid)
	}
	return out, nil
}

func (cs CommandSpec) command() actuator.Command {
	cmd := actuator.New()
	if cs.Motor != nil {
		cmd.SetMotor(*cs.Motor)
	}
	if cs.Steering != nil {
		cmd.SetSteering(*cs.Steering)
	}
	if cs.Arm != nil {
		cmd.SetArm(*cs.Arm)
	}
	return cmd
}
