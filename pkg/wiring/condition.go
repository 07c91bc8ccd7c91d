package wiring

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-brains/pkg/arbiter"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// compile turns a condition into a predicate over c's sensors.
func compile(cond Cond, c *robot.Controller) (arbiter.Condition, error) {
	set := 0
	for _, on := range []bool{
		cond.Always, cond.Contact != "", cond.Robot != "", cond.Sees != "",
		cond.Holding != "", cond.Finished != "", cond.Below != nil, cond.Count != nil,
		cond.Not != nil, len(cond.All) > 0, len(cond.Any) > 0,
	} {
		if on {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: condition must set exactly one key, got %d", ErrInvalid, set)
	}

	switch {
	case cond.Always:
		return arbiter.Always(), nil
	case cond.Contact != "":
		b, err := typed[*sensor.Bumper](c, cond.Contact)
		if err != nil {
			return nil, err
		}
		return b.Contact, nil
	case cond.Robot != "":
		r, err := typed[*sensor.Radar](c, cond.Robot)
		if err != nil {
			return nil, err
		}
		return r.HasRobot, nil
	case cond.Sees != "":
		cam, err := typed[*sensor.Camera](c, cond.Sees)
		if err != nil {
			return nil, err
		}
		return cam.HasTarget, nil
	case cond.Holding != "":
		col, err := typed[*sensor.Collection](c, cond.Holding)
		if err != nil {
			return nil, err
		}
		return col.Holding, nil
	case cond.Finished != "":
		b, ok := c.Behaviour(cond.Finished)
		if !ok {
			return nil, fmt.Errorf("%w: behaviour %q", ErrUnknownName, cond.Finished)
		}
		return arbiter.Finished(b), nil
	case cond.Below != nil:
		d, err := typed[*sensor.Distance](c, cond.Below.Sensor)
		if err != nil {
			return nil, err
		}
		return arbiter.Below(d.Value, cond.Below.Value), nil
	case cond.Count != nil:
		n := cond.Count.Value
		if n < 0 || n != math.Trunc(n) {
			return nil, fmt.Errorf("%w: count %v is not a whole number of items", ErrInvalid, n)
		}
		col, err := typed[*sensor.Collection](c, cond.Count.Sensor)
		if err != nil {
			return nil, err
		}
		return arbiter.Counter(int(n), col.Count), nil
	case cond.Not != nil:
		inner, err := compile(*cond.Not, c)
		if err != nil {
			return nil, err
		}
		return arbiter.Not(inner), nil
	}

	list, combine := cond.All, arbiter.All
	if len(cond.Any) > 0 {
		list, combine = cond.Any, arbiter.Any
	}
	parts := make([]arbiter.Condition, 0, len(list))
	for _, sub := range list {
		p, err := compile(sub, c)
		if err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return combine(parts...), nil
}

// typed looks up a sensor of the expected variant.
func typed[T sensor.Sensor](c *robot.Controller, name string) (T, error) {
	var zero T
	s, ok := c.Sensor(name)
	if !ok {
		return zero, fmt.Errorf("%w: sensor %q", ErrUnknownName, name)
	}
	t, ok := s.(T)
	if !ok {
		return zero, fmt.Errorf("%w: sensor %q is a %s", ErrInvalid, name, s.Kind())
	}
	return t, nil
}
