// Package actuator defines the command a robot controller emits each tick.
//
// A Command records which of its fields were written since it was last
// refreshed. Behaviours set only the fields they own; arbitration code
// combines commands with Overlay, naming every field it copies.
package actuator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Actuator limits. Setters clamp to these values.
const (
	MaxMotor    = 100.0
	MaxSteering = 15.0
)

// Field identifies one or more command fields.
type Field uint8

const (
	FieldMotor Field = 1 << iota
	FieldSteering
	FieldArm
	FieldFlags

	FieldNone  Field = 0
	FieldDrive       = FieldMotor | FieldSteering
	FieldAll         = FieldMotor | FieldSteering | FieldArm | FieldFlags
)

// Has reports whether every field in o is present in f.
func (f Field) Has(o Field) bool {
	return f&o == o
}

func (f Field) String() string {
	if f == FieldNone {
		return "none"
	}
	var parts []string
	for _, p := range []struct {
		f    Field
		name string
	}{
		{FieldMotor, "motor"},
		{FieldSteering, "steering"},
		{FieldArm, "arm"},
		{FieldFlags, "flags"},
	} {
		if f.Has(p.f) {
			parts = append(parts, p.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseField parses a field name as printed by String, or one of the
// groups "drive" and "all". Names may be joined with "|".
func ParseField(s string) (Field, error) {
	var f Field
	for _, part := range strings.Split(s, "|") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "motor":
			f |= FieldMotor
		case "steering":
			f |= FieldSteering
		case "arm":
			f |= FieldArm
		case "flags":
			f |= FieldFlags
		case "drive":
			f |= FieldDrive
		case "all":
			f |= FieldAll
		case "none":
		default:
			return FieldNone, fmt.Errorf("unknown command field %q", part)
		}
	}
	return f, nil
}

// Flag is an auxiliary discrete actuator.
type Flag uint16

// Auxiliary actuators known to the stub world. Behaviours may define more.
const (
	FlagBrake Flag = 1 << iota
	FlagBeacon
)

// Command is the actuator output of one tick. The zero value is a stopped
// robot with nothing written.
type Command struct {
	motor    float64
	steering float64
	arm      bool
	flags    Flag
	written  Field
}

// New returns a zeroed command.
func New() Command {
	return Command{}
}

// Drive returns a command with motor and steering written.
func Drive(motor, steering float64) Command {
	var c Command
	c.SetMotor(motor)
	c.SetSteering(steering)
	return c
}

// Motor returns the drive magnitude.
func (c Command) Motor() float64 { return c.motor }

// Steering returns the steering effort.
func (c Command) Steering() float64 { return c.steering }

// Arm reports whether the gripper is engaged.
func (c Command) Arm() bool { return c.arm }

// Flags returns the auxiliary flag set.
func (c Command) Flags() Flag { return c.flags }

// Flag reports whether f is set.
func (c Command) Flag(f Flag) bool { return c.flags&f == f }

// Written returns the fields set since the command was created or refreshed.
func (c Command) Written() Field { return c.written }

// Covers reports whether all of fields were written.
func (c Command) Covers(fields Field) bool { return c.written.Has(fields) }

// SetMotor sets the drive magnitude, clamped to ±MaxMotor.
func (c *Command) SetMotor(v float64) {
	c.motor = clamp(v, -MaxMotor, MaxMotor)
	c.written |= FieldMotor
}

// SetSteering sets the steering effort, clamped to ±MaxSteering.
func (c *Command) SetSteering(v float64) {
	c.steering = clamp(v, -MaxSteering, MaxSteering)
	c.written |= FieldSteering
}

// SetArm engages or releases the gripper.
func (c *Command) SetArm(on bool) {
	c.arm = on
	c.written |= FieldArm
}

// SetFlag sets or clears an auxiliary flag.
func (c *Command) SetFlag(f Flag, on bool) {
	if on {
		c.flags |= f
	} else {
		c.flags &^= f
	}
	c.written |= FieldFlags
}

// Stop zeroes motor and steering.
func (c *Command) Stop() {
	c.SetMotor(0)
	c.SetSteering(0)
}

// Fresh returns a copy of c with an empty written set. Arbitration starts
// each tick from the previous command refreshed this way, so fields nobody
// writes keep last tick's values and can be detected.
func (c Command) Fresh() Command {
	c.written = FieldNone
	return c
}

// Overlay copies the named fields of src onto c and marks them written.
func (c *Command) Overlay(src Command, fields Field) {
	if fields.Has(FieldMotor) {
		c.SetMotor(src.motor)
	}
	if fields.Has(FieldSteering) {
		c.SetSteering(src.steering)
	}
	if fields.Has(FieldArm) {
		c.SetArm(src.arm)
	}
	if fields.Has(FieldFlags) {
		c.flags = src.flags
		c.written |= FieldFlags
	}
}

func (c Command) String() string {
	return fmt.Sprintf("motor=%.2f steering=%.2f arm=%t flags=%#x written=%s",
		c.motor, c.steering, c.arm, uint16(c.flags), c.written)
}

type commandJSON struct {
	Motor    float64 `json:"motor"`
	Steering float64 `json:"steering"`
	Arm      bool    `json:"arm"`
	Flags    Flag    `json:"flags,omitempty"`
}

// MarshalJSON encodes the actuator values; the written set is tick-local and
// not encoded.
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(commandJSON{
		Motor:    c.motor,
		Steering: c.steering,
		Arm:      c.arm,
		Flags:    c.flags,
	})
}

// UnmarshalJSON decodes a command; every decoded field counts as written.
func (c *Command) UnmarshalJSON(data []byte) error {
	var v commandJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Command{}
	c.SetMotor(v.Motor)
	c.SetSteering(v.Steering)
	c.SetArm(v.Arm)
	c.flags = v.Flags
	c.written |= FieldFlags
	return nil
}

// clamp restricts v to the range [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
