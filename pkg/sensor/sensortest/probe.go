// Package sensortest provides a scriptable sensor.Probe for tests.
package sensortest

import (
	"github.com/paulmach/orb"

	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Probe is an in-memory sensor.Probe. Tests set its fields between ticks.
type Probe struct {
	Head     float64
	Speed    float64
	Pos      orb.Point
	Odo      float64
	Friction float64

	// Ranges maps a mount angle to the reported distance. Mounts without an
	// entry report the sensor's max range.
	Ranges map[float64]float64

	// Contacts maps a mount offset to a contact state.
	Contacts map[orb.Point]bool

	Held int
	Hold bool

	Robot  sensor.Detection
	Sights map[sensor.Target]sensor.Detection
}

// New returns an empty probe on clear floor.
func New() *Probe {
	return &Probe{
		Friction: 1,
		Ranges:   make(map[float64]float64),
		Contacts: make(map[orb.Point]bool),
		Sights:   make(map[sensor.Target]sensor.Detection),
	}
}

var _ sensor.Probe = (*Probe)(nil)

func (p *Probe) Heading() float64    { return p.Head }
func (p *Probe) Velocity() float64   { return p.Speed }
func (p *Probe) Position() orb.Point { return p.Pos }
func (p *Probe) Odometer() float64   { return p.Odo }
func (p *Probe) Terrain() float64    { return p.Friction }
func (p *Probe) HeldItems() int      { return p.Held }
func (p *Probe) Holding() bool       { return p.Hold }

func (p *Probe) Range(m sensor.Mount, maxRange float64) float64 {
	if d, ok := p.Ranges[m.Angle]; ok && d < maxRange {
		return d
	}
	return maxRange
}

func (p *Probe) Contact(m sensor.Mount, _ sensor.Shape) bool {
	return p.Contacts[m.Offset]
}

func (p *Probe) NearestRobot(_ sensor.Mount, maxRange float64) sensor.Detection {
	if !p.Robot.Found || p.Robot.Distance > maxRange {
		return sensor.NoDetection()
	}
	return p.Robot
}

func (p *Probe) Detect(_ sensor.Mount, target sensor.Target, _, maxDistance float64) sensor.Detection {
	d, ok := p.Sights[target]
	if !ok || !d.Found || d.Distance > maxDistance {
		return sensor.NoDetection()
	}
	return d
}

// Sample samples every sensor and stops at the first error.
func Sample(sensors ...sensor.Sensor) error {
	for _, s := range sensors {
		if err := s.Sample(); err != nil {
			return err
		}
	}
	return nil
}

// Bind binds every sensor to p.
func (p *Probe) Bind(sensors ...sensor.Sensor) {
	for _, s := range sensors {
		s.Bind(p)
	}
}
