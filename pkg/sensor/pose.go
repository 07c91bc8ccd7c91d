package sensor

import (
	"math"

	"github.com/paulmach/orb"
)

// Compass reports the body heading.
type Compass struct {
	base
	noise       noiser
	heading     float64
	initialized bool
}

// NewCompass creates a compass.
func NewCompass(name string, noise Noise) (*Compass, error) {
	if err := noise.validate(); err != nil {
		return nil, err
	}
	return &Compass{
		base:  base{kind: KindCompass, name: name},
		noise: newNoiser(noise),
	}, nil
}

// Sample implements Sensor.
func (c *Compass) Sample() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.heading = wrap(c.noise.add(c.probe.Heading()))
	c.initialized = true
	return nil
}

// wrap maps an angle into (-π, π].
func wrap(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Heading returns the last heading in radians.
func (c *Compass) Heading() float64 { return c.heading }

// Initialized reports whether the compass has been sampled at least once.
func (c *Compass) Initialized() bool { return c.initialized }

// Velocity reports the signed linear speed.
type Velocity struct {
	base
	noise noiser
	value float64
}

// NewVelocity creates a speedometer.
func NewVelocity(name string, noise Noise) (*Velocity, error) {
	if err := noise.validate(); err != nil {
		return nil, err
	}
	return &Velocity{
		base:  base{kind: KindVelocity, name: name},
		noise: newNoiser(noise),
	}, nil
}

// Sample implements Sensor.
func (v *Velocity) Sample() error {
	if err := v.ready(); err != nil {
		return err
	}
	v.value = v.noise.apply(v.probe.Velocity())
	return nil
}

// Value returns the last speed.
func (v *Velocity) Value() float64 { return v.value }

// GPS reports the body position.
type GPS struct {
	base
	position orb.Point
}

// NewGPS creates a position sensor.
func NewGPS(name string) *GPS {
	return &GPS{base: base{kind: KindGPS, name: name}}
}

// Sample implements Sensor.
func (g *GPS) Sample() error {
	if err := g.ready(); err != nil {
		return err
	}
	g.position = g.probe.Position()
	return nil
}

// Position returns the last position.
func (g *GPS) Position() orb.Point { return g.position }

// Encoder reports the total distance travelled.
type Encoder struct {
	base
	value float64
}

// NewEncoder creates an odometer.
func NewEncoder(name string) *Encoder {
	return &Encoder{base: base{kind: KindEncoder, name: name}}
}

// Sample implements Sensor.
func (e *Encoder) Sample() error {
	if err := e.ready(); err != nil {
		return err
	}
	e.value = e.probe.Odometer()
	return nil
}

// Value returns the odometer reading.
func (e *Encoder) Value() float64 { return e.value }

// Terrain reports the friction factor under the body.
type Terrain struct {
	base
	value float64
}

// NewTerrain creates a terrain sensor.
func NewTerrain(name string) *Terrain {
	return &Terrain{base: base{kind: KindTerrain, name: name}, value: 1}
}

// Sample implements Sensor.
func (t *Terrain) Sample() error {
	if err := t.ready(); err != nil {
		return err
	}
	t.value = t.probe.Terrain()
	return nil
}

// Value returns the last friction factor.
func (t *Terrain) Value() float64 { return t.value }
