// Package sensor provides read-only views onto simulated physical state.
//
// A sensor is constructed from a typed, validated configuration, bound to the
// host's Probe by its owning controller, and sampled once per tick before any
// behaviour runs. Accessors return the reading cached by the last Sample, so
// every behaviour sees the same value within a tick.
package sensor

import (
	"fmt"
	"math/rand/v2"
)

// Kind tags a sensor variant.
type Kind string

const (
	KindDistance   Kind = "distance"
	KindCompass    Kind = "compass"
	KindVelocity   Kind = "velocity"
	KindBumper     Kind = "bumper"
	KindCollection Kind = "collection"
	KindRadar      Kind = "radar"
	KindCamera     Kind = "camera"
	KindGPS        Kind = "gps"
	KindEncoder    Kind = "encoder"
	KindTerrain    Kind = "terrain"
)

// Kinds lists every sensor kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindDistance, KindCompass, KindVelocity, KindBumper, KindCollection,
		KindRadar, KindCamera, KindGPS, KindEncoder, KindTerrain,
	}
}

// Sensor is the common surface of every sensor variant.
type Sensor interface {
	Kind() Kind
	Name() string

	// Bind attaches the sensor to the host probe. It is called by the
	// owning controller; rebinding replaces the probe.
	Bind(p Probe)

	// Bound reports whether a probe is attached.
	Bound() bool

	// Sample queries the probe and caches the reading for this tick.
	Sample() error
}

// base carries identity and binding shared by all variants.
type base struct {
	kind  Kind
	name  string
	probe Probe
}

func (b *base) Kind() Kind     { return b.kind }
func (b *base) Name() string   { return b.name }
func (b *base) Bind(p Probe)   { b.probe = p }
func (b *base) Bound() bool    { return b.probe != nil }
func (b *base) String() string { return fmt.Sprintf("%s(%s)", b.kind, b.name) }

func (b *base) ready() error {
	if b.probe == nil {
		return fmt.Errorf("%w: %s", ErrUnbound, b)
	}
	return nil
}

// Noise adds Gaussian noise to a reading. The zero value is noiseless.
type Noise struct {
	// Sigma is the standard deviation. It is relative to the reading for
	// velocity and distance and in radians for the compass.
	Sigma float64 `yaml:"sigma" json:"sigma,omitempty"`
	// Seed makes the noise sequence reproducible.
	Seed uint64 `yaml:"seed" json:"seed,omitempty"`
}

func (n Noise) validate() error {
	if n.Sigma < 0 {
		return fmt.Errorf("%w: negative noise sigma %v", ErrInvalidConfig, n.Sigma)
	}
	return nil
}

// noiser applies a Noise configuration.
type noiser struct {
	sigma float64
	rng   *rand.Rand
}

func newNoiser(n Noise) noiser {
	if n.Sigma == 0 {
		return noiser{}
	}
	return noiser{
		sigma: n.Sigma,
		rng:   rand.New(rand.NewPCG(n.Seed, n.Seed^0x9e3779b97f4a7c15)),
	}
}

// apply adds noise proportional to v.
func (n noiser) apply(v float64) float64 {
	if n.rng == nil {
		return v
	}
	return v + n.rng.NormFloat64()*n.sigma*v
}

// add adds noise of fixed scale.
func (n noiser) add(v float64) float64 {
	if n.rng == nil {
		return v
	}
	return v + n.rng.NormFloat64()*n.sigma
}
