package sensor

import "fmt"

// Default calibration values.
const (
	DefaultDistanceRange = 800.0
	DefaultRadarRange    = 300.0
	DefaultCameraDepth   = 500.0
)

// DistanceConfig calibrates a rangefinder.
type DistanceConfig struct {
	Mount    Mount   `yaml:"mount"`
	MaxRange float64 `yaml:"max_range"`
	Noise    Noise   `yaml:"noise"`
}

// DefaultDistanceConfig returns a forward-facing rangefinder.
func DefaultDistanceConfig() DistanceConfig {
	return DistanceConfig{MaxRange: DefaultDistanceRange}
}

// Validate checks the calibration.
func (c DistanceConfig) Validate() error {
	if c.MaxRange <= 0 {
		return fmt.Errorf("%w: distance range must be positive, got %v", ErrInvalidConfig, c.MaxRange)
	}
	return c.Noise.validate()
}

// Distance measures the distance to the nearest obstacle along its axis.
type Distance struct {
	base
	cfg   DistanceConfig
	noise noiser
	value float64
}

// NewDistance creates a rangefinder.
func NewDistance(name string, cfg DistanceConfig) (*Distance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Distance{
		base:  base{kind: KindDistance, name: name},
		cfg:   cfg,
		noise: newNoiser(cfg.Noise),
		value: cfg.MaxRange,
	}, nil
}

// Sample implements Sensor.
func (d *Distance) Sample() error {
	if err := d.ready(); err != nil {
		return err
	}
	r := d.probe.Range(d.cfg.Mount, d.cfg.MaxRange)
	if r >= d.cfg.MaxRange {
		d.value = d.cfg.MaxRange
		return nil
	}
	d.value = min(max(d.noise.apply(r), 0), d.cfg.MaxRange)
	return nil
}

// Value returns the last distance. It equals MaxRange when nothing is in
// range.
func (d *Distance) Value() float64 { return d.value }

// MaxRange returns the detection limit.
func (d *Distance) MaxRange() float64 { return d.cfg.MaxRange }

// Detected reports whether an obstacle is inside the range.
func (d *Distance) Detected() bool { return d.value < d.cfg.MaxRange }

// Mount returns the sensor placement.
func (d *Distance) Mount() Mount { return d.cfg.Mount }

// BumperConfig calibrates a contact sensor.
type BumperConfig struct {
	Mount Mount `yaml:"mount"`
	Shape Shape `yaml:"shape"`
}

// Validate checks the calibration.
func (c BumperConfig) Validate() error {
	return c.Shape.Validate()
}

// Bumper reports contact between its footprint and anything in the world.
type Bumper struct {
	base
	cfg     BumperConfig
	contact bool
}

// NewBumper creates a contact sensor.
func NewBumper(name string, cfg BumperConfig) (*Bumper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bumper{
		base: base{kind: KindBumper, name: name},
		cfg:  cfg,
	}, nil
}

// Sample implements Sensor.
func (b *Bumper) Sample() error {
	if err := b.ready(); err != nil {
		return err
	}
	b.contact = b.probe.Contact(b.cfg.Mount, b.cfg.Shape)
	return nil
}

// Contact reports whether the bumper touched something this tick.
func (b *Bumper) Contact() bool { return b.contact }
