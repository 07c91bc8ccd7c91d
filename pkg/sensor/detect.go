package sensor

import (
	"fmt"
	"math"
)

// Collection counts the items the body is carrying.
type Collection struct {
	base
	count   int
	holding bool
}

// NewCollection creates a collection sensor.
func NewCollection(name string) *Collection {
	return &Collection{base: base{kind: KindCollection, name: name}}
}

// Sample implements Sensor.
func (c *Collection) Sample() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.count = c.probe.HeldItems()
	c.holding = c.probe.Holding()
	return nil
}

// Count returns the number of items collected.
func (c *Collection) Count() int { return c.count }

// Holding reports whether an item is in the gripper.
func (c *Collection) Holding() bool { return c.holding }

// RadarConfig calibrates a robot radar.
type RadarConfig struct {
	Mount Mount   `yaml:"mount"`
	Range float64 `yaml:"range"`
}

// DefaultRadarConfig returns a centre-mounted radar.
func DefaultRadarConfig() RadarConfig {
	return RadarConfig{Range: DefaultRadarRange}
}

// Validate checks the calibration.
func (c RadarConfig) Validate() error {
	if c.Range <= 0 {
		return fmt.Errorf("%w: radar range must be positive, got %v", ErrInvalidConfig, c.Range)
	}
	return nil
}

// Radar finds the nearest other robot within range, in any direction.
type Radar struct {
	base
	cfg RadarConfig
	det Detection
}

// NewRadar creates a radar.
func NewRadar(name string, cfg RadarConfig) (*Radar, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Radar{
		base: base{kind: KindRadar, name: name},
		cfg:  cfg,
	}, nil
}

// Sample implements Sensor.
func (r *Radar) Sample() error {
	if err := r.ready(); err != nil {
		return err
	}
	r.det = r.probe.NearestRobot(r.cfg.Mount, r.cfg.Range)
	return nil
}

// Detection returns the last sighting.
func (r *Radar) Detection() Detection { return r.det }

// HasRobot reports whether a robot was in range.
func (r *Radar) HasRobot() bool { return r.det.Found }

// Range returns the detection radius.
func (r *Radar) Range() float64 { return r.cfg.Range }

// CameraConfig calibrates a camera.
type CameraConfig struct {
	Mount Mount `yaml:"mount"`
	// Aperture is the full horizontal field of view in radians.
	Aperture    float64 `yaml:"aperture"`
	MaxDistance float64 `yaml:"max_distance"`
	Target      Target  `yaml:"target"`
}

// DefaultCameraConfig returns a forward camera looking for items.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Aperture:    math.Pi / 2,
		MaxDistance: DefaultCameraDepth,
		Target:      TargetItems,
	}
}

// Validate checks the calibration.
func (c CameraConfig) Validate() error {
	if !validAperture(c.Aperture) {
		return fmt.Errorf("%w: camera aperture must be in (0, 2π], got %v", ErrInvalidConfig, c.Aperture)
	}
	if c.MaxDistance <= 0 {
		return fmt.Errorf("%w: camera distance must be positive, got %v", ErrInvalidConfig, c.MaxDistance)
	}
	if !c.Target.Valid() {
		return fmt.Errorf("%w: unknown camera target %q", ErrInvalidConfig, c.Target)
	}
	return nil
}

// Camera finds the nearest object of its target class in its view cone.
type Camera struct {
	base
	cfg CameraConfig
	det Detection
}

// NewCamera creates a camera.
func NewCamera(name string, cfg CameraConfig) (*Camera, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Camera{
		base: base{kind: KindCamera, name: name},
		cfg:  cfg,
	}, nil
}

// Sample implements Sensor.
func (c *Camera) Sample() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.det = c.probe.Detect(c.cfg.Mount, c.cfg.Target, c.cfg.Aperture, c.cfg.MaxDistance)
	return nil
}

// Detection returns the last sighting.
func (c *Camera) Detection() Detection { return c.det }

// HasTarget reports whether a target was in view.
func (c *Camera) HasTarget() bool { return c.det.Found }

// Target returns the object class being looked for.
func (c *Camera) Target() Target { return c.cfg.Target }

// SetTarget changes the object class from the next Sample on.
func (c *Camera) SetTarget(t Target) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown camera target %q", ErrInvalidConfig, t)
	}
	c.cfg.Target = t
	return nil
}
