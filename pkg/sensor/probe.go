package sensor

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// The host exposes the simulated world through these interfaces. They are
// kept small so a host can be tested one capability at a time; Probe is the
// composite every sensor is bound to.

// PoseProbe reports the body's own motion state.
type PoseProbe interface {
	// Heading is the body orientation in radians, counterclockwise positive.
	Heading() float64
	// Velocity is the signed linear speed along the heading.
	Velocity() float64
	// Position is the body centre in arena coordinates.
	Position() orb.Point
	// Odometer is the total distance travelled.
	Odometer() float64
}

// RangeProbe measures distance to the nearest obstacle along a mounted axis.
type RangeProbe interface {
	// Range returns the distance along the mount's axis, or maxRange when
	// nothing is closer.
	Range(m Mount, maxRange float64) float64
}

// ContactProbe reports whether a shape at a mount touches anything.
type ContactProbe interface {
	Contact(m Mount, s Shape) bool
}

// CollectionProbe reports items held by the body.
type CollectionProbe interface {
	HeldItems() int
	Holding() bool
}

// RadarProbe finds other robots around the body.
type RadarProbe interface {
	NearestRobot(m Mount, maxRange float64) Detection
}

// VisionProbe finds the nearest object of a class inside a view cone.
type VisionProbe interface {
	Detect(m Mount, target Target, aperture, maxDistance float64) Detection
}

// TerrainProbe reports the ground under the body.
type TerrainProbe interface {
	// Terrain returns the friction factor in [0, 1]; 1 is clear floor.
	Terrain() float64
}

// Probe is the composite physical-state query interface a host implements.
type Probe interface {
	PoseProbe
	RangeProbe
	ContactProbe
	CollectionProbe
	RadarProbe
	VisionProbe
	TerrainProbe
}

// Mount places a sensor on the body: an offset from the body centre in the
// body frame (x forward, y left) and an angle relative to the heading.
type Mount struct {
	Offset orb.Point `yaml:"offset" json:"offset"`
	Angle  float64   `yaml:"angle" json:"angle"`
}

// Shape is a contact sensor footprint: a circle when Radius is set, a
// rectangle rotated by Angle otherwise.
type Shape struct {
	Radius float64 `yaml:"radius" json:"radius,omitempty"`
	Width  float64 `yaml:"width" json:"width,omitempty"`
	Height float64 `yaml:"height" json:"height,omitempty"`
	Angle  float64 `yaml:"angle" json:"angle,omitempty"`
}

// Circle reports whether the shape is circular.
func (s Shape) Circle() bool {
	return s.Radius > 0
}

// Validate checks the footprint dimensions.
func (s Shape) Validate() error {
	switch {
	case s.Radius < 0 || s.Width < 0 || s.Height < 0:
		return fmt.Errorf("%w: negative bumper dimension", ErrInvalidConfig)
	case s.Radius > 0:
		return nil
	case s.Width > 0 && s.Height > 0:
		return nil
	default:
		return fmt.Errorf("%w: bumper needs a radius or width and height", ErrInvalidConfig)
	}
}

// Target selects the class of object a camera looks for.
type Target string

const (
	TargetItems        Target = "items"
	TargetRobots       Target = "robots"
	TargetUprightItems Target = "upright-items"
	TargetFallenItems  Target = "fallen-items"
)

// Valid reports whether t is a known target class.
func (t Target) Valid() bool {
	switch t {
	case TargetItems, TargetRobots, TargetUprightItems, TargetFallenItems:
		return true
	}
	return false
}

// Detection is a ranged sighting. Found is false when nothing was seen; that
// is an ordinary reading, not an error.
type Detection struct {
	Found    bool    `json:"found"`
	Distance float64 `json:"distance"`
	// Angle is the bearing relative to the heading in (-π, π],
	// counterclockwise positive.
	Angle float64 `json:"angle"`
}

// NoDetection is the empty sighting.
func NoDetection() Detection {
	return Detection{}
}

// validAperture reports whether a is a usable field of view.
func validAperture(a float64) bool {
	return a > 0 && a <= 2*math.Pi
}
