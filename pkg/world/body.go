package world

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Body is one robot in the arena. It is the sensor.Probe its controller's
// sensors are bound to.
type Body struct {
	world   *World
	name    string
	pos     orb.Point
	heading float64
	speed   float64
	odo     float64
	held    int
	arm     bool
	bumped  bool
}

var _ sensor.Probe = (*Body)(nil)

// State is a point-in-time copy of a body for telemetry.
type State struct {
	Name     string    `json:"name"`
	Position orb.Point `json:"position"`
	Heading  float64   `json:"heading"`
	Velocity float64   `json:"velocity"`
	Odometer float64   `json:"odometer"`
	Held     int       `json:"held"`
	Arm      bool      `json:"arm"`
	Bumped   bool      `json:"bumped"`
}

// Name returns the body name.
func (b *Body) Name() string { return b.name }

// State returns a copy of the body's state.
func (b *Body) State() State {
	return State{
		Name:     b.name,
		Position: b.pos,
		Heading:  b.heading,
		Velocity: b.speed,
		Odometer: b.odo,
		Held:     b.held,
		Arm:      b.arm,
		Bumped:   b.bumped,
	}
}

func (b *Body) Heading() float64    { return b.heading }
func (b *Body) Velocity() float64   { return b.speed }
func (b *Body) Position() orb.Point { return b.pos }
func (b *Body) Odometer() float64   { return b.odo }
func (b *Body) HeldItems() int      { return b.held }
func (b *Body) Holding() bool       { return b.arm && b.held > 0 }
func (b *Body) Terrain() float64    { return b.world.friction(b.pos) }

// Range casts a ray along the mount axis against walls, obstacles and other
// bodies.
func (b *Body) Range(m sensor.Mount, maxRange float64) float64 {
	o := toWorld(b.pos, b.heading, m.Offset)
	dy, dx := math.Sincos(b.heading + m.Angle)

	best := rayExit(o, dx, dy, b.world.cfg.Arena)
	for _, ob := range b.world.cfg.Obstacles {
		if t, ok := rayBound(o, dx, dy, ob); ok {
			best = min(best, t)
		}
	}
	for _, other := range b.world.bodies {
		if other == b {
			continue
		}
		if t, ok := rayCircle(o, dx, dy, other.pos, b.world.cfg.Radius); ok {
			best = min(best, t)
		}
	}
	return min(best, maxRange)
}

// Contact reports whether the mounted footprint overlaps a wall, an
// obstacle or another body.
func (b *Body) Contact(m sensor.Mount, s sensor.Shape) bool {
	c := toWorld(b.pos, b.heading, m.Offset)
	ring := footprint(c, b.heading, s.Radius, s.Width, s.Height, s.Angle)

	arena := b.world.cfg.Arena
	for _, p := range ring {
		if !arena.Contains(p) {
			return true
		}
	}
	for _, ob := range b.world.cfg.Obstacles {
		if ringTouchesBound(ring, ob) {
			return true
		}
	}
	for _, other := range b.world.bodies {
		if other != b && ringTouchesCircle(ring, other.pos, b.world.cfg.Radius) {
			return true
		}
	}
	return false
}

// NearestRobot returns the closest other body within maxRange of the mount.
func (b *Body) NearestRobot(m sensor.Mount, maxRange float64) sensor.Detection {
	o := toWorld(b.pos, b.heading, m.Offset)
	best := sensor.NoDetection()
	for _, other := range b.world.bodies {
		if other == b {
			continue
		}
		d := planar.Distance(o, other.pos)
		if d > maxRange || (best.Found && d >= best.Distance) {
			continue
		}
		best = sensor.Detection{Found: true, Distance: d, Angle: wrap(bearing(o, other.pos) - b.heading)}
	}
	return best
}

// Detect returns the closest object of the target class inside the view
// cone of the mount.
func (b *Body) Detect(m sensor.Mount, target sensor.Target, aperture, maxDistance float64) sensor.Detection {
	o := toWorld(b.pos, b.heading, m.Offset)
	axis := b.heading + m.Angle
	best := sensor.NoDetection()
	consider := func(p orb.Point) {
		d := planar.Distance(o, p)
		if d > maxDistance || (best.Found && d >= best.Distance) {
			return
		}
		dir := bearing(o, p)
		if math.Abs(wrap(dir-axis)) > aperture/2 {
			return
		}
		best = sensor.Detection{Found: true, Distance: d, Angle: wrap(dir - b.heading)}
	}

	if target == sensor.TargetRobots {
		for _, other := range b.world.bodies {
			if other != b {
				consider(other.pos)
			}
		}
		return best
	}
	for _, it := range b.world.items {
		switch {
		case target == sensor.TargetUprightItems && !it.Upright:
		case target == sensor.TargetFallenItems && it.Upright:
		default:
			consider(it.Position)
		}
	}
	return best
}

// Apply integrates one tick of cmd. Speed follows the motor command scaled
// by floor friction; steering turns the body; a move that would collide is
// refused and the body stalls. An engaged arm picks up items within reach;
// releasing it drops everything held in front of the body.
func (b *Body) Apply(cmd actuator.Command, dt time.Duration) {
	w := b.world
	secs := dt.Seconds()

	alpha := secs / (w.cfg.SpeedTau.Seconds() + secs)
	b.speed += (cmd.Motor()*b.Terrain() - b.speed) * alpha
	b.heading = wrap(b.heading + cmd.Steering()*w.cfg.TurnRate*secs)

	b.bumped = false
	if step := b.speed * secs; step != 0 {
		next := ahead(b.pos, b.heading, step)
		if w.blocked(b, next) {
			b.speed = 0
			b.bumped = true
		} else {
			b.pos = next
			b.odo += math.Abs(step)
		}
	}

	switch {
	case cmd.Arm():
		b.held += w.collect(b.pos)
	case b.arm && b.held > 0:
		w.drop(ahead(b.pos, b.heading, w.cfg.Radius+w.cfg.Reach/4), b.held)
		b.held = 0
	}
	b.arm = cmd.Arm()
}
