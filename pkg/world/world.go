// Package world is a planar arena host for robot controllers. It answers
// sensor queries for each body and integrates the commands the controllers
// emit.
//
// A World is not safe for concurrent mutation. Sensor queries only read, so
// bodies may be sampled in parallel between calls to Apply.
package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Default physical parameters.
const (
	DefaultRadius   = 20.0
	DefaultReach    = 80.0
	DefaultSpeedTau = 100 * time.Millisecond
	DefaultTurnRate = 0.2
)

var (
	// ErrBlocked is returned when a body is placed where it would collide.
	ErrBlocked = errors.New("position blocked")

	// ErrDuplicateBody is returned when two bodies share a name.
	ErrDuplicateBody = errors.New("duplicate body")
)

// Item is a collectable object.
type Item struct {
	Position orb.Point `json:"position"`
	Upright  bool      `json:"upright"`
}

// Patch is a region of floor with its own friction factor.
type Patch struct {
	Area     orb.Bound `json:"area"`
	Friction float64   `json:"friction"`
}

// Config describes an arena and its physics.
type Config struct {
	Arena     orb.Bound
	Obstacles []orb.Bound
	Items     []Item
	Terrain   []Patch

	// Radius is the body radius used for collisions.
	Radius float64
	// Reach is the distance from the body centre within which an engaged
	// arm picks items up.
	Reach float64
	// SpeedTau is the time constant with which speed follows the motor
	// command.
	SpeedTau time.Duration
	// TurnRate converts steering effort to radians per second.
	TurnRate float64
}

// DefaultConfig returns an empty 1000 by 800 arena.
func DefaultConfig() Config {
	return Config{
		Arena:    orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1000, 800}},
		Radius:   DefaultRadius,
		Reach:    DefaultReach,
		SpeedTau: DefaultSpeedTau,
		TurnRate: DefaultTurnRate,
	}
}

// World is the arena state.
type World struct {
	cfg    Config
	items  []Item
	bodies []*Body
	byName map[string]*Body
}

// New creates a world. Zero physical parameters take their defaults.
func New(cfg Config) *World {
	def := DefaultConfig()
	if cfg.Radius <= 0 {
		cfg.Radius = def.Radius
	}
	if cfg.Reach <= 0 {
		cfg.Reach = def.Reach
	}
	if cfg.SpeedTau <= 0 {
		cfg.SpeedTau = def.SpeedTau
	}
	if cfg.TurnRate <= 0 {
		cfg.TurnRate = def.TurnRate
	}
	return &World{
		cfg:    cfg,
		items:  append([]Item(nil), cfg.Items...),
		byName: make(map[string]*Body),
	}
}

// AddBody places a new body in the arena.
func (w *World) AddBody(name string, pos orb.Point, heading float64) (*Body, error) {
	if _, dup := w.byName[name]; dup {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateBody, name)
	}
	b := &Body{world: w, name: name, pos: pos, heading: wrap(heading)}
	if w.blocked(b, pos) {
		return nil, fmt.Errorf("%w: %q at %v", ErrBlocked, name, pos)
	}
	w.bodies = append(w.bodies, b)
	w.byName[name] = b
	return b, nil
}

// Body returns the named body.
func (w *World) Body(name string) (*Body, bool) {
	b, ok := w.byName[name]
	return b, ok
}

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*Body {
	return append([]*Body(nil), w.bodies...)
}

// Items returns the items lying in the arena.
func (w *World) Items() []Item {
	return append([]Item(nil), w.items...)
}

// Arena returns the arena bound.
func (w *World) Arena() orb.Bound { return w.cfg.Arena }

// Obstacles returns the fixed obstacles.
func (w *World) Obstacles() []orb.Bound {
	return append([]orb.Bound(nil), w.cfg.Obstacles...)
}

// blocked reports whether b would collide at p.
func (w *World) blocked(b *Body, p orb.Point) bool {
	r := w.cfg.Radius
	if !w.cfg.Arena.Pad(-r).Contains(p) {
		return true
	}
	for _, ob := range w.cfg.Obstacles {
		if ob.Contains(p) || planar.DistanceFrom(ob.ToRing(), p) < r {
			return true
		}
	}
	for _, o := range w.bodies {
		if o != b && planar.Distance(o.pos, p) < 2*r {
			return true
		}
	}
	return false
}

// friction returns the floor friction at p.
func (w *World) friction(p orb.Point) float64 {
	f := 1.0
	for _, patch := range w.cfg.Terrain {
		if patch.Area.Contains(p) {
			f = patch.Friction
		}
	}
	return f
}

// collect moves every item within reach of p into the caller's hold and
// returns how many were taken.
func (w *World) collect(p orb.Point) int {
	kept := w.items[:0]
	n := 0
	for _, it := range w.items {
		if planar.Distance(it.Position, p) <= w.cfg.Reach {
			n++
			continue
		}
		kept = append(kept, it)
	}
	w.items = kept
	return n
}

// drop lays n items at p.
func (w *World) drop(p orb.Point, n int) {
	for range n {
		w.items = append(w.items, Item{Position: p, Upright: false})
	}
}
