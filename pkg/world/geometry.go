package world

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/teslashibe/go-brains/pkg/control"
)

// circleSides is the polygon resolution used for circular footprints.
const circleSides = 12

func wrap(a float64) float64 { return control.Wrap(a) }

// toWorld maps a body-frame offset to arena coordinates.
func toWorld(pos orb.Point, heading float64, off orb.Point) orb.Point {
	sin, cos := math.Sincos(heading)
	return orb.Point{
		pos[0] + off[0]*cos - off[1]*sin,
		pos[1] + off[0]*sin + off[1]*cos,
	}
}

// ahead returns the point d along angle a from p.
func ahead(p orb.Point, a, d float64) orb.Point {
	sin, cos := math.Sincos(a)
	return orb.Point{p[0] + d*cos, p[1] + d*sin}
}

// bearing is the direction from a to b.
func bearing(a, b orb.Point) float64 {
	return math.Atan2(b[1]-a[1], b[0]-a[0])
}

// rayBound returns the distance along a unit ray from o to the first face
// of b. An origin inside b reports zero.
func rayBound(o orb.Point, dx, dy float64, b orb.Bound) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	dir := [2]float64{dx, dy}
	for axis := range 2 {
		lo, hi := b.Min[axis], b.Max[axis]
		if math.Abs(dir[axis]) < 1e-12 {
			if o[axis] < lo || o[axis] > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o[axis]) / dir[axis]
		t2 := (hi - o[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return max(tmin, 0), true
}

// rayExit returns the distance from o, inside b, to b's boundary.
func rayExit(o orb.Point, dx, dy float64, b orb.Bound) float64 {
	if !b.Contains(o) {
		return 0
	}
	t := math.Inf(1)
	dir := [2]float64{dx, dy}
	for axis := range 2 {
		switch {
		case dir[axis] > 1e-12:
			t = min(t, (b.Max[axis]-o[axis])/dir[axis])
		case dir[axis] < -1e-12:
			t = min(t, (b.Min[axis]-o[axis])/dir[axis])
		}
	}
	return t
}

// rayCircle returns the distance along a unit ray from o to a circle.
func rayCircle(o orb.Point, dx, dy float64, c orb.Point, r float64) (float64, bool) {
	fx, fy := o[0]-c[0], o[1]-c[1]
	b := fx*dx + fy*dy
	disc := b*b - (fx*fx + fy*fy - r*r)
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	near, far := -b-sq, -b+sq
	if far < 0 {
		return 0, false
	}
	return max(near, 0), true
}

// footprint returns the closed ring a contact shape covers, centred on c.
func footprint(c orb.Point, heading float64, radius, width, height, angle float64) orb.Ring {
	var pts []orb.Point
	if radius > 0 {
		for i := range circleSides {
			a := 2 * math.Pi * float64(i) / circleSides
			pts = append(pts, ahead(c, a, radius))
		}
	} else {
		hw, hh := width/2, height/2
		for _, off := range []orb.Point{{hw, hh}, {-hw, hh}, {-hw, -hh}, {hw, -hh}} {
			pts = append(pts, toWorld(c, heading+angle, off))
		}
	}
	return append(orb.Ring(pts), pts[0])
}

// ringTouchesBound reports whether a ring overlaps a rectangle.
func ringTouchesBound(r orb.Ring, b orb.Bound) bool {
	if !r.Bound().Intersects(b) {
		return false
	}
	for _, p := range r {
		if b.Contains(p) {
			return true
		}
	}
	for _, p := range b.ToRing() {
		if planar.RingContains(r, p) {
			return true
		}
	}
	return false
}

// ringTouchesCircle reports whether a ring overlaps a circle.
func ringTouchesCircle(r orb.Ring, c orb.Point, radius float64) bool {
	return planar.RingContains(r, c) || planar.DistanceFrom(r, c) <= radius
}
