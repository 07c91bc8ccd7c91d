package behaviour

import (
	"math"
	"time"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Wall-follow hysteresis band around the configured proximity.
const (
	wallLow    = 0.95
	wallHigh   = 1.05
	wallAdjust = math.Pi / 11
)

// FollowWall keeps a side rangefinder at a set distance from a wall while
// cruising. It never finishes.
type FollowWall struct {
	base
	cfg    WallConfig
	dist   *sensor.Distance
	cruise *cruise
	steer  *steer
}

// NewFollowWall creates a wall follower reading dist.
func NewFollowWall(vel *sensor.Velocity, compass *sensor.Compass, dist *sensor.Distance, cfg WallConfig) (*FollowWall, error) {
	if vel == nil || compass == nil || dist == nil {
		return nil, invalid("follow-wall needs velocity, compass and distance sensors")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FollowWall{
		base:   base{kind: KindFollowWall},
		cfg:    cfg,
		dist:   dist,
		cruise: newCruise(vel, cfg.Velocity, cfg.step()),
		steer:  newSteer(compass, DefaultPrecision, cfg.step()),
	}, nil
}

// direction is 1 for a clockwise circuit and -1 for anticlockwise.
func (f *FollowWall) direction() float64 {
	if f.cfg.Anticlockwise {
		return -1
	}
	return 1
}

// correction returns the heading change for the current reading.
func (f *FollowWall) correction() float64 {
	d := f.dist.Value()
	switch {
	case !f.dist.Detected():
		return 0
	case d < wallLow*f.cfg.Proximity:
		return f.direction() * wallAdjust
	case d > wallHigh*f.cfg.Proximity:
		return -f.direction() * wallAdjust
	default:
		return 0
	}
}

// Update implements Behaviour.
func (f *FollowWall) Update() (actuator.Command, error) {
	f.steer.aim(f.correction())
	return actuator.Drive(f.cruise.motor(), f.steer.steering()), nil
}

// Reset implements Behaviour.
func (f *FollowWall) Reset() {
	f.cruise.reset()
	f.steer.reset()
}

// SetProximity changes the wall distance to hold.
func (f *FollowWall) SetProximity(p float64) error {
	if p <= 0 {
		return invalid("wall proximity must be positive, got %v", p)
	}
	f.cfg.Proximity = p
	return nil
}

// Config returns the current configuration.
func (f *FollowWall) Config() WallConfig { return f.cfg }

// AvoidObstacle cruises and steers away from whichever side has an obstacle
// inside its react distance. It never finishes.
type AvoidObstacle struct {
	base
	cfg         AvoidConfig
	left, right *sensor.Distance
	cruise      *cruise
	// Each side reuses a wall follower turning away from that side.
	leftWall, rightWall *FollowWall
}

// NewAvoidObstacle creates obstacle avoidance from two forward-angled
// rangefinders.
func NewAvoidObstacle(vel *sensor.Velocity, compass *sensor.Compass, left, right *sensor.Distance, cfg AvoidConfig) (*AvoidObstacle, error) {
	if left == nil || right == nil {
		return nil, invalid("avoid-obstacle needs left and right distance sensors")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	wall := WallConfig{Timing: cfg.Timing, Velocity: cfg.Velocity, Proximity: cfg.Proximity}
	wall.Anticlockwise = true
	lw, err := NewFollowWall(vel, compass, left, wall)
	if err != nil {
		return nil, err
	}
	wall.Anticlockwise = false
	rw, err := NewFollowWall(vel, compass, right, wall)
	if err != nil {
		return nil, err
	}
	return &AvoidObstacle{
		base:      base{kind: KindAvoidObstacle},
		cfg:       cfg,
		left:      left,
		right:     right,
		cruise:    newCruise(vel, cfg.Velocity, cfg.step()),
		leftWall:  lw,
		rightWall: rw,
	}, nil
}

// Update implements Behaviour. When both sides react the right side wins.
func (a *AvoidObstacle) Update() (actuator.Command, error) {
	var steering float64
	if a.left.Value() < a.cfg.React {
		c, err := a.leftWall.Update()
		if err != nil {
			return actuator.Command{}, err
		}
		steering = c.Steering()
	}
	if a.right.Value() < a.cfg.React {
		c, err := a.rightWall.Update()
		if err != nil {
			return actuator.Command{}, err
		}
		steering = c.Steering()
	}
	return actuator.Drive(a.cruise.motor(), steering), nil
}

// Reset implements Behaviour.
func (a *AvoidObstacle) Reset() {
	a.cruise.reset()
	a.leftWall.Reset()
	a.rightWall.Reset()
}

// SetVelocity changes the cruise speed.
func (a *AvoidObstacle) SetVelocity(v float64) {
	a.cfg.Velocity = v
	a.cruise.target = v
	a.cruise.set(v)
}

// Bounce shuttles between obstacles ahead and behind. It never finishes.
type Bounce struct {
	base
	cfg         BounceConfig
	front, rear *sensor.Distance
	direction   float64
}

// NewBounce creates a shuttle between front and rear rangefinders.
func NewBounce(front, rear *sensor.Distance, cfg BounceConfig) (*Bounce, error) {
	if front == nil || rear == nil {
		return nil, invalid("bounce needs front and rear distance sensors")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bounce{
		base:      base{kind: KindBounce},
		cfg:       cfg,
		front:     front,
		rear:      rear,
		direction: 1,
	}, nil
}

// Update implements Behaviour.
func (b *Bounce) Update() (actuator.Command, error) {
	if b.front.Value() < b.cfg.React {
		b.direction = -1
	}
	if b.rear.Value() < b.cfg.React {
		b.direction = 1
	}
	return actuator.Drive(b.cfg.Motor*b.direction, b.cfg.Steering*b.direction), nil
}

// Reset implements Behaviour.
func (b *Bounce) Reset() { b.direction = 1 }

// Forward reports whether the shuttle is heading forwards.
func (b *Bounce) Forward() bool { return b.direction > 0 }

// BumpReverse cruises forwards and reverses on contact. The contact tick
// itself already reverses. It never finishes.
type BumpReverse struct {
	base
	cfg      BumpConfig
	bumper   *sensor.Bumper
	holdLeft time.Duration
}

// NewBumpReverse creates bump-and-reverse on a contact sensor.
func NewBumpReverse(bumper *sensor.Bumper, cfg BumpConfig) (*BumpReverse, error) {
	if bumper == nil {
		return nil, invalid("bump-reverse needs a bumper")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &BumpReverse{
		base:   base{kind: KindBumpReverse},
		cfg:    cfg,
		bumper: bumper,
	}, nil
}

// Update implements Behaviour.
func (b *BumpReverse) Update() (actuator.Command, error) {
	if b.bumper.Contact() {
		b.holdLeft = b.cfg.Hold
		return actuator.Drive(-b.cfg.Reverse, 0), nil
	}
	if b.holdLeft > 0 {
		b.holdLeft -= b.cfg.step()
		return actuator.Drive(-b.cfg.Reverse, 0), nil
	}
	return actuator.Drive(b.cfg.Cruise, 0), nil
}

// Reset implements Behaviour.
func (b *BumpReverse) Reset() { b.holdLeft = 0 }

// Reversing reports whether the last update reversed.
func (b *BumpReverse) Reversing() bool {
	return b.bumper.Contact() || b.holdLeft > 0
}
