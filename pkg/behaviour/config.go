package behaviour

import (
	"fmt"
	"math"
	"time"

	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Defaults for the stock behaviours.
const (
	DefaultVelocity       = 100.0
	DefaultTurnVelocity   = 20.0
	DefaultPrecision      = math.Pi / 64
	DefaultProximity      = 50.0
	DefaultAvoidReact     = 250.0
	DefaultObjectStop     = 70.0
	DefaultObjectVelocity = 80.0
	DefaultRobotStop      = 20.0
	DefaultRobotVelocity  = 60.0
	DefaultRobotSearch    = -math.Pi / 10
	DefaultBounceDistance = 200.0
	DefaultBounceEffort   = 50.0
	DefaultBumpEffort     = 20.0
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// DriveConfig configures a Drive. A zero Distance or Duration leaves that
// bound off; with both off the drive never finishes.
type DriveConfig struct {
	Timing   `yaml:",inline"`
	Velocity float64       `yaml:"velocity"`
	Distance float64       `yaml:"distance"`
	Duration time.Duration `yaml:"duration"`
}

// DefaultDriveConfig returns an unbounded drive at DefaultVelocity.
func DefaultDriveConfig() DriveConfig {
	return DriveConfig{Velocity: DefaultVelocity}
}

// Validate checks the configuration.
func (c DriveConfig) Validate() error {
	if c.Distance < 0 {
		return invalid("negative drive distance %v", c.Distance)
	}
	if c.Duration < 0 {
		return invalid("negative drive duration %v", c.Duration)
	}
	return c.Timing.validate()
}

// TurnConfig configures RelativeTurn and AbsoluteTurn. Angle is the turn
// for a relative turn and the target heading for an absolute one. A
// non-zero Steering replaces the heading loop with a fixed effort.
type TurnConfig struct {
	Timing    `yaml:",inline"`
	Angle     float64 `yaml:"angle"`
	Precision float64 `yaml:"precision"`
	Velocity  float64 `yaml:"velocity"`
	Steering  float64 `yaml:"steering"`
}

// DefaultTurnConfig returns a zero turn with stock precision and speed.
func DefaultTurnConfig() TurnConfig {
	return TurnConfig{Precision: DefaultPrecision, Velocity: DefaultTurnVelocity}
}

// Validate checks the configuration.
func (c TurnConfig) Validate() error {
	if c.Precision <= 0 {
		return invalid("turn precision must be positive, got %v", c.Precision)
	}
	if c.Steering < 0 {
		return invalid("negative turn steering %v", c.Steering)
	}
	return c.Timing.validate()
}

// WallConfig configures FollowWall.
type WallConfig struct {
	Timing        `yaml:",inline"`
	Velocity      float64 `yaml:"velocity"`
	Proximity     float64 `yaml:"proximity"`
	Anticlockwise bool    `yaml:"anticlockwise"`
}

// DefaultWallConfig returns a clockwise follower.
func DefaultWallConfig() WallConfig {
	return WallConfig{Velocity: DefaultVelocity, Proximity: DefaultProximity}
}

// Validate checks the configuration.
func (c WallConfig) Validate() error {
	if c.Proximity <= 0 {
		return invalid("wall proximity must be positive, got %v", c.Proximity)
	}
	return c.Timing.validate()
}

// AvoidConfig configures AvoidObstacle.
type AvoidConfig struct {
	Timing    `yaml:",inline"`
	Velocity  float64 `yaml:"velocity"`
	Proximity float64 `yaml:"proximity"`
	// React is the side reading below which the wall followers steer.
	React float64 `yaml:"react"`
}

// DefaultAvoidConfig returns stock obstacle avoidance.
func DefaultAvoidConfig() AvoidConfig {
	return AvoidConfig{
		Velocity:  DefaultVelocity,
		Proximity: DefaultProximity,
		React:     DefaultAvoidReact,
	}
}

// Validate checks the configuration.
func (c AvoidConfig) Validate() error {
	if c.Proximity <= 0 {
		return invalid("avoid proximity must be positive, got %v", c.Proximity)
	}
	if c.React <= 0 {
		return invalid("avoid react distance must be positive, got %v", c.React)
	}
	return c.Timing.validate()
}

// ApproachConfig configures MoveToObject and MoveToRobot. Target is read by
// MoveToObject only; Search by MoveToRobot only.
type ApproachConfig struct {
	Timing   `yaml:",inline"`
	Stop     float64       `yaml:"stop"`
	Velocity float64       `yaml:"velocity"`
	Target   sensor.Target `yaml:"target"`
	Search   float64       `yaml:"search"`
}

// DefaultObjectConfig returns a stock item approach.
func DefaultObjectConfig() ApproachConfig {
	return ApproachConfig{
		Stop:     DefaultObjectStop,
		Velocity: DefaultObjectVelocity,
		Target:   sensor.TargetItems,
	}
}

// DefaultRobotConfig returns a stock radar chase.
func DefaultRobotConfig() ApproachConfig {
	return ApproachConfig{
		Stop:     DefaultRobotStop,
		Velocity: DefaultRobotVelocity,
		Search:   DefaultRobotSearch,
	}
}

// Validate checks the configuration.
func (c ApproachConfig) Validate() error {
	if c.Stop < 0 {
		return invalid("negative stop distance %v", c.Stop)
	}
	if c.Target != "" && !c.Target.Valid() {
		return invalid("unknown target %q", c.Target)
	}
	return c.Timing.validate()
}

// BounceConfig configures Bounce.
type BounceConfig struct {
	React    float64 `yaml:"react"`
	Motor    float64 `yaml:"motor"`
	Steering float64 `yaml:"steering"`
}

// DefaultBounceConfig returns stock bouncing.
func DefaultBounceConfig() BounceConfig {
	return BounceConfig{React: DefaultBounceDistance, Motor: DefaultBounceEffort}
}

// Validate checks the configuration.
func (c BounceConfig) Validate() error {
	if c.React <= 0 {
		return invalid("bounce distance must be positive, got %v", c.React)
	}
	return nil
}

// BumpConfig configures BumpReverse. Hold keeps reversing for that long
// after contact ends; zero reverses only while in contact.
type BumpConfig struct {
	Timing  `yaml:",inline"`
	Cruise  float64       `yaml:"cruise"`
	Reverse float64       `yaml:"reverse"`
	Hold    time.Duration `yaml:"hold"`
}

// DefaultBumpConfig returns stock bump-and-reverse.
func DefaultBumpConfig() BumpConfig {
	return BumpConfig{Cruise: DefaultBumpEffort, Reverse: DefaultBumpEffort}
}

// Validate checks the configuration.
func (c BumpConfig) Validate() error {
	if c.Reverse <= 0 {
		return invalid("reverse effort must be positive, got %v", c.Reverse)
	}
	if c.Hold < 0 {
		return invalid("negative reverse hold %v", c.Hold)
	}
	return c.Timing.validate()
}

// DropConfig configures MoveDropReturn.
type DropConfig struct {
	Timing    `yaml:",inline"`
	Turn      float64       `yaml:"turn"`
	Precision float64       `yaml:"precision"`
	Velocity  float64       `yaml:"velocity"`
	Distance  float64       `yaml:"distance"`
	Duration  time.Duration `yaml:"duration"`
}

// DefaultDropConfig turns around, carries the load 300 units and comes back
// round.
func DefaultDropConfig() DropConfig {
	return DropConfig{
		Turn:      math.Pi,
		Precision: 0.5,
		Velocity:  50,
		Distance:  300,
		Duration:  50 * time.Second,
	}
}

// Validate checks the configuration.
func (c DropConfig) Validate() error {
	if c.Precision <= 0 {
		return invalid("drop turn precision must be positive, got %v", c.Precision)
	}
	if c.Distance < 0 || c.Duration < 0 {
		return invalid("negative drop distance or duration")
	}
	return c.Timing.validate()
}
