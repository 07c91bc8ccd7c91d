// Package brains holds the built-in robot programs. Each brain is a
// constructor that wires sensors and behaviours into a robot.Controller
// with one arbitration strategy; Default maps their names to them.
package brains

import (
	"math"
	"time"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/paulmach/orb"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/arbiter"
	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

func init() {
	Register("collector", "collect four items, then turn, grab, shove and meander", NewCollector)
	Register("chaser", "chase the nearest robot on radar, follow walls otherwise", NewChaser)
	Register("bumper", "cruise slowly; reverse or turn away when a bumper touches", NewBumper)
	Register("deadend", "scripted escape from a dead end, then shuttle back and forth", NewDeadEnd)
	Register("wall-follower", "follow the wall on the left", NewWallFollower)
	Register("avoider", "wander while steering away from obstacles", NewAvoider)
	Register("racer", "race ahead once another robot is in range, then chase it", NewRacer)
	Register("unstick", "drive forward and reverse out when stalled", NewUnstick)
	Register("shuttle", "run forward and backward between obstacles", NewShuttle)
	Register("bouncer", "bounce between obstacles ahead and behind", NewBouncer)
	Register("cup-hunter", "collect items, following walls between sightings", NewCupHunter)
	Register("block-mover", "pick up blocks and drop them elsewhere", NewBlockMover)
	Register("patrol", "drive a square patrol, backing off when bumped", NewPatrol)
}

// NewChaser chases robots on radar and falls back to wall following while
// none is in range or the nearest one is already caught.
func NewChaser(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(radar(0), rangefinder(Left, sideAngle, orb.Point{0, 5}))
	rdr := lookup[*sensor.Radar](b, Radar)

	chase := b.add(behaviour.Spec{
		Name:   "chase",
		Kind:   behaviour.KindMoveToRobot,
		Inputs: inputs(behaviour.RoleRadar, Radar),
	})
	wall := b.add(behaviour.Spec{
		Name:   "wall",
		Kind:   behaviour.KindFollowWall,
		Inputs: inputs(behaviour.RoleDistance, Left),
		Wall:   &behaviour.WallConfig{Velocity: behaviour.DefaultVelocity, Proximity: 150, Anticlockwise: true},
	})
	if b.err != nil {
		return nil, b.err
	}
	// The chase runs while a robot is on radar but not yet caught, so it never
	// finishes and picks up again as soon as the target gets away.
	chasing := func() bool {
		det := rdr.Detection()
		return det.Found && det.Distance >= behaviour.DefaultRobotStop
	}
	return b.done(arbiter.NewFallback(chase, wall, chasing))
}

// NewBumper cruises and lets its bumpers override the drive: the front one
// reverses, the rear ones turn the robot away from the contact.
func NewBumper(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(
		rangefinder(Front, 0, orb.Point{}),
		bumper(BumpFront, orb.Point{40, 0}, sensor.Shape{Width: 10, Height: 40}),
		bumper(BumpLeft, orb.Point{-30, 20}, sensor.Shape{Radius: 10}),
		bumper(BumpRight, orb.Point{-30, -20}, sensor.Shape{Width: 12, Height: 5, Angle: math.Pi / 2}),
	)
	front := lookup[*sensor.Bumper](b, BumpFront)
	left := lookup[*sensor.Bumper](b, BumpLeft)
	right := lookup[*sensor.Bumper](b, BumpRight)

	cruise := b.add(behaviour.Spec{
		Name:   "cruise",
		Kind:   behaviour.KindDrive,
		Inputs: inputs(),
		Drive:  &behaviour.DriveConfig{Velocity: behaviour.DefaultBumpEffort},
	})
	turnRight := b.add(behaviour.Spec{
		Name:   "turn-right",
		Kind:   behaviour.KindRelativeTurn,
		Inputs: inputs(),
		Turn:   &behaviour.TurnConfig{Angle: -math.Pi / 2, Precision: behaviour.DefaultPrecision, Velocity: behaviour.DefaultTurnVelocity},
	})
	turnLeft := b.add(behaviour.Spec{
		Name:   "turn-left",
		Kind:   behaviour.KindRelativeTurn,
		Inputs: inputs(),
		Turn:   &behaviour.TurnConfig{Angle: math.Pi / 2, Precision: behaviour.DefaultPrecision, Velocity: behaviour.DefaultTurnVelocity},
	})
	if b.err != nil {
		return nil, b.err
	}
	return b.done(arbiter.NewOverride(cruise,
		arbiter.Rule{
			Name:    "reverse",
			When:    front.Contact,
			Command: actuator.Drive(-behaviour.DefaultBumpEffort, 0),
			Fields:  actuator.FieldMotor,
		},
		arbiter.Rule{Name: "turn-right", When: left.Contact, Use: turnRight, Fields: actuator.FieldDrive},
		arbiter.Rule{Name: "turn-left", When: right.Contact, Use: turnLeft, Fields: actuator.FieldDrive},
	))
}

// NewDeadEnd runs a fixed escape script, then drives back and forth for a
// second each way forever.
func NewDeadEnd(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)

	drive := func(name string, v, dist float64, dur time.Duration) behaviour.Behaviour {
		return b.add(behaviour.Spec{
			Name:   name,
			Kind:   behaviour.KindDrive,
			Inputs: inputs(),
			Drive:  &behaviour.DriveConfig{Velocity: v, Distance: dist, Duration: dur},
		})
	}
	spin := func(name string, angle float64) behaviour.Behaviour {
		return b.add(behaviour.Spec{
			Name:   name,
			Kind:   behaviour.KindRelativeTurn,
			Inputs: inputs(),
			Turn:   &behaviour.TurnConfig{Angle: angle, Precision: behaviour.DefaultPrecision, Velocity: behaviour.DefaultTurnVelocity},
		})
	}

	steps := []behaviour.Behaviour{
		drive("approach", 100, 600, 0),
		spin("spin-1", math.Pi/2),
		spin("spin-2", 3.2*math.Pi/4),
		drive("edge", 100, 30, 0),
		spin("spin-3", -math.Pi/4),
		drive("run", 100, 0, 4*time.Second),
		drive("crash", -100, 200, 0),
		drive("crash-2", 100, 200, 0),
	}
	repeat := []behaviour.Behaviour{
		drive("forward", 100, 0, time.Second),
		drive("reverse", -100, 0, time.Second),
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.done(arbiter.NewQueue(steps, repeat))
}

// NewWallFollower follows the wall on its left.
func NewWallFollower(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(rangefinder(Left, sideAngle, orb.Point{0, 20}))
	wall := b.add(behaviour.Spec{
		Name:   "wall",
		Kind:   behaviour.KindFollowWall,
		Inputs: inputs(behaviour.RoleDistance, Left),
		Wall:   &behaviour.WallConfig{Velocity: behaviour.DefaultVelocity, Proximity: 100, Anticlockwise: opts.Anticlockwise},
	})
	if b.err != nil {
		return nil, b.err
	}
	return b.done(arbiter.NewPassThrough(wall))
}

// NewAvoider wanders, keeping both side rangefinders clear.
func NewAvoider(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(
		rangefinder(Left, sideAngle, orb.Point{0, 5}),
		rangefinder(Right, -sideAngle, orb.Point{0, -5}),
	)
	avoid := b.add(behaviour.Spec{
		Name:   "avoid",
		Kind:   behaviour.KindAvoidObstacle,
		Inputs: inputs(behaviour.RoleLeft, Left, behaviour.RoleRight, Right),
		Avoid: &behaviour.AvoidConfig{
			Velocity:  behaviour.DefaultVelocity,
			Proximity: 200,
			React:     behaviour.DefaultAvoidReact,
		},
	})
	if b.err != nil {
		return nil, b.err
	}
	return b.done(arbiter.NewPassThrough(avoid))
}

// Racer state names.
const (
	StateWaiting = "waiting"
	StateRacing  = "racing"
	StateChasing = "chasing"
)

// NewRacer waits for another robot on radar, races a fixed distance once
// one appears and then chases it. It stands still whenever no robot is in
// range.
func NewRacer(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(radar(200))
	rdr := lookup[*sensor.Radar](b, Radar)

	race := b.add(behaviour.Spec{
		Name:   "race",
		Kind:   behaviour.KindDrive,
		Inputs: inputs(),
		Drive:  &behaviour.DriveConfig{Velocity: 100, Distance: 400},
	})
	chase := b.add(behaviour.Spec{
		Name:   "chase",
		Kind:   behaviour.KindMoveToRobot,
		Inputs: inputs(behaviour.RoleRadar, Radar),
	})
	if b.err != nil {
		return nil, b.err
	}

	lost := arbiter.Not(rdr.HasRobot)
	states := []arbiter.State{
		{
			Name: StateWaiting,
			Run:  stop,
			Next: arbiter.First(
				arbiter.Edge{When: arbiter.All(rdr.HasRobot, arbiter.Not(arbiter.Finished(race))), To: StateRacing},
				arbiter.Edge{When: rdr.HasRobot, To: StateChasing},
			),
		},
		{
			Name: StateRacing,
			Run:  runUntilDone(race),
			Next: arbiter.First(
				arbiter.Edge{When: lost, To: StateWaiting},
				arbiter.Edge{When: arbiter.Finished(race), To: StateChasing},
			),
		},
		{
			Name: StateChasing,
			Run:  runUntilDone(chase),
			Next: arbiter.First(arbiter.Edge{When: lost, To: StateWaiting}),
		},
	}
	return b.done(arbiter.NewMachine(opts.Name, StateWaiting, states,
		arbiter.WithRequired(actuator.FieldDrive), arbiter.WithLogger(opts.Logger)))
}

// Unstick state names.
const (
	StateDriving = "driving"
	StateBacking = "backing"
)

// Unstick parameters.
const (
	// stallSpeed is the speed at or below which a driving robot is stuck.
	stallSpeed     = 0.01
	unstickSpeed   = 110.0
	unstickReverse = -200.0
	unstickBackOff = 100.0
	unstickTurn    = math.Pi / 2
)

// NewUnstick drives forward and, when it stalls against something, reverses
// out hard, turns away and drives on.
func NewUnstick(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	vel := lookup[*sensor.Velocity](b, Velocity)

	drive := build[*behaviour.Drive](b, behaviour.Spec{
		Name:   "drive",
		Kind:   behaviour.KindDrive,
		Inputs: inputs(),
		Drive:  &behaviour.DriveConfig{Velocity: unstickSpeed},
	})
	turn := b.add(behaviour.Spec{
		Name:   "turn-away",
		Kind:   behaviour.KindRelativeTurn,
		Inputs: inputs(),
		Turn: &behaviour.TurnConfig{
			Angle:     unstickTurn,
			Precision: behaviour.DefaultPrecision,
			Velocity:  behaviour.DefaultTurnVelocity,
		},
	})
	if b.err != nil {
		return nil, b.err
	}

	stalled := false
	states := []arbiter.State{
		{
			Name: StateDriving,
			Run: func(f *arbiter.Frame) error {
				stalled = f.Prev().Motor() > 0 && vel.Value() <= stallSpeed
				return runUntilDone(drive)(f)
			},
			Next: arbiter.First(arbiter.Edge{When: func() bool { return stalled }, To: StateBacking}),
			Enter: func() error {
				drive.Reset()
				drive.SetVelocity(unstickSpeed)
				return drive.SetDistance(0)
			},
		},
		{
			Name: StateBacking,
			Run:  runUntilDone(drive),
			Next: arbiter.First(arbiter.Edge{When: arbiter.Finished(drive), To: StateTurning}),
			Enter: func() error {
				stalled = false
				drive.SetVelocity(unstickReverse)
				return drive.SetDistance(unstickBackOff)
			},
		},
		{
			Name:  StateTurning,
			Run:   runUntilDone(turn),
			Next:  arbiter.First(arbiter.Edge{When: arbiter.Finished(turn), To: StateDriving}),
			Enter: resetting(turn),
		},
	}
	return b.done(arbiter.NewMachine(opts.Name, StateDriving, states,
		arbiter.WithRequired(actuator.FieldDrive), arbiter.WithLogger(opts.Logger)))
}

// Shuttle parameters.
const (
	shuttleSpeed     = 100.0
	shuttleTurn      = 1.0
	shuttleProximity = 40.0
)

// Shuttle state names.
const (
	StateForward = "forward"
	StateReverse = "reverse"
)

// NewShuttle drives forward until something is close ahead, then backs up
// until something is close behind, steering gently each way.
func NewShuttle(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(
		rangefinder(Front, 0, orb.Point{}),
		rangefinder(Rear, math.Pi, orb.Point{}),
	)
	front := lookup[*sensor.Distance](b, Front)
	rear := lookup[*sensor.Distance](b, Rear)
	if b.err != nil {
		return nil, b.err
	}

	near := func(d *sensor.Distance) arbiter.Condition {
		return arbiter.Below(d.Value, shuttleProximity)
	}
	states := []arbiter.State{
		{
			Name: StateForward,
			Run: func(f *arbiter.Frame) error {
				f.Cmd().Overlay(actuator.Drive(shuttleSpeed, shuttleTurn), actuator.FieldDrive)
				return nil
			},
			Next: arbiter.First(arbiter.Edge{When: near(front), To: StateReverse}),
		},
		{
			Name: StateReverse,
			Run: func(f *arbiter.Frame) error {
				f.Cmd().Overlay(actuator.Drive(-shuttleSpeed, -shuttleTurn), actuator.FieldDrive)
				return nil
			},
			Next: arbiter.First(arbiter.Edge{When: near(rear), To: StateForward}),
		},
	}
	return b.done(arbiter.NewMachine(opts.Name, StateForward, states,
		arbiter.WithRequired(actuator.FieldDrive), arbiter.WithLogger(opts.Logger)))
}

// NewBouncer bounces between obstacles ahead and behind.
func NewBouncer(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(
		rangefinder(Front, 0, orb.Point{}),
		rangefinder(Rear, math.Pi, orb.Point{}),
	)
	bounce := b.add(behaviour.Spec{
		Name:   "bounce",
		Kind:   behaviour.KindBounce,
		Inputs: map[string]string{behaviour.RoleFront: Front, behaviour.RoleRear: Rear},
	})
	if b.err != nil {
		return nil, b.err
	}
	return b.done(arbiter.NewPassThrough(bounce))
}

// NewCupHunter collects items, following the wall on its left whenever none
// is in view.
func NewCupHunter(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(
		camera(sensor.TargetUprightItems, 0),
		rangefinder(Left, math.Pi/4, orb.Point{0, 20}),
		collection(),
	)
	b.add(behaviour.Spec{
		Name:   "wall",
		Kind:   behaviour.KindFollowWall,
		Inputs: inputs(behaviour.RoleDistance, Left),
		Wall:   &behaviour.WallConfig{Velocity: behaviour.DefaultVelocity, Proximity: 100, Anticlockwise: true},
	})
	hunt := b.add(behaviour.Spec{
		Name:   "hunt",
		Kind:   behaviour.KindFindMoveTo,
		Inputs: inputs(behaviour.RoleCamera, Camera, behaviour.RoleCollection, Collection),
		Search: "wall",
	})
	if b.err != nil {
		return nil, b.err
	}
	return b.done(arbiter.NewPassThrough(hunt))
}

// NewBlockMover picks up blocks it sees and carries each one away to drop
// it. With nothing in view and nothing held it wanders clear of obstacles on
// its side rangefinders.
func NewBlockMover(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(
		camera(sensor.TargetItems, 0),
		collection(),
		rangefinder(Left, sideAngle, orb.Point{0, 5}),
		rangefinder(Right, -sideAngle, orb.Point{0, -5}),
	)
	cam := lookup[*sensor.Camera](b, Camera)
	bin := lookup[*sensor.Collection](b, Collection)

	b.add(behaviour.Spec{
		Name:   "drop",
		Kind:   behaviour.KindMoveDropReturn,
		Inputs: inputs(),
	})
	move := b.add(behaviour.Spec{
		Name:   "move",
		Kind:   behaviour.KindFindMoveTo,
		Inputs: inputs(behaviour.RoleCamera, Camera, behaviour.RoleCollection, Collection),
		Search: "drop",
	})
	avoid := b.add(behaviour.Spec{
		Name:   "avoid",
		Kind:   behaviour.KindAvoidObstacle,
		Inputs: inputs(behaviour.RoleLeft, Left, behaviour.RoleRight, Right),
		Avoid: &behaviour.AvoidConfig{
			Velocity:  behaviour.DefaultVelocity,
			Proximity: 200,
			React:     behaviour.DefaultAvoidReact,
		},
	})
	if b.err != nil {
		return nil, b.err
	}
	// A held block keeps the drop run going after the camera loses it.
	return b.done(arbiter.NewFallback(move, avoid, arbiter.Any(cam.HasTarget, bin.Holding)))
}

// Patrol parameters.
const (
	patrolLeg = 300.0
)

// NewPatrol drives the sides of a square. A bumper contact preempts the
// patrol and backs the robot off; the tree restarts the square after each
// lap.
func NewPatrol(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(bumper(BumpFront, orb.Point{40, 0}, sensor.Shape{Width: 10, Height: 40}))
	front := lookup[*sensor.Bumper](b, BumpFront)

	backOff := build[*behaviour.BumpReverse](b, behaviour.Spec{
		Name:   "back-off",
		Kind:   behaviour.KindBumpReverse,
		Inputs: map[string]string{behaviour.RoleBumper: BumpFront},
		Bump: &behaviour.BumpConfig{
			Cruise:  0,
			Reverse: 40,
			Hold:    time.Second,
		},
	})
	leg := b.add(behaviour.Spec{
		Name:   "leg",
		Kind:   behaviour.KindDrive,
		Inputs: inputs(),
		Drive:  &behaviour.DriveConfig{Velocity: behaviour.DefaultVelocity, Distance: patrolLeg},
	})
	corner := b.add(behaviour.Spec{
		Name:   "corner",
		Kind:   behaviour.KindRelativeTurn,
		Inputs: inputs(),
		Turn:   &behaviour.TurnConfig{Angle: math.Pi / 2, Precision: behaviour.DefaultPrecision, Velocity: behaviour.DefaultTurnVelocity},
	})
	if b.err != nil {
		return nil, b.err
	}

	bumped := arbiter.Any(front.Contact, backOff.Reversing)
	return b.done(arbiter.NewTree(func(t *arbiter.Tree) bt.Node {
		return arbiter.Selector(
			arbiter.Sequence(t.Guard(bumped), t.Leaf(backOff)),
			arbiter.Sequence(t.Leaf(leg), t.Leaf(corner)),
		)
	}))
}
