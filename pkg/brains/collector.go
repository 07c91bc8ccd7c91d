package brains

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/arbiter"
	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Collector parameters.
const (
	CollectTarget   = 4
	collectTurnTo   = -math.Pi / 2
	shoveDistance   = 255.0
	reverseDistance = 150.0
	reverseVelocity = -50.0
	grabCeiling     = 250
)

// Collector state names.
const (
	StateCollecting = "collecting"
	StateTurning    = "turning"
	StateGrabbing   = "grabbing"
	StateShoving    = "shoving"
	StateReversing  = "reversing"
	StateMeandering = "meandering"
)

// NewCollector gathers four items while following walls, turns to face
// south, grips its load, shoves it forward, backs off and then meanders
// along the walls.
func NewCollector(opts Options) (*robot.Controller, error) {
	b := newBody(opts)
	b.sensors(motionSensors()...)
	b.sensors(
		camera(sensor.TargetItems, 0),
		rangefinder(Left, sideAngle, orb.Point{0, 5}),
		rangefinder(Right, -math.Pi/10, orb.Point{0, -5}),
		radar(100),
		collection(),
	)
	bucket := lookup[*sensor.Collection](b, Collection)

	wall := &behaviour.WallConfig{Velocity: 100, Proximity: 80, Anticlockwise: opts.Anticlockwise}
	b.add(behaviour.Spec{
		Name:   "wander",
		Kind:   behaviour.KindFollowWall,
		Inputs: inputs(behaviour.RoleDistance, Left),
		Wall:   wall,
	})
	seek := b.add(behaviour.Spec{
		Name:   "seek",
		Kind:   behaviour.KindFindMoveTo,
		Inputs: inputs(behaviour.RoleCamera, Camera, behaviour.RoleCollection, Collection),
		Search: "wander",
	})
	turn := b.add(behaviour.Spec{
		Name:   "turn",
		Kind:   behaviour.KindAbsoluteTurn,
		Inputs: inputs(),
		Turn: &behaviour.TurnConfig{
			Angle:     collectTurnTo,
			Precision: behaviour.DefaultPrecision,
			Velocity:  behaviour.DefaultTurnVelocity,
		},
	})
	shove := build[*behaviour.Drive](b, behaviour.Spec{
		Name:   "shove",
		Kind:   behaviour.KindDrive,
		Inputs: inputs(),
		Drive:  &behaviour.DriveConfig{Velocity: behaviour.DefaultVelocity, Distance: shoveDistance},
	})
	meander := b.add(behaviour.Spec{
		Name:   "meander",
		Kind:   behaviour.KindFollowWall,
		Inputs: inputs(behaviour.RoleDistance, Left),
		Wall:   wall,
	})
	if b.err != nil {
		return nil, b.err
	}

	states := []arbiter.State{
		{
			Name: StateCollecting,
			Run: func(f *arbiter.Frame) error {
				if err := f.Run(seek); err != nil {
					return err
				}
				// A missed grab lets go; a load in the gripper stays held.
				if !f.Cmd().Covers(actuator.FieldArm) {
					f.Cmd().SetArm(bucket.Holding())
				}
				return nil
			},
			Next: arbiter.First(arbiter.Edge{When: arbiter.Counter(CollectTarget, bucket.Count), To: StateTurning}),
		},
		{
			Name:  StateTurning,
			Run:   runUntilDone(turn),
			Next:  arbiter.First(arbiter.Edge{When: arbiter.Finished(turn), To: StateGrabbing}),
			Enter: resetting(turn),
			Keeps: actuator.FieldArm,
		},
		{
			Name: StateGrabbing,
			Run: func(f *arbiter.Frame) error {
				f.Cmd().Stop()
				f.Cmd().SetArm(true)
				return nil
			},
			Next:    arbiter.First(arbiter.Edge{When: bucket.Holding, To: StateShoving}),
			Ceiling: grabCeiling,
			Escape:  StateShoving,
		},
		{
			Name: StateShoving,
			Run: func(f *arbiter.Frame) error {
				f.Cmd().SetArm(true)
				return f.RunFields(shove, actuator.FieldDrive)
			},
			Next: arbiter.First(arbiter.Edge{When: arbiter.Finished(shove), To: StateReversing}),
			Enter: func() error {
				shove.Reset()
				shove.SetVelocity(behaviour.DefaultVelocity)
				return shove.SetDistance(shoveDistance)
			},
		},
		{
			Name: StateReversing,
			Run: func(f *arbiter.Frame) error {
				f.Cmd().SetArm(false)
				if shove.Finished() {
					return stop(f)
				}
				return f.RunFields(shove, actuator.FieldDrive)
			},
			Next: arbiter.First(arbiter.Edge{When: arbiter.Finished(shove), To: StateMeandering}),
			Enter: func() error {
				shove.SetVelocity(reverseVelocity)
				return shove.SetDistance(reverseDistance)
			},
		},
		{
			Name:  StateMeandering,
			Run:   arbiter.RunBehaviour(meander),
			Keeps: actuator.FieldArm,
		},
	}
	return b.done(arbiter.NewMachine(opts.Name, StateCollecting, states,
		arbiter.WithLogger(opts.Logger)))
}

// resetting is an entry action that re-arms bs.
func resetting(bs ...behaviour.Behaviour) func() error {
	return func() error {
		for _, b := range bs {
			b.Reset()
		}
		return nil
	}
}
