package behaviour

import (
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// MoveToObject steers towards the nearest camera target and stops short of
// it. Finished is re-evaluated on every update: it is true while nothing is
// in view or the target is within the stop distance. Updates keep running
// after that, so the behaviour is idempotent.
type MoveToObject struct {
	base
	cfg    ApproachConfig
	camera *sensor.Camera
	cruise *cruise
	steer  *steer
}

// NewMoveToObject creates a camera approach. A configured target retargets
// the camera.
func NewMoveToObject(camera *sensor.Camera, vel *sensor.Velocity, compass *sensor.Compass, cfg ApproachConfig) (*MoveToObject, error) {
	if camera == nil || vel == nil || compass == nil {
		return nil, invalid("move-to-object needs camera, velocity and compass sensors")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Target != "" {
		if err := camera.SetTarget(cfg.Target); err != nil {
			return nil, err
		}
	}
	return &MoveToObject{
		base:   base{kind: KindMoveToObject},
		cfg:    cfg,
		camera: camera,
		cruise: newCruise(vel, cfg.Velocity, cfg.step()),
		steer:  newSteer(compass, DefaultPrecision, cfg.step()),
	}, nil
}

// Update implements Behaviour.
func (m *MoveToObject) Update() (actuator.Command, error) {
	det := m.camera.Detection()
	switch {
	case !det.Found:
		m.finished = true
	case det.Distance < m.cfg.Stop:
		m.finished = true
		m.cruise.set(0)
	default:
		m.finished = false
		m.cruise.set(m.cfg.Velocity)
		m.steer.aim(det.Angle)
	}
	return actuator.Drive(m.cruise.motor(), m.steer.steering()), nil
}

// Reset implements Behaviour.
func (m *MoveToObject) Reset() {
	m.finished = false
	m.cruise.reset()
	m.steer.reset()
}

// MoveToRobot chases the nearest robot on radar, circling to search when
// none is in range. It finishes once a robot is within the stop distance.
type MoveToRobot struct {
	base
	cfg    ApproachConfig
	radar  *sensor.Radar
	cruise *cruise
	steer  *steer
}

// NewMoveToRobot creates a radar chase.
func NewMoveToRobot(radar *sensor.Radar, vel *sensor.Velocity, compass *sensor.Compass, cfg ApproachConfig) (*MoveToRobot, error) {
	if radar == nil || vel == nil || compass == nil {
		return nil, invalid("move-to-robot needs radar, velocity and compass sensors")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MoveToRobot{
		base:   base{kind: KindMoveToRobot},
		cfg:    cfg,
		radar:  radar,
		cruise: newCruise(vel, cfg.Velocity, cfg.step()),
		steer:  newSteer(compass, DefaultPrecision, cfg.step()),
	}, nil
}

// Update implements Behaviour.
func (m *MoveToRobot) Update() (actuator.Command, error) {
	if m.finished {
		return actuator.Command{}, ErrFinished
	}
	det := m.radar.Detection()
	switch {
	case !det.Found:
		m.cruise.set(m.cfg.Velocity)
		m.steer.aim(m.cfg.Search)
	case det.Distance < m.cfg.Stop:
		m.finished = true
		m.cruise.set(0)
	default:
		m.cruise.set(m.cfg.Velocity)
		m.steer.aim(det.Angle)
	}
	return actuator.Drive(m.cruise.motor(), m.steer.steering()), nil
}

// Reset implements Behaviour.
func (m *MoveToRobot) Reset() {
	m.finished = false
	m.cruise.reset()
	m.steer.reset()
}

// FindMoveTo approaches camera targets and closes the gripper on arrival,
// running a search behaviour while nothing is in view. A rise in the
// collection count restarts both the approach and the search. It never
// finishes.
//
// The arm is written only on arrival; otherwise it keeps its previous
// value, unless the search behaviour writes it.
type FindMoveTo struct {
	base
	camera     *sensor.Camera
	collection *sensor.Collection
	mover      *MoveToObject
	search     Behaviour
	collected  int
}

// NewFindMoveTo creates a find-and-approach composite. collection may be
// nil, in which case the approach is never restarted.
func NewFindMoveTo(camera *sensor.Camera, vel *sensor.Velocity, compass *sensor.Compass,
	collection *sensor.Collection, search Behaviour, cfg ApproachConfig) (*FindMoveTo, error) {
	if search == nil {
		return nil, invalid("find-move-to needs a search behaviour")
	}
	mover, err := NewMoveToObject(camera, vel, compass, cfg)
	if err != nil {
		return nil, err
	}
	return &FindMoveTo{
		base:       base{kind: KindFindMoveTo},
		camera:     camera,
		collection: collection,
		mover:      mover,
		search:     search,
	}, nil
}

// Update implements Behaviour. A finished search idles the body until the
// next collection restarts it.
func (f *FindMoveTo) Update() (actuator.Command, error) {
	if f.collection != nil {
		n := f.collection.Count()
		if n > f.collected {
			f.mover.Reset()
			f.search.Reset()
		}
		f.collected = n
	}

	if f.camera.HasTarget() {
		cmd, err := f.mover.Update()
		if err != nil {
			return actuator.Command{}, err
		}
		if f.mover.Finished() {
			cmd.SetArm(true)
		}
		return cmd, nil
	}

	if f.search.Finished() {
		return actuator.Drive(0, 0), nil
	}
	return f.search.Update()
}

// Reset implements Behaviour.
func (f *FindMoveTo) Reset() {
	f.collected = 0
	f.mover.Reset()
	f.search.Reset()
}

// Collected returns the collection count seen at the last update.
func (f *FindMoveTo) Collected() int { return f.collected }

type dropPhase int

const (
	dropTurnOut dropPhase = iota
	dropCarry
	dropTurnBack
	dropDone
)

// MoveDropReturn turns round, carries its load a set distance, releases the
// gripper and turns back. It finishes after the return turn.
type MoveDropReturn struct {
	base
	cfg   DropConfig
	turn  *RelativeTurn
	drive *Drive
	phase dropPhase
}

// NewMoveDropReturn creates a carry-and-drop sequence.
func NewMoveDropReturn(compass *sensor.Compass, vel *sensor.Velocity, cfg DropConfig) (*MoveDropReturn, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	turn, err := NewRelativeTurn(compass, TurnConfig{
		Timing:    cfg.Timing,
		Angle:     cfg.Turn,
		Precision: cfg.Precision,
		Velocity:  DefaultTurnVelocity,
	})
	if err != nil {
		return nil, err
	}
	drive, err := NewDrive(vel, DriveConfig{
		Timing:   cfg.Timing,
		Velocity: cfg.Velocity,
		Distance: cfg.Distance,
		Duration: cfg.Duration,
	})
	if err != nil {
		return nil, err
	}
	return &MoveDropReturn{
		base:  base{kind: KindMoveDropReturn},
		cfg:   cfg,
		turn:  turn,
		drive: drive,
	}, nil
}

// Update implements Behaviour.
func (m *MoveDropReturn) Update() (actuator.Command, error) {
	switch m.phase {
	case dropTurnOut:
		cmd, err := m.turn.Update()
		if err != nil {
			return cmd, err
		}
		if m.turn.Finished() {
			m.phase = dropCarry
		}
		return cmd, nil

	case dropCarry:
		cmd, err := m.drive.Update()
		if err != nil {
			return cmd, err
		}
		if m.drive.Finished() {
			cmd.SetArm(false)
			m.turn.SetAngle(m.cfg.Turn)
			m.phase = dropTurnBack
		}
		return cmd, nil

	case dropTurnBack:
		cmd, err := m.turn.Update()
		if err != nil {
			return cmd, err
		}
		if m.turn.Finished() {
			m.phase = dropDone
			m.finished = true
		}
		return cmd, nil
	}
	return actuator.Command{}, ErrFinished
}

// Reset implements Behaviour.
func (m *MoveDropReturn) Reset() {
	m.phase = dropTurnOut
	m.finished = false
	m.turn.Reset()
	m.drive.Reset()
}

// Grip closes the gripper until the collection sensor reports a hold. It
// writes the arm only.
type Grip struct {
	base
	collection *sensor.Collection
}

// NewGrip creates a grip.
func NewGrip(collection *sensor.Collection) (*Grip, error) {
	if collection == nil {
		return nil, invalid("grip needs a collection sensor")
	}
	return &Grip{base: base{kind: KindGrip}, collection: collection}, nil
}

// Update implements Behaviour.
func (g *Grip) Update() (actuator.Command, error) {
	if g.finished {
		return actuator.Command{}, ErrFinished
	}
	var cmd actuator.Command
	cmd.SetArm(true)
	if g.collection.Holding() {
		g.finished = true
	}
	return cmd, nil
}

// Reset implements Behaviour.
func (g *Grip) Reset() { g.finished = false }
