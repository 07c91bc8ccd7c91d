package brains

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/teslashibe/go-brains/pkg/arbiter"
	"github.com/teslashibe/go-brains/pkg/behaviour"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
)

// Sensor names shared by the built-in brains.
const (
	Velocity   = "velocity"
	Compass    = "compass"
	Collection = "collection"
	Camera     = "camera"
	Radar      = "radar"
	Front      = "front"
	Rear       = "rear"
	Left       = "left"
	Right      = "right"
	BumpFront  = "bump-front"
	BumpLeft   = "bump-left"
	BumpRight  = "bump-right"
)

// Side rangefinder angles.
const (
	sideAngle = math.Pi / 5
)

// body assembles a controller through the sensor and behaviour factories.
// The first error sticks and every later call is a no-op.
type body struct {
	c    *robot.Controller
	step time.Duration
	err  error
}

func newBody(opts Options) *body {
	step := opts.Step
	if step == 0 {
		step = behaviour.DefaultStep
	}
	return &body{
		c:    robot.New(opts.Name, robot.WithLogger(opts.Logger)),
		step: step,
	}
}

func (b *body) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// sensors builds and registers specs in order.
func (b *body) sensors(specs ...sensor.Spec) {
	for _, spec := range specs {
		if b.err != nil {
			return
		}
		s, err := sensor.Build(spec)
		if err != nil {
			b.fail(err)
			return
		}
		b.fail(b.c.AddSensors(s))
	}
}

// add builds and registers a behaviour. It returns nil after an error.
func (b *body) add(spec behaviour.Spec) behaviour.Behaviour {
	if b.err != nil {
		return nil
	}
	env := b.c.Env()
	env.Step = b.step
	bh, err := behaviour.Build(spec, env)
	if err != nil {
		b.fail(err)
		return nil
	}
	if err := b.c.AddBehaviour(spec.Name, bh); err != nil {
		b.fail(err)
		return nil
	}
	return bh
}

// done installs the strategy and returns the controller.
func (b *body) done(s arbiter.Strategy, err error) (*robot.Controller, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err != nil {
		return nil, err
	}
	b.c.SetStrategy(s)
	return b.c, nil
}

// build adds a behaviour and asserts its concrete type.
func build[T behaviour.Behaviour](b *body, spec behaviour.Spec) T {
	var zero T
	bh := b.add(spec)
	if bh == nil {
		return zero
	}
	typed, ok := bh.(T)
	if !ok {
		b.fail(fmt.Errorf("behaviour %q is %T", spec.Name, bh))
		return zero
	}
	return typed
}

// lookup returns a registered sensor of the expected variant.
func lookup[T sensor.Sensor](b *body, name string) T {
	var zero T
	if b.err != nil {
		return zero
	}
	s, ok := b.c.Sensor(name)
	if !ok {
		b.fail(fmt.Errorf("no sensor %q", name))
		return zero
	}
	typed, ok := s.(T)
	if !ok {
		b.fail(fmt.Errorf("sensor %q is %s", name, s.Kind()))
		return zero
	}
	return typed
}

// inputs maps the motion roles to the shared sensors and adds role/name
// pairs.
func inputs(pairs ...string) map[string]string {
	m := map[string]string{
		behaviour.RoleVelocity: Velocity,
		behaviour.RoleCompass:  Compass,
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		m[pairs[i]] = pairs[i+1]
	}
	return m
}

func motionSensors() []sensor.Spec {
	return []sensor.Spec{
		{Name: Velocity, Kind: sensor.KindVelocity},
		{Name: Compass, Kind: sensor.KindCompass},
	}
}

func rangefinder(name string, angle float64, offset orb.Point) sensor.Spec {
	cfg := sensor.DefaultDistanceConfig()
	cfg.Mount = sensor.Mount{Offset: offset, Angle: angle}
	return sensor.Spec{Name: name, Kind: sensor.KindDistance, Distance: &cfg}
}

func camera(target sensor.Target, depth float64) sensor.Spec {
	cfg := sensor.DefaultCameraConfig()
	cfg.Target = target
	if depth > 0 {
		cfg.MaxDistance = depth
	}
	return sensor.Spec{Name: Camera, Kind: sensor.KindCamera, Camera: &cfg}
}

func radar(rng float64) sensor.Spec {
	cfg := sensor.DefaultRadarConfig()
	if rng > 0 {
		cfg.Range = rng
	}
	return sensor.Spec{Name: Radar, Kind: sensor.KindRadar, Radar: &cfg}
}

func bumper(name string, offset orb.Point, shape sensor.Shape) sensor.Spec {
	return sensor.Spec{
		Name:   name,
		Kind:   sensor.KindBumper,
		Bumper: &sensor.BumperConfig{Mount: sensor.Mount{Offset: offset}, Shape: shape},
	}
}

func collection() sensor.Spec {
	return sensor.Spec{Name: Collection, Kind: sensor.KindCollection}
}

// stop is a state body that halts the drive.
func stop(f *arbiter.Frame) error {
	f.Cmd().Stop()
	return nil
}

// runUntilDone runs b, or halts once it has finished.
func runUntilDone(b behaviour.Behaviour) func(*arbiter.Frame) error {
	return func(f *arbiter.Frame) error {
		if b.Finished() {
			return stop(f)
		}
		return f.Run(b)
	}
}
