// Package sim drives controllers against a world. Each step ticks every
// controller, then applies the resulting commands to the bodies in a fixed
// order, then publishes a telemetry frame.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/telemetry"
	"github.com/teslashibe/go-brains/pkg/world"
)

// DefaultTick is the simulated time per step.
const DefaultTick = 20 * time.Millisecond

// ErrDuplicateRobot is returned when a robot name is added twice.
var ErrDuplicateRobot = errors.New("duplicate robot")

// Option configures a Runner.
type Option func(*Runner)

// WithTick sets the simulated step length.
func WithTick(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithParallel ticks controllers concurrently. Commands are still applied
// in insertion order, so results match a sequential run.
func WithParallel(on bool) Option {
	return func(r *Runner) { r.parallel = on }
}

// WithPace sleeps so that steps run no faster than one per d of wall time.
// Zero runs as fast as possible.
func WithPace(d time.Duration) Option {
	return func(r *Runner) { r.pace = d }
}

// WithSinks adds telemetry sinks.
func WithSinks(sinks ...telemetry.Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = log.Or(l) }
}

type slot struct {
	brain robot.Brain
	body  *world.Body
}

// Runner owns a world and the controllers driving its bodies.
type Runner struct {
	world    *world.World
	robots   []slot
	tick     time.Duration
	parallel bool
	pace     time.Duration
	sinks    []telemetry.Sink
	log      *slog.Logger

	mu    sync.RWMutex
	steps uint64
	last  telemetry.Frame
}

// New creates a runner over w.
func New(w *world.World, opts ...Option) *Runner {
	r := &Runner{
		world: w,
		tick:  DefaultTick,
		log:   log.L(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "sim")
	return r
}

// Add binds brain to body and schedules it after the robots already added.
func (r *Runner) Add(brain robot.Brain, body *world.Body) error {
	for _, s := range r.robots {
		if s.body.Name() == body.Name() {
			return fmt.Errorf("%w: %q", ErrDuplicateRobot, body.Name())
		}
	}
	brain.Bind(body)
	r.robots = append(r.robots, slot{brain: brain, body: body})
	return nil
}

// AddSink adds a telemetry sink. It must not be called while the runner is
// stepping.
func (r *Runner) AddSink(s telemetry.Sink) {
	r.sinks = append(r.sinks, s)
}

// World returns the simulated world.
func (r *Runner) World() *world.World { return r.world }

// Tick returns the simulated step length.
func (r *Runner) Tick() time.Duration { return r.tick }

// Step advances the simulation by one tick. A controller that halts is
// reported in the frame and its body is stopped; the other robots carry
// on. A controller that is not wired fails the step.
func (r *Runner) Step(ctx context.Context) (telemetry.Frame, error) {
	cmds := make([]actuator.Command, len(r.robots))
	errs := make([]error, len(r.robots))

	if r.parallel && len(r.robots) > 1 {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, s := range r.robots {
			g.Go(func() error {
				cmds[i], errs[i] = s.brain.Tick()
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, s := range r.robots {
			cmds[i], errs[i] = s.brain.Tick()
		}
	}

	for i, err := range errs {
		switch {
		case err == nil:
		case errors.Is(err, robot.ErrNotWired):
			return telemetry.Frame{}, err
		case errors.Is(err, robot.ErrHalted):
			cmds[i] = actuator.New()
		default:
			r.log.Warn("robot halted", "robot", r.robots[i].body.Name(), "error", err)
			cmds[i] = actuator.New()
		}
	}
	for i, s := range r.robots {
		s.body.Apply(cmds[i], r.tick)
	}

	frame := r.record(cmds)
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, frame); err != nil {
			return frame, fmt.Errorf("publish tick %d: %w", frame.Tick, err)
		}
	}
	return frame, nil
}

func (r *Runner) record(cmds []actuator.Command) telemetry.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps++
	f := telemetry.Frame{
		Tick:   r.steps,
		Time:   time.Duration(r.steps) * r.tick,
		Items:  len(r.world.Items()),
		Robots: make([]telemetry.Robot, len(r.robots)),
	}
	for i, s := range r.robots {
		snap := s.brain.Snapshot()
		f.Robots[i] = telemetry.Robot{
			ID:      snap.ID,
			Name:    snap.Name,
			State:   snap.State,
			Command: cmds[i],
			Halted:  snap.Halted,
			Body:    s.body.State(),
		}
	}
	r.last = f
	return f
}

// Run steps the simulation ticks times, or until ctx is cancelled when ticks
// is zero. Cancellation is checked between steps.
func (r *Runner) Run(ctx context.Context, ticks int) error {
	var pace <-chan time.Time
	if r.pace > 0 {
		t := time.NewTicker(r.pace)
		defer t.Stop()
		pace = t.C
	}

	r.log.Info("simulation started", "robots", len(r.robots), "ticks", ticks, "parallel", r.parallel)
	for n := 0; ticks == 0 || n < ticks; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.Step(ctx); err != nil {
			return err
		}
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		}
	}
	r.log.Info("simulation finished", "steps", r.Steps())
	return nil
}

// Steps returns the number of completed steps.
func (r *Runner) Steps() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps
}

// Last returns the most recent frame.
func (r *Runner) Last() telemetry.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Snapshots returns a snapshot of every controller in insertion order.
func (r *Runner) Snapshots() []robot.Snapshot {
	out := make([]robot.Snapshot, len(r.robots))
	for i, s := range r.robots {
		out[i] = s.brain.Snapshot()
	}
	return out
}

// Snapshot returns the controller with the given ID or name.
func (r *Runner) Snapshot(key string) (robot.Snapshot, bool) {
	for _, s := range r.robots {
		snap := s.brain.Snapshot()
		if snap.ID == key || snap.Name == key {
			return snap, true
		}
	}
	return robot.Snapshot{}, false
}
