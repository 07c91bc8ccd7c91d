package sim

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/internal/config"
	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/sensor"
	"github.com/teslashibe/go-brains/pkg/telemetry"
	"github.com/teslashibe/go-brains/pkg/world"
)

// scripted is a brain that replays a fixed command.
type scripted struct {
	name  string
	cmd   actuator.Command
	err   error
	ticks int
	probe sensor.Probe
}

func (s *scripted) Tick() (actuator.Command, error) {
	s.ticks++
	if s.err != nil {
		return actuator.Command{}, s.err
	}
	return s.cmd, nil
}

func (s *scripted) Bind(p sensor.Probe) { s.probe = p }
func (s *scripted) Reset()              { s.ticks = 0 }

func (s *scripted) Snapshot() robot.Snapshot {
	snap := robot.Snapshot{ID: s.name + "-id", Name: s.name, Tick: uint64(s.ticks), Command: s.cmd}
	if s.err != nil {
		snap.Halted = s.err.Error()
	}
	return snap
}

func runner(t *testing.T, brains map[string]*scripted, opts ...Option) *Runner {
	t.Helper()
	w := world.New(world.DefaultConfig())
	r := New(w, append([]Option{WithLogger(log.Discard())}, opts...)...)
	y := 100.0
	for _, name := range []string{"a", "b", "c"} {
		b, ok := brains[name]
		if !ok {
			continue
		}
		body, err := w.AddBody(name, orb.Point{100, y}, 0)
		require.NoError(t, err)
		require.NoError(t, r.Add(b, body))
		y += 100
	}
	return r
}

func TestStep_AppliesCommands(t *testing.T) {
	a := &scripted{name: "a", cmd: actuator.Drive(100, 0)}
	r := runner(t, map[string]*scripted{"a": a})

	frame, err := r.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), frame.Tick)
	assert.Equal(t, DefaultTick, frame.Time)
	require.Len(t, frame.Robots, 1)

	rb := frame.Robots[0]
	assert.Equal(t, "a-id", rb.ID)
	assert.Equal(t, 100.0, rb.Command.Motor())
	assert.InDelta(t, 100.0/6, rb.Body.Velocity, 1e-9)
	assert.Greater(t, rb.Body.Position[0], 100.0)

	body, ok := r.World().Body("a")
	require.True(t, ok)
	assert.Same(t, body, a.probe)
}

func TestStep_HaltedRobotStops(t *testing.T) {
	a := &scripted{name: "a", cmd: actuator.Drive(100, 0)}
	b := &scripted{name: "b", cmd: actuator.Drive(100, 0)}
	r := runner(t, map[string]*scripted{"a": a, "b": b})
	ctx := context.Background()

	for range 5 {
		_, err := r.Step(ctx)
		require.NoError(t, err)
	}
	b.err = errors.New("jammed")
	var frame telemetry.Frame
	for range 50 {
		var err error
		frame, err = r.Step(ctx)
		require.NoError(t, err)
	}

	ra, _ := frame.Robot("a")
	rb, _ := frame.Robot("b")
	assert.Empty(t, ra.Halted)
	assert.Equal(t, "jammed", rb.Halted)
	assert.Zero(t, rb.Command.Motor())
	assert.Less(t, rb.Body.Velocity, 1.0)
	assert.Greater(t, ra.Body.Velocity, 90.0)
}

func TestStep_NotWired(t *testing.T) {
	w := world.New(world.DefaultConfig())
	r := New(w, WithLogger(log.Discard()))
	body, err := w.AddBody("bare", orb.Point{100, 100}, 0)
	require.NoError(t, err)
	require.NoError(t, r.Add(robot.New("bare", robot.WithLogger(log.Discard())), body))

	_, err = r.Step(context.Background())
	assert.True(t, errors.Is(err, robot.ErrNotWired))
	assert.Zero(t, r.Steps())
}

func TestAdd_Duplicate(t *testing.T) {
	a := &scripted{name: "a"}
	r := runner(t, map[string]*scripted{"a": a})
	body, _ := r.World().Body("a")
	assert.True(t, errors.Is(r.Add(&scripted{name: "a"}, body), ErrDuplicateRobot))
}

func TestRun_PublishesFrames(t *testing.T) {
	var ticks []uint64
	sink := telemetry.SinkFunc(func(_ context.Context, f telemetry.Frame) error {
		ticks = append(ticks, f.Tick)
		return nil
	})
	r := runner(t, map[string]*scripted{"a": {name: "a"}}, WithSinks(sink))

	require.NoError(t, r.Run(context.Background(), 5))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ticks)
	assert.Equal(t, uint64(5), r.Steps())
	assert.Equal(t, uint64(5), r.Last().Tick)
}

func TestRun_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := telemetry.SinkFunc(func(_ context.Context, f telemetry.Frame) error {
		if f.Tick == 3 {
			cancel()
		}
		return nil
	})
	r := runner(t, map[string]*scripted{"a": {name: "a"}}, WithSinks(sink))

	err := r.Run(ctx, 0)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(3), r.Steps())
}

func TestRun_SinkError(t *testing.T) {
	boom := errors.New("disk full")
	sink := telemetry.SinkFunc(func(context.Context, telemetry.Frame) error { return boom })
	r := runner(t, map[string]*scripted{"a": {name: "a"}}, WithSinks(sink))
	assert.True(t, errors.Is(r.Run(context.Background(), 3), boom))
}

func TestSnapshots(t *testing.T) {
	r := runner(t, map[string]*scripted{"a": {name: "a"}, "b": {name: "b"}})
	require.NoError(t, r.Run(context.Background(), 2))

	snaps := r.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "a", snaps[0].Name)

	snap, ok := r.Snapshot("b-id")
	require.True(t, ok)
	assert.Equal(t, "b", snap.Name)
	_, ok = r.Snapshot("b")
	assert.True(t, ok)
	_, ok = r.Snapshot("z")
	assert.False(t, ok)
}

func loadExample(t *testing.T, parallel bool, opts ...Option) *Runner {
	t.Helper()
	cfg, err := config.Load("../../configs/sim.yaml")
	require.NoError(t, err)
	cfg.Parallel = parallel
	r, err := FromConfig(cfg, "../../configs", append([]Option{WithLogger(log.Discard())}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestFromConfig_Example(t *testing.T) {
	r := loadExample(t, true)
	require.NoError(t, r.Run(context.Background(), 100))

	frame := r.Last()
	require.Len(t, frame.Robots, 3)
	for _, rb := range frame.Robots {
		assert.Empty(t, rb.Halted, rb.Name)
		assert.Greater(t, rb.Body.Odometer, 0.0, rb.Name)
	}
	_, ok := r.Snapshot("rover")
	assert.True(t, ok)
}

func TestParallelMatchesSequential(t *testing.T) {
	bodies := func(r *Runner) [][]world.State {
		var out [][]world.State
		for range 200 {
			frame, err := r.Step(context.Background())
			require.NoError(t, err)
			var states []world.State
			for _, rb := range frame.Robots {
				states = append(states, rb.Body)
			}
			out = append(out, states)
		}
		return out
	}
	assert.Equal(t, bodies(loadExample(t, false)), bodies(loadExample(t, true)))
}

func TestRecorderSink(t *testing.T) {
	ctx := context.Background()
	rec, err := telemetry.OpenRecorder(ctx, filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer rec.Close()

	r := loadExample(t, false, WithSinks(rec))
	require.NoError(t, r.Run(ctx, 10))

	n, err := rec.Frames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	track, err := rec.Track(ctx, "gatherer")
	require.NoError(t, err)
	assert.Len(t, track, 10)
}
