package telemetry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/world"
)

func frame(tick uint64, x float64) Frame {
	cmd := actuator.Drive(50, -3)
	cmd.SetArm(true)
	return Frame{
		Tick:  tick,
		Time:  time.Duration(tick) * 20 * time.Millisecond,
		Items: 3,
		Robots: []Robot{
			{
				ID:      "id-a",
				Name:    "alpha",
				State:   "collecting",
				Command: cmd,
				Body:    world.State{Name: "alpha", Position: orb.Point{x, 10}, Heading: 0.5, Velocity: 40, Held: 1},
			},
			{
				ID:      "id-b",
				Name:    "beta",
				Command: actuator.Drive(-10, 0),
				Halted:  "jammed",
				Body:    world.State{Name: "beta", Position: orb.Point{200, 200}},
			},
		},
	}
}

func openRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := OpenRecorder(context.Background(), filepath.Join(t.TempDir(), "ticks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecorder_PublishAndTrack(t *testing.T) {
	ctx := context.Background()
	r := openRecorder(t)

	for tick := uint64(1); tick <= 3; tick++ {
		require.NoError(t, r.Publish(ctx, frame(tick, float64(tick)*10)))
	}

	n, err := r.Frames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	track, err := r.Track(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, track, 3)
	assert.Equal(t, uint64(1), track[0].Tick)
	assert.Equal(t, "collecting", track[0].State)
	assert.InDelta(t, 50, track[0].Motor, 1e-9)
	assert.InDelta(t, -3, track[0].Steering, 1e-9)
	assert.True(t, track[0].Arm)
	assert.InDelta(t, 30, track[2].X, 1e-9)
	assert.Equal(t, 1, track[2].Held)

	beta, err := r.Track(ctx, "beta")
	require.NoError(t, err)
	require.Len(t, beta, 3)
	assert.Equal(t, "jammed", beta[0].Halted)
	assert.False(t, beta[0].Arm)
}

func TestRecorder_RepublishReplacesTick(t *testing.T) {
	ctx := context.Background()
	r := openRecorder(t)

	require.NoError(t, r.Publish(ctx, frame(7, 10)))
	require.NoError(t, r.Publish(ctx, frame(7, 99)))

	track, err := r.Track(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, track, 1)
	assert.InDelta(t, 99, track[0].X, 1e-9)
}

func TestRecorder_Closed(t *testing.T) {
	ctx := context.Background()
	r := openRecorder(t)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	err := r.Publish(ctx, frame(1, 0))
	assert.True(t, errors.Is(err, ErrClosed))
	_, err = r.Track(ctx, "alpha")
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestFrame_Robot(t *testing.T) {
	f := frame(1, 0)
	rb, ok := f.Robot("beta")
	require.True(t, ok)
	assert.Equal(t, "id-b", rb.ID)
	_, ok = f.Robot("gamma")
	assert.False(t, ok)
}

func TestSinkFunc(t *testing.T) {
	var got []uint64
	var s Sink = SinkFunc(func(_ context.Context, f Frame) error {
		got = append(got, f.Tick)
		return nil
	})
	require.NoError(t, s.Publish(context.Background(), frame(4, 0)))
	assert.Equal(t, []uint64{4}, got)
}
