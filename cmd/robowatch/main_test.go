package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/pkg/hub"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/telemetry"
	"github.com/teslashibe/go-brains/pkg/world"
)

func envelope(t *testing.T, kind string, v any) hub.Envelope {
	t.Helper()
	msg, err := hub.Encode(kind, v)
	require.NoError(t, err)
	var env hub.Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestPrinter(t *testing.T) {
	var out bytes.Buffer
	p := printer{w: &out, robot: "hunter", every: 5}

	require.NoError(t, p.handle(envelope(t, hub.TypeHello, []robot.Snapshot{{ID: "abc", Name: "hunter", State: "wander"}})))
	assert.Contains(t, out.String(), "robot hunter (abc) state=wander")
	out.Reset()

	frame := telemetry.Frame{Robots: []telemetry.Robot{
		{Name: "gatherer", State: "search"},
		{Name: "hunter", State: "chase", Halted: "jammed", Body: world.State{Held: 2}},
	}}
	frame.Tick = 3
	require.NoError(t, p.handle(envelope(t, hub.TypeFrame, frame)))
	assert.Empty(t, out.String(), "skipped frame")

	frame.Tick = 5
	require.NoError(t, p.handle(envelope(t, hub.TypeFrame, frame)))
	assert.Contains(t, out.String(), "hunter")
	assert.Contains(t, out.String(), "held=2")
	assert.Contains(t, out.String(), `halted="jammed"`)
	assert.NotContains(t, out.String(), "gatherer")

	assert.Error(t, p.handle(hub.Envelope{Type: hub.TypeFrame, Data: []byte(`[`)}))
}
