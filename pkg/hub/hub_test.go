package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/telemetry"
)

func start(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test", log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func attach(h *Hub, buffer int) *Client {
	c := &Client{hub: h, send: make(chan Message, buffer)}
	h.register <- c
	return c
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "channel closed")
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no message")
		return Envelope{}
	}
}

func TestHub_BroadcastsFrames(t *testing.T) {
	h, _ := start(t)
	a, b := attach(h, 4), attach(h, 4)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, h.Publish(context.Background(), telemetry.Frame{Tick: 9, Items: 2}))
	for _, c := range []*Client{a, b} {
		env := receive(t, c)
		assert.Equal(t, TypeFrame, env.Type)
		var f telemetry.Frame
		require.NoError(t, json.Unmarshal(env.Data, &f))
		assert.Equal(t, uint64(9), f.Tick)
		assert.Equal(t, 2, f.Items)
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := start(t)
	slow := attach(h, 1)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, h.BroadcastJSON(TypeFrame, 1))
	require.NoError(t, h.BroadcastJSON(TypeFrame, 2))
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)

	env := receive(t, slow)
	assert.JSONEq(t, `1`, string(env.Data))
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestHub_Unregister(t *testing.T) {
	h, _ := start(t)
	c := attach(h, 1)
	h.unregister <- c
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := start(t)
	c := attach(h, 1)
	cancel()

	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not closed")
	}
	<-h.done
	assert.Nil(t, NewClient(h, nil), "a stopped hub accepts no clients")
}

func TestEncode(t *testing.T) {
	msg, err := Encode(TypeHello, map[string]int{"robots": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"hello","data":{"robots":3}}`, string(msg))

	_, err = Encode(TypeFrame, func() {})
	assert.Error(t, err)
}
