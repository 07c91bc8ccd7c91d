package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/actuator"
	"github.com/teslashibe/go-brains/pkg/hub"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/telemetry"
)

type fakeSource struct {
	snaps []robot.Snapshot
	last  telemetry.Frame
}

func (f *fakeSource) Snapshots() []robot.Snapshot { return f.snaps }
func (f *fakeSource) Last() telemetry.Frame       { return f.last }

func (f *fakeSource) Snapshot(key string) (robot.Snapshot, bool) {
	for _, s := range f.snaps {
		if s.ID == key || s.Name == key {
			return s, true
		}
	}
	return robot.Snapshot{}, false
}

func newServer() *Server {
	src := &fakeSource{
		snaps: []robot.Snapshot{
			{ID: "1111", Name: "alpha", Tick: 12, State: "collecting", Command: actuator.Drive(40, 2)},
			{ID: "2222", Name: "beta", Tick: 12, Halted: "jammed"},
		},
		last: telemetry.Frame{Tick: 12, Items: 4},
	}
	return NewServer(src, []string{"avoider", "collector"}, log.Discard())
}

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHandlers(t *testing.T) {
	s := newServer()

	code, body := get(t, s, "/api/robots")
	require.Equal(t, http.StatusOK, code)
	var snaps []robot.Snapshot
	require.NoError(t, json.Unmarshal(body, &snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, "collecting", snaps[0].State)
	assert.Equal(t, 40.0, snaps[0].Command.Motor())

	code, body = get(t, s, "/api/robots/beta")
	require.Equal(t, http.StatusOK, code)
	var one robot.Snapshot
	require.NoError(t, json.Unmarshal(body, &one))
	assert.Equal(t, "jammed", one.Halted)

	code, _ = get(t, s, "/api/robots/1111")
	assert.Equal(t, http.StatusOK, code)

	code, body = get(t, s, "/api/robots/gamma")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, string(body), "robot not found")

	code, body = get(t, s, "/api/status")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"robots":2,"tick":12,"clients":0}`, string(body))

	code, body = get(t, s, "/api/brains")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `["avoider","collector"]`, string(body))

	code, body = get(t, s, "/api/frame")
	require.Equal(t, http.StatusOK, code)
	var f telemetry.Frame
	require.NoError(t, json.Unmarshal(body, &f))
	assert.Equal(t, 4, f.Items)
}

func TestTicksWS_RequiresUpgrade(t *testing.T) {
	code, _ := get(t, newServer(), "/ws/ticks")
	assert.Equal(t, http.StatusUpgradeRequired, code)
}

func TestTicksWS_StreamsFrames(t *testing.T) {
	s := newServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ln)
	defer s.Shutdown()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/ticks", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	read := func() hub.Envelope {
		var env hub.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		return env
	}

	hello := read()
	assert.Equal(t, hub.TypeHello, hello.Type)
	var snaps []robot.Snapshot
	require.NoError(t, json.Unmarshal(hello.Data, &snaps))
	assert.Len(t, snaps, 2)

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Publish(context.Background(), telemetry.Frame{Tick: 13}))

	env := read()
	assert.Equal(t, hub.TypeFrame, env.Type)
	var f telemetry.Frame
	require.NoError(t, json.Unmarshal(env.Data, &f))
	assert.Equal(t, uint64(13), f.Tick)
}
