// Command robowatch follows a running simulation's websocket stream and
// prints one line per robot per frame.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-brains/internal/config"
	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/hub"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/telemetry"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws/ticks", "Dashboard websocket URL")
	only := flag.String("robot", "", "Only print this robot")
	every := flag.Uint64("every", 10, "Print every Nth frame")
	flag.Parse()

	log.Init(config.LogLevel())

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Error("connect failed", "url", *url, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	p := printer{w: os.Stdout, robot: *only, every: *every}
	for {
		var env hub.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("stream ended", "error", err)
			}
			return
		}
		if err := p.handle(env); err != nil {
			log.Warn("bad message", "type", env.Type, "error", err)
		}
	}
}

type printer struct {
	w     io.Writer
	robot string
	every uint64
}

func (p printer) handle(env hub.Envelope) error {
	switch env.Type {
	case hub.TypeHello:
		var snaps []robot.Snapshot
		if err := json.Unmarshal(env.Data, &snaps); err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Fprintf(p.w, "robot %s (%s) state=%s\n", s.Name, s.ID, s.State)
		}
	case hub.TypeFrame:
		var f telemetry.Frame
		if err := json.Unmarshal(env.Data, &f); err != nil {
			return err
		}
		if p.every > 1 && f.Tick%p.every != 0 {
			return nil
		}
		for _, r := range f.Robots {
			if p.robot != "" && r.Name != p.robot {
				continue
			}
			fmt.Fprintf(p.w, "%6d %-10s %-14s pos=(%.0f,%.0f) held=%d cmd=%s",
				f.Tick, r.Name, r.State, r.Body.Position[0], r.Body.Position[1], r.Body.Held, r.Command)
			if r.Halted != "" {
				fmt.Fprintf(p.w, " halted=%q", r.Halted)
			}
			fmt.Fprintln(p.w)
		}
	}
	return nil
}
