// Package web provides the live simulation dashboard: a REST view of the
// robots and a websocket stream of telemetry frames.
package web

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-brains/internal/log"
	"github.com/teslashibe/go-brains/pkg/hub"
	"github.com/teslashibe/go-brains/pkg/robot"
	"github.com/teslashibe/go-brains/pkg/telemetry"
)

// Source is the simulation state the dashboard reads. sim.Runner
// implements it.
type Source interface {
	Snapshots() []robot.Snapshot
	Snapshot(key string) (robot.Snapshot, bool)
	Last() telemetry.Frame
}

// Server is the web dashboard server
type Server struct {
	app    *fiber.App
	source Source
	brains []string
	log    *slog.Logger

	// Hub for websocket broadcast (thread-safe!)
	ticks   *hub.Hub
	ctx     context.Context
	cancel  context.CancelFunc
	hubOnce sync.Once
}

var _ telemetry.Sink = (*Server)(nil)

// NewServer creates a dashboard over source. brains lists the brain names
// reported by /api/brains.
func NewServer(source Source, brains []string, logger *slog.Logger) *Server {
	logger = log.Or(logger).With("component", "web")
	s := &Server{
		source: source,
		brains: brains,
		log:    logger,
		ticks:  hub.New("ticks", logger),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	app := fiber.New(fiber.Config{
		AppName:               "go-brains",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/brains", s.handleBrains)
	api.Get("/robots", s.handleRobots)
	api.Get("/robots/:id", s.handleRobot)
	api.Get("/frame", s.handleFrame)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/ticks", websocket.New(s.handleTicksWS))

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Hub returns the frame hub.
func (s *Server) Hub() *hub.Hub { return s.ticks }

// Publish implements telemetry.Sink by fanning frames out to websocket
// clients.
func (s *Server) Publish(ctx context.Context, f telemetry.Frame) error {
	return s.ticks.Publish(ctx, f)
}

// Serve starts the hub and serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.hubOnce.Do(func() { go s.ticks.Run(s.ctx) })

	s.log.Info("dashboard listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(addr string) {
	go func() {
		if err := s.Start(addr); err != nil {
			s.log.Error("web server error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.Shutdown()
}
