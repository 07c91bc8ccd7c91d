package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-brains/pkg/hub"
)

// Status is the dashboard health summary.
type Status struct {
	Robots  int    `json:"robots"`
	Tick    uint64 `json:"tick"`
	Clients int    `json:"clients"`
}

// handleStatus returns the simulation progress
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(Status{
		Robots:  len(s.source.Snapshots()),
		Tick:    s.source.Last().Tick,
		Clients: s.ticks.ClientCount(),
	})
}

// handleBrains lists the registered brains
func (s *Server) handleBrains(c *fiber.Ctx) error {
	return c.JSON(s.brains)
}

// handleRobots returns every controller snapshot
func (s *Server) handleRobots(c *fiber.Ctx) error {
	return c.JSON(s.source.Snapshots())
}

// handleRobot returns one controller by ID or name
func (s *Server) handleRobot(c *fiber.Ctx) error {
	snap, ok := s.source.Snapshot(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "robot not found",
		})
	}
	return c.JSON(snap)
}

// handleFrame returns the latest telemetry frame
func (s *Server) handleFrame(c *fiber.Ctx) error {
	return c.JSON(s.source.Last())
}

// handleTicksWS streams frames to one client, greeting it with the robot
// list
func (s *Server) handleTicksWS(c *websocket.Conn) {
	hello, err := hub.Encode(hub.TypeHello, s.source.Snapshots())
	if err != nil {
		s.log.Error("encode hello", "error", err)
		return
	}
	client := hub.NewClient(s.ticks, c, hello)
	if client == nil {
		return
	}
	client.Run()
}
