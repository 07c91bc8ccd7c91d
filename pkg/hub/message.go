// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern.
package hub

import "encoding/json"

// Envelope types sent to dashboard clients.
const (
	// TypeHello is sent once on connect with the robot list.
	TypeHello = "hello"
	// TypeFrame carries one telemetry frame.
	TypeFrame = "frame"
)

// Message is one encoded websocket text frame.
type Message []byte

// Envelope tags a JSON payload with its type.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}
