package socket

import "encoding/json"

// Message is the wire envelope for every event exchanged with the game
// server: a name plus an opaque JSON payload.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Handler consumes the payload of one inbound event.
type Handler func(payload json.RawMessage)
