// Package messages defines the wire envelopes exchanged with clients.
package messages

import (
	"encoding/json"

	"github.com/tecu23/room-server/pkg/rules"
)

// InboundMessage is the generic wrapper for messages coming from the
// client. The "event" field tells us the action; "payload" is the data
// we parse further.
type InboundMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Client-to-server event names.
const (
	EventJoinGame = "joinGame"
	EventMakeMove = "makeMove"
)

// JoinGamePayload asks to create or join a room. TimeControl is in
// minutes per side; zero means the server default.
type JoinGamePayload struct {
	RoomID      string `json:"roomId"`
	TimeControl int    `json:"timeControl"`
}

// MakeMovePayload carries one move attempt.
type MakeMovePayload struct {
	RoomID string     `json:"roomId"`
	Move   rules.Move `json:"move"`
}
