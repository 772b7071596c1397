package messages

import "github.com/tecu23/room-server/pkg/rules"

// OutboundMessage is how we wrap responses before sending
// them to the client
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Server-to-client event names.
const (
	EventPlayerColor = "playerColor"
	EventGameInit    = "gameInit"
	EventGameStart   = "gameStart"
	EventMoveMade    = "moveMade"
	EventGameOver    = "gameOver"
	EventError       = "error"
)

// Timers carries both remaining clocks in milliseconds, clamped to zero.
type Timers struct {
	White int64 `json:"white"`
	Black int64 `json:"black"`
}

// GameStatePayload is the position snapshot sent on gameInit (to the
// creator while waiting) and gameStart (to both on room full).
type GameStatePayload struct {
	FEN    string `json:"fen"`
	Timers Timers `json:"timers"`
}

// MoveMadePayload is broadcast to both seats on every accepted move.
type MoveMadePayload struct {
	Move   rules.Move `json:"move"`
	FEN    string     `json:"fen"`
	Timers Timers     `json:"timers"`
}

// GameOverPayload is broadcast on the terminal transition; the room is
// destroyed right after. Winner is omitted for a draw.
type GameOverPayload struct {
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason"`
}
