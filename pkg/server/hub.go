// Package server is the transport boundary: it tracks live WebSocket
// connections and routes their events to the session coordinator.
package server

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/room-server/pkg/game"
	"github.com/tecu23/room-server/pkg/manager"
	"github.com/tecu23/room-server/pkg/messages"
	"github.com/tecu23/room-server/pkg/rules"
)

// InboundHubMessage are the messages that the hub receives
type InboundHubMessage struct {
	Conn    *Connection             // who sent it
	Message messages.InboundMessage // decoded envelope
}

// Hub keeps track of all active connections and is responsible for
// registering/unregistering them. Inbound messages are drained by a
// single goroutine, so one event is fully processed — coordinator call,
// room mutation, broadcast enqueue — before the next.
type Hub struct {
	mu          sync.RWMutex              // Mutex to protect direct access to the connection maps.
	connections map[*Connection]bool      // Registered connections
	byID        map[uuid.UUID]*Connection // Connection lookup for room broadcasts

	register   chan *Connection       // Incoming registration
	unregister chan *Connection       // Incoming unregistration
	inbound    chan InboundHubMessage // Inbound messages to route

	done chan struct{}

	coordinator *manager.Manager
	logger      *zap.Logger
}

// NewHub creates a new hub
func NewHub(coordinator *manager.Manager, logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		byID:        make(map[uuid.UUID]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		inbound:     make(chan InboundHubMessage),
		done:        make(chan struct{}),
		coordinator: coordinator,
		logger:      logger,
	}
}

// Run is the main execution of the hub
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.registerConnection(conn)

		case conn := <-h.unregister:
			h.unregisterConnection(conn)

		case msg := <-h.inbound:
			h.handleInbound(msg)

		case <-h.done:
			return
		}
	}
}

// Shutdown stops the hub loop.
func (h *Hub) Shutdown() {
	close(h.done)
}

// Register queues a connection for registration.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister queues a connection for removal.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = true
	h.byID[conn.ID] = conn

	h.logger.Info("connection registered",
		zap.String("connection_id", conn.ID.String()),
		zap.Int("total", len(h.connections)))
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		delete(h.byID, conn.ID)
		close(conn.send)

		h.logger.Info("connection unregistered",
			zap.String("connection_id", conn.ID.String()),
			zap.Int("total", len(h.connections)))
	}
}

// handleInbound decodes and routes one client message.
func (h *Hub) handleInbound(msg InboundHubMessage) {
	switch msg.Message.Event {
	case messages.EventJoinGame:
		var payload messages.JoinGamePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil || payload.RoomID == "" {
			h.sendError(msg.Conn, "Invalid joinGame payload")
			return
		}

		h.handleJoinGame(msg.Conn, payload)

	case messages.EventMakeMove:
		var payload messages.MakeMovePayload
		if err := json.Unmarshal(msg.Message.Payload, &payload); err != nil {
			// Malformed move payloads degrade to "nothing happened".
			h.logger.Debug("malformed makeMove payload", zap.Error(err))
			return
		}

		h.handleMakeMove(msg.Conn, payload)

	default:
		h.sendError(msg.Conn, "Unknown message type")
	}
}

func (h *Hub) handleJoinGame(conn *Connection, payload messages.JoinGamePayload) {
	result, err := h.coordinator.JoinGame(conn.ID, payload.RoomID, payload.TimeControl)
	if err != nil {
		if errors.Is(err, game.ErrRoomFull) {
			// Surfaced to the requester only; members see nothing.
			h.sendError(conn, "Room is full")
			return
		}

		h.sendError(conn, err.Error())
		return
	}

	// Seat assignment goes to the joiner alone.
	conn.SendJSON(messages.OutboundMessage{
		Event:   messages.EventPlayerColor,
		Payload: string(result.Color),
	})

	state := messages.GameStatePayload{
		FEN: result.Snapshot.FEN,
		Timers: messages.Timers{
			White: result.Snapshot.WhiteMs,
			Black: result.Snapshot.BlackMs,
		},
	}

	if !result.Started {
		conn.SendJSON(messages.OutboundMessage{
			Event:   messages.EventGameInit,
			Payload: state,
		})
		return
	}

	h.broadcast(result.Members, messages.OutboundMessage{
		Event:   messages.EventGameStart,
		Payload: state,
	})
}

func (h *Hub) handleMakeMove(conn *Connection, payload messages.MakeMovePayload) {
	result, members, err := h.coordinator.MakeMove(conn.ID, payload.RoomID, payload.Move)
	if err != nil {
		// Stale rooms, wrong-turn and illegal moves are all dropped
		// silently; the client reads the missing moveMade echo as a
		// rejection.
		switch {
		case errors.Is(err, manager.ErrRoomNotFound),
			errors.Is(err, game.ErrRoomNotActive),
			errors.Is(err, rules.ErrNotYourTurn),
			errors.Is(err, rules.ErrIllegalMove):
			h.logger.Debug("move dropped",
				zap.String("connection_id", conn.ID.String()),
				zap.String("room_id", payload.RoomID),
				zap.Error(err))
		default:
			h.logger.Error("move failed", zap.Error(err))
		}
		return
	}

	if result.Applied {
		h.broadcast(members, messages.OutboundMessage{
			Event: messages.EventMoveMade,
			Payload: messages.MoveMadePayload{
				Move: result.Move,
				FEN:  result.FEN,
				Timers: messages.Timers{
					White: result.WhiteMs,
					Black: result.BlackMs,
				},
			},
		})
	}

	if result.Finished {
		h.broadcast(members, messages.OutboundMessage{
			Event: messages.EventGameOver,
			Payload: messages.GameOverPayload{
				Winner: string(result.Outcome.Winner),
				Reason: string(result.Outcome.Reason),
			},
		})
	}
}

// broadcast sends a message to every given connection that is still
// registered.
func (h *Hub) broadcast(members []uuid.UUID, msg messages.OutboundMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range members {
		if conn, ok := h.byID[id]; ok {
			conn.SendJSON(msg)
		}
	}
}

func (h *Hub) sendError(conn *Connection, msg string) {
	conn.SendJSON(messages.OutboundMessage{
		Event:   messages.EventError,
		Payload: msg,
	})
}
