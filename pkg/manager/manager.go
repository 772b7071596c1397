// Package manager implements the session coordinator: it owns the room
// registry, routes joins and moves to the right room, and tears rooms
// down when they finish.
package manager

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/tecu23/room-server/internal/color"
	"github.com/tecu23/room-server/pkg/events"
	"github.com/tecu23/room-server/pkg/game"
	"github.com/tecu23/room-server/pkg/repository"
	"github.com/tecu23/room-server/pkg/rules"
)

// ErrRoomNotFound is returned for a move against an unknown room id. A
// client racing a stale move against a just-finished game hits this;
// the caller ignores it silently.
var ErrRoomNotFound = errors.New("room not found")

// Manager is the only writer of room creation and destruction.
type Manager struct {
	repo  *repository.InMemoryRoomRepository
	rules *rules.Adapter
	clk   clockwork.Clock

	defaultTimeControlMin int

	publisher *events.Publisher
	logger    *zap.Logger
}

// NewManager creates a manager over the given registry storage.
func NewManager(
	repo *repository.InMemoryRoomRepository,
	adapter *rules.Adapter,
	clk clockwork.Clock,
	defaultTimeControlMin int,
	logger *zap.Logger,
	publisher *events.Publisher,
) *Manager {
	m := &Manager{
		repo:                  repo,
		rules:                 adapter,
		clk:                   clk,
		defaultTimeControlMin: defaultTimeControlMin,
		logger:                logger,
		publisher:             publisher,
	}

	m.setupEventHandlers()

	return m
}

// setupEventHandlers wires the manager into the event bus.
func (m *Manager) setupEventHandlers() {
	m.publisher.Subscribe(events.EventConnectionClosed, func(event events.Event) {
		payload, ok := event.Payload.(map[string]string)
		if !ok {
			m.logger.Error("invalid connection closed payload type")
			return
		}

		connID, err := uuid.Parse(payload["connection_id"])
		if err != nil {
			m.logger.Error("invalid connection id in closed event", zap.Error(err))
			return
		}

		m.Disconnect(connID)
	})
}

// JoinResult tells the caller what a join produced. Started is false for
// the creator (room waits for an opponent) and true when the join filled
// the second seat; Members then holds both connection ids, white first.
type JoinResult struct {
	Color    color.Color
	Snapshot game.Snapshot
	Started  bool
	Members  []uuid.UUID
}

// JoinGame creates the room when the id is unknown, seating the caller
// as white with the requested time control, or seats the caller as
// black in an existing room. A full room yields game.ErrRoomFull, which
// is the only join failure surfaced back to the client.
func (m *Manager) JoinGame(
	connID uuid.UUID,
	roomID string,
	timeControlMinutes int,
) (*JoinResult, error) {
	tc := timeControlMinutes
	if tc <= 0 {
		tc = m.defaultTimeControlMin
	}
	timeControlMs := int64(tc) * 60 * 1000

	room, created := m.repo.GetOrCreate(roomID, func() *game.Room {
		return game.NewRoom(roomID, connID, timeControlMs, m.rules, m.clk, m.logger)
	})

	if created {
		m.publisher.Publish(events.Event{
			Type:   events.EventRoomCreated,
			RoomID: roomID,
			Payload: map[string]string{
				"connection_id": connID.String(),
			},
		})

		return &JoinResult{
			Color:    color.White,
			Snapshot: room.Snapshot(),
			Members:  []uuid.UUID{connID},
		}, nil
	}

	snapshot, err := room.Join(connID)
	if err != nil {
		return nil, err
	}

	m.publisher.Publish(events.Event{
		Type:   events.EventRoomStarted,
		RoomID: roomID,
		Payload: map[string]string{
			"connection_id": connID.String(),
		},
	})

	return &JoinResult{
		Color:    color.Black,
		Snapshot: snapshot,
		Started:  true,
		Members:  room.Members(),
	}, nil
}

// MakeMove routes a move attempt to its room. On a finished result the
// room is removed from the registry before returning, so the id is free
// for reuse. The returned member list is for broadcasting.
func (m *Manager) MakeMove(
	connID uuid.UUID,
	roomID string,
	mv rules.Move,
) (*game.MoveResult, []uuid.UUID, error) {
	room, ok := m.repo.Get(roomID)
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	members := room.Members()

	result, err := room.Move(connID, mv)
	if err != nil {
		return nil, nil, err
	}

	if result.Finished {
		m.repo.Remove(roomID)
		m.publisher.Publish(events.Event{
			Type:   events.EventGameOver,
			RoomID: roomID,
			Payload: map[string]string{
				"winner": string(result.Outcome.Winner),
				"reason": string(result.Outcome.Reason),
			},
		})
	} else {
		m.publisher.Publish(events.Event{
			Type:   events.EventMoveProcessed,
			RoomID: roomID,
			Payload: map[string]string{
				"move": result.Move.UCI(),
			},
		})
	}

	return result, members, nil
}

// Disconnect takes no corrective action: the room stays active and the
// absent side keeps losing clock time until it times out at the next
// move. Auto-resign is a deliberate non-feature, so this only logs.
func (m *Manager) Disconnect(connID uuid.UUID) {
	m.logger.Info("connection closed, rooms unaffected",
		zap.String("connection_id", connID.String()))
}
