// Package repository holds the room registry storage.
package repository

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tecu23/room-server/pkg/game"
)

// InMemoryRoomRepository is a mutex-guarded map of rooms keyed by the
// client-supplied room id. The manager is its only writer.
type InMemoryRoomRepository struct {
	rooms  map[string]*game.Room
	mu     sync.Mutex
	logger *zap.Logger
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository(logger *zap.Logger) *InMemoryRoomRepository {
	return &InMemoryRoomRepository{
		rooms:  make(map[string]*game.Room),
		logger: logger,
	}
}

// GetOrCreate returns the room for id, building it with create when
// absent. The whole check-then-create runs under one lock so exactly one
// creator wins for a racing new id; the loser gets the created room back
// and joins it.
func (r *InMemoryRoomRepository) GetOrCreate(
	id string,
	create func() *game.Room,
) (*game.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[id]; ok {
		return room, false
	}

	room := create()
	r.rooms[id] = room

	r.logger.Info("room created", zap.String("room_id", id))

	return room, true
}

// Get retrieves a room by id.
func (r *InMemoryRoomRepository) Get(id string) (*game.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]

	return room, ok
}

// Remove deletes a room, freeing its id for reuse.
func (r *InMemoryRoomRepository) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[id]; ok {
		delete(r.rooms, id)
		r.logger.Info("room removed", zap.String("room_id", id))
	}
}

// Len returns the number of live rooms.
func (r *InMemoryRoomRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.rooms)
}

// ListActive returns all rooms currently in the active state.
func (r *InMemoryRoomRepository) ListActive() []*game.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	var active []*game.Room
	for _, room := range r.rooms {
		if room.Status() == game.StatusActive {
			active = append(active, room)
		}
	}

	return active
}
