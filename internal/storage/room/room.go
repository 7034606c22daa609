package storage_room

import (
	"context"
	"sync"

	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
)

type entry struct {
	mu      sync.Mutex
	room    *model.Room
	removed bool
}

// Storage is the in-memory table of live rooms.
//
// Lock order is always entry.mu before Storage.mu; Storage.mu is never held
// while waiting on a room.
type Storage struct {
	mu       sync.RWMutex
	rooms    map[model.RoomCode]*entry
	capacity int
}

func New(capacity int) *Storage {
	if capacity <= 0 {
		capacity = 10 /* default */
	}
	return &Storage{
		rooms:    make(map[model.RoomCode]*entry),
		capacity: capacity,
	}
}

func (s *Storage) Capacity() int {
	return s.capacity
}

// Create reserves code for a fresh room and runs fn on it before anyone else
// can observe it. If fn fails or leaves the room closed, the reservation is dropped.
func (s *Storage) Create(ctx context.Context, code model.RoomCode, fn func(room *model.Room) error) error {
	e := &entry{room: model.NewRoom(code, s.capacity)}
	e.mu.Lock()
	defer e.mu.Unlock()

	s.mu.Lock()
	if _, taken := s.rooms[code]; taken {
		s.mu.Unlock()
		return usecase_room.ErrRoomAlreadyExists
	}
	s.rooms[code] = e
	s.mu.Unlock()

	err := fn(e.room)
	if err != nil || e.room.Phase == model.PhaseClosed || e.room.Phase == model.PhaseEmpty {
		s.dropLocked(code, e)
	}
	return err
}

// Update runs fn with the room's lock held. Rooms that fn leaves closed are removed.
func (s *Storage) Update(ctx context.Context, code model.RoomCode, fn func(room *model.Room) error) error {
	e := s.lookup(code)
	if e == nil {
		return usecase_room.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return usecase_room.ErrRoomNotFound
	}

	err := fn(e.room)
	if e.room.Phase == model.PhaseClosed {
		s.dropLocked(code, e)
	}
	return err
}

// View runs fn with the room's lock held; fn must not mutate the room.
func (s *Storage) View(ctx context.Context, code model.RoomCode, fn func(room *model.Room)) error {
	e := s.lookup(code)
	if e == nil {
		return usecase_room.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return usecase_room.ErrRoomNotFound
	}
	fn(e.room)
	return nil
}

func (s *Storage) Exists(ctx context.Context, code model.RoomCode) bool {
	return s.lookup(code) != nil
}

func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *Storage) lookup(code model.RoomCode) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[code]
}

// dropLocked expects e.mu to be held.
func (s *Storage) dropLocked(code model.RoomCode, e *entry) {
	e.removed = true
	s.mu.Lock()
	if s.rooms[code] == e {
		delete(s.rooms, code)
	}
	s.mu.Unlock()
}
