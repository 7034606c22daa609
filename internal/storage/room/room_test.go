package storage_room

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activate(room *model.Room) error {
	room.Admit("host", model.RoleHost)
	room.Phase = model.PhaseActive
	return nil
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	s := New(0)

	require.NoError(t, s.Create(ctx, "ABCD", activate))

	assert.Equal(t, 10, s.Capacity())
	assert.True(t, s.Exists(ctx, "ABCD"))
	assert.ErrorIs(t, s.Create(ctx, "ABCD", activate), usecase_room.ErrRoomAlreadyExists)
	assert.Equal(t, 1, s.Count())
}

func TestCreate_DroppedOnFailure(t *testing.T) {
	ctx := context.Background()
	s := New(4)
	boom := errors.New("boom")

	err := s.Create(ctx, "ABCD", func(room *model.Room) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, s.Exists(ctx, "ABCD"))

	err = s.Create(ctx, "ABCD", func(room *model.Room) error { return nil })
	assert.NoError(t, err)
	assert.False(t, s.Exists(ctx, "ABCD"), "a room left empty must not be published")
}

func TestCreate_StampsCapacity(t *testing.T) {
	ctx := context.Background()
	s := New(3)
	require.NoError(t, s.Create(ctx, "ABCD", activate))

	var capacity int
	require.NoError(t, s.View(ctx, "ABCD", func(room *model.Room) { capacity = room.Capacity }))
	assert.Equal(t, 3, capacity)
}

func TestCreate_ConcurrentSameCode(t *testing.T) {
	ctx := context.Background()
	s := New(10)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Create(ctx, "ABCD", activate); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.Equal(t, 1, s.Count())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := New(10)
	require.NoError(t, s.Create(ctx, "ABCD", activate))

	err := s.Update(ctx, "ABCD", func(room *model.Room) error {
		room.Admit("guest", model.RoleGuest)
		return nil
	})
	require.NoError(t, err)

	var members []model.ConnID
	require.NoError(t, s.View(ctx, "ABCD", func(room *model.Room) { members = room.Members() }))
	assert.Equal(t, []model.ConnID{"host", "guest"}, members)

	assert.ErrorIs(t, s.Update(ctx, "NOPE", func(*model.Room) error { return nil }), usecase_room.ErrRoomNotFound)
	assert.ErrorIs(t, s.View(ctx, "NOPE", func(*model.Room) {}), usecase_room.ErrRoomNotFound)
}

func TestUpdate_ClosedRoomRemoved(t *testing.T) {
	ctx := context.Background()
	s := New(10)
	require.NoError(t, s.Create(ctx, "ABCD", activate))

	err := s.Update(ctx, "ABCD", func(room *model.Room) error {
		room.Phase = model.PhaseClosed
		return nil
	})
	require.NoError(t, err)

	assert.False(t, s.Exists(ctx, "ABCD"))
	assert.ErrorIs(t, s.Update(ctx, "ABCD", func(*model.Room) error { return nil }), usecase_room.ErrRoomNotFound)
	assert.NoError(t, s.Create(ctx, "ABCD", activate), "code is free again")
}

func TestUpdate_Serialized(t *testing.T) {
	ctx := context.Background()
	s := New(10)
	require.NoError(t, s.Create(ctx, "ABCD", activate))

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "ABCD", func(room *model.Room) error {
				room.Suggestions = append(room.Suggestions, model.Suggestion{Name: "x", Submitter: "host"})
				return nil
			})
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, s.View(ctx, "ABCD", func(room *model.Room) { n = len(room.Suggestions) }))
	assert.Equal(t, 100, n)
}
