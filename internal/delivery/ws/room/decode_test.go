package ws_room

import (
	"encoding/json"
	"math"
	"testing"

	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionMs(t *testing.T) {
	testCases := []struct {
		name string
		in   float64
		want int64
		ok   bool
	}{
		{name: "whole", in: 450, want: 450, ok: true},
		{name: "rounds down", in: 450.1, want: 450, ok: true},
		{name: "rounds up", in: 450.9, want: 451, ok: true},
		{name: "zero", in: 0, want: 0, ok: true},
		{name: "upper bound", in: maxReactionMs, want: maxReactionMs, ok: true},
		{name: "negative", in: -1, ok: false},
		{name: "too slow", in: maxReactionMs + 1, ok: false},
		{name: "huge", in: 1e300, ok: false},
		{name: "nan", in: math.NaN(), ok: false},
		{name: "infinite", in: math.Inf(1), ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reactionMs(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestReactionMs_FractionsDoNotTie(t *testing.T) {
	slow, _ := reactionMs(450.9)
	fast, _ := reactionMs(450.1)

	assert.Less(t, fast, slow)
}

func TestDecode(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		f, err := decode(json.RawMessage(`{"roomCode":"abcd","reactionMs":12.5,"roundId":"r1"}`))
		require.NoError(t, err)
		assert.Equal(t, "abcd", f.roomOnly())
		require.NotNil(t, f.ReactionMs)
		assert.Equal(t, 12.5, *f.ReactionMs)
		assert.Equal(t, "r1", f.RoundID)
	})

	t.Run("bare string is not a room code for room-scoped events", func(t *testing.T) {
		f, err := decode(json.RawMessage(`"Pizza"`))
		require.NoError(t, err)
		assert.Equal(t, "Pizza", f.Name)
		assert.Empty(t, f.roomOnly())
	})

	t.Run("bare number", func(t *testing.T) {
		f, err := decode(json.RawMessage(`812`))
		require.NoError(t, err)
		require.NotNil(t, f.ReactionMs)
		assert.Equal(t, 812.0, *f.ReactionMs)
	})

	t.Run("null", func(t *testing.T) {
		f, err := decode(json.RawMessage(`null`))
		require.NoError(t, err)
		assert.Nil(t, f.ReactionMs)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := decode(json.RawMessage(`[1,2]`))
		assert.ErrorIs(t, err, usecase_room.ErrInvalidInput)
	})
}
