package service_selection

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/humanbelnik/restaurantpicker/internal/model"
)

var ErrNoEligible = errors.New("no eligible entries")

type Placement struct {
	Participant model.ConnID
	JoinOrder   int
	ReactionMs  int64
}

// Result names the winning entry by its index in Round.Entries.
type Result struct {
	Index   int
	Ranking []Placement
}

func (r Result) Winner() Placement {
	return r.Ranking[0]
}

// Notifier carries the phases of a run out to the room.
type Notifier interface {
	Countdown(round *Round, seconds int)
	Go(round *Round)
}

type Selector interface {
	Mode() model.GameMode
	Select(ctx context.Context, round *Round, n Notifier) (Result, error)
}

type Source interface {
	IntN(n int) int
	Int64N(n int64) int64
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe PCG source seeded from crypto/rand.
func NewSource() Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed(), seed()))}
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *lockedSource) Int64N(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Int64N(n)
}

func seed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(b[:])
}
