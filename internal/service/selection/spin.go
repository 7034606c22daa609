package service_selection

import (
	"context"

	"github.com/humanbelnik/restaurantpicker/internal/model"
)

// Spin picks one remaining entry uniformly at random. Every suggestion carries
// the same weight regardless of who submitted it.
type Spin struct {
	src Source
}

func NewSpin(src Source) *Spin {
	if src == nil {
		src = NewSource()
	}
	return &Spin{src: src}
}

func (s *Spin) Mode() model.GameMode {
	return model.GameModeWheel
}

func (s *Spin) Select(ctx context.Context, round *Round, _ Notifier) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	remaining := round.Remaining()
	if len(remaining) == 0 {
		return Result{}, ErrNoEligible
	}

	idx := remaining[s.src.IntN(len(remaining))]
	e := round.Entries()[idx]
	return Result{
		Index: idx,
		Ranking: []Placement{{
			Participant: e.Participant,
			JoinOrder:   e.JoinOrder,
		}},
	}, nil
}
