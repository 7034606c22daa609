package usecase_history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/humanbelnik/restaurantpicker/internal/model"
)

var (
	ErrInvalidLimit = errors.New("limit out of range")
	ErrDisabled     = errors.New("selection history is disabled")
	ErrInternal     = errors.New("internal error")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

//go:generate mockery --name=SelectionRepository --output=../../../mocks/history --filename=repository.go
type SelectionRepository interface {
	Insert(ctx context.Context, rec model.SelectionRecord) error
	Recent(ctx context.Context, limit int) ([]model.SelectionRecord, error)
}

type Usecase struct {
	repo   SelectionRepository
	logger *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

// New accepts a nil repository; the usecase then answers every read with ErrDisabled.
func New(repo SelectionRepository, opts ...Option) *Usecase {
	u := &Usecase{
		repo:   repo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) Enabled() bool {
	return u.repo != nil
}

// Record turns a room outcome into a history row.
func (u *Usecase) Record(ctx context.Context, outcome model.Outcome) error {
	if u.repo == nil {
		return nil
	}

	rec := model.SelectionRecord{
		ID:           uuid.New(),
		RoomCode:     outcome.RoomCode,
		Mode:         outcome.Mode,
		Restaurant:   outcome.Winner.Name,
		Submitter:    outcome.Winner.Submitter,
		Participants: outcome.Participants,
		DecidedAt:    outcome.DecidedAt,
	}
	if err := u.repo.Insert(ctx, rec); err != nil {
		return errors.Join(ErrInternal, err)
	}

	u.logger.Debug("selection recorded", "room", outcome.RoomCode, "id", rec.ID)
	return nil
}

// Recent lists the latest selections; a zero limit means DefaultLimit.
func (u *Usecase) Recent(ctx context.Context, limit int) ([]model.SelectionRecord, error) {
	if u.repo == nil {
		return nil, ErrDisabled
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLimit, limit, MaxLimit)
	}

	records, err := u.repo.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return records, nil
}
