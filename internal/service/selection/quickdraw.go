package service_selection

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/humanbelnik/restaurantpicker/internal/model"
)

// QuickDraw is the reaction race: countdown, a random server-side delay, one
// go signal to everybody, then the lowest reported reaction time wins.
type QuickDraw struct {
	src       Source
	countdown time.Duration
	minDelay  time.Duration
	maxDelay  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

type QuickDrawOption func(*QuickDraw)

func WithCountdown(d time.Duration) QuickDrawOption {
	return func(q *QuickDraw) {
		q.countdown = d
	}
}

func WithDelay(min, max time.Duration) QuickDrawOption {
	return func(q *QuickDraw) {
		q.minDelay = min
		q.maxDelay = max
	}
}

func WithReportTimeout(d time.Duration) QuickDrawOption {
	return func(q *QuickDraw) {
		q.timeout = d
	}
}

func WithLogger(logger *slog.Logger) QuickDrawOption {
	return func(q *QuickDraw) {
		q.logger = logger
	}
}

func NewQuickDraw(src Source, opts ...QuickDrawOption) *QuickDraw {
	if src == nil {
		src = NewSource()
	}
	q := &QuickDraw{
		src:       src,
		countdown: 3 * time.Second,
		minDelay:  2 * time.Second,
		maxDelay:  5 * time.Second,
		timeout:   10 * time.Second,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *QuickDraw) Mode() model.GameMode {
	return model.GameModeQuickDraw
}

func (q *QuickDraw) Select(ctx context.Context, round *Round, n Notifier) (Result, error) {
	defer round.Seal()

	n.Countdown(round, int((q.countdown+time.Second-1)/time.Second))

	wait := q.countdown + q.delay()
	if err := q.hold(ctx, round, wait, false); err != nil {
		return Result{}, err
	}

	round.Open()
	n.Go(round)
	q.logger.Debug("quick draw go", "round", round.ID, "waited", wait)

	if err := q.hold(ctx, round, q.timeout, true); err != nil {
		return Result{}, err
	}
	round.Seal()

	return rank(round)
}

func (q *QuickDraw) delay() time.Duration {
	if q.maxDelay <= q.minDelay {
		return q.minDelay
	}
	return q.minDelay + time.Duration(q.src.Int64N(int64(q.maxDelay-q.minDelay)))
}

// hold waits for d. It returns early when nobody is left, or, with untilComplete,
// once every remaining entry has reported.
func (q *QuickDraw) hold(ctx context.Context, round *Round, d time.Duration, untilComplete bool) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		if len(round.Remaining()) == 0 {
			return ErrNoEligible
		}
		if untilComplete && round.Complete() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-round.Changed():
		}
	}
}

func rank(round *Round) (Result, error) {
	entries := round.Entries()
	reports := round.reported()

	ranking := make([]Placement, 0, len(reports))
	index := make(map[model.ConnID]int, len(entries))
	for i, e := range entries {
		ms, ok := reports[e.Participant]
		if !ok {
			continue
		}
		index[e.Participant] = i
		ranking = append(ranking, Placement{
			Participant: e.Participant,
			JoinOrder:   e.JoinOrder,
			ReactionMs:  ms,
		})
	}
	if len(ranking) == 0 {
		return Result{}, ErrNoEligible
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].ReactionMs != ranking[j].ReactionMs {
			return ranking[i].ReactionMs < ranking[j].ReactionMs
		}
		return ranking[i].JoinOrder < ranking[j].JoinOrder
	})

	return Result{
		Index:   index[ranking[0].Participant],
		Ranking: ranking,
	}, nil
}
