package usecase_room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	service_dispatch "github.com/humanbelnik/restaurantpicker/internal/service/dispatch"
	service_selection "github.com/humanbelnik/restaurantpicker/internal/service/selection"
)

// run is one selection in flight. It stays registered through the grace
// period so the room can still be matched against it.
type run struct {
	roomID uuid.UUID
	mode   model.GameMode
	round  *service_selection.Round
	ctx    context.Context
	cancel context.CancelFunc
}

// BeginSelection starts a run in the room's current mode. An empty mode means
// "whatever the room is set to"; a mismatching one is refused.
func (u *Usecase) BeginSelection(ctx context.Context, rawCode string, conn model.ConnID, mode model.GameMode) error {
	code, err := parseCode(rawCode)
	if err != nil {
		return err
	}

	return u.transition(ctx, code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if !room.IsHost(conn) {
			return ErrNotHost
		}
		if room.Phase != model.PhaseActive {
			return ErrInvalidState
		}
		if mode != "" && mode != room.Mode {
			return fmt.Errorf("%w: room is set to %s", ErrInvalidState, room.Mode)
		}
		if len(room.Suggestions) == 0 {
			return ErrNoSuggestions
		}
		selector, ok := u.selectors[room.Mode]
		if !ok {
			return errors.Join(ErrInternal, fmt.Errorf("no selector for mode %s", room.Mode))
		}

		r, err := u.register(room, service_selection.NewRound(eligible(room)))
		if err != nil {
			return err
		}
		room.Phase = model.PhaseSelecting

		go u.execute(room.Code, r, selector)

		u.logger.Info("selection started", "room", room.Code, "mode", room.Mode, "round", r.round.ID)
		return nil
	})
}

// ReportReaction hands a reaction time to the room's race. Anything that does
// not match the live race is dropped without an error.
func (u *Usecase) ReportReaction(ctx context.Context, rawCode string, conn model.ConnID, ms int64, roundID string) bool {
	code := model.NormalizeCode(rawCode)
	accepted := false

	_ = u.store.View(ctx, code, func(room *model.Room) {
		if room.Phase != model.PhaseSelecting || room.Participant(conn) == nil {
			return
		}
		r := u.runOf(room)
		if r == nil || r.mode != model.GameModeQuickDraw {
			return
		}
		if roundID != "" && roundID != r.round.ID {
			return
		}
		accepted = r.round.Report(conn, ms)
	})

	if !accepted {
		u.logger.Debug("reaction ignored", "room", code, "conn", conn, "round", roundID)
	}
	return accepted
}

func (u *Usecase) execute(code model.RoomCode, r *run, selector service_selection.Selector) {
	defer u.wg.Done()

	res, selErr := selector.Select(r.ctx, r.round, notifier{u: u, code: code, run: r})
	if r.ctx.Err() != nil {
		return
	}

	var outcome *model.Outcome
	err := u.transition(context.Background(), code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if !u.current(room, r) {
			return nil
		}
		if selErr == nil {
			outcome = u.finishLocked(room, out, r, res)
		}
		if outcome == nil {
			if selErr != nil && !errors.Is(selErr, service_selection.ErrNoEligible) {
				u.logger.Error("selection failed", "room", code, "error", selErr)
			}
			u.abortLocked(room, out, r)
		}
		return nil
	})
	if err != nil {
		u.logger.Debug("selection finished on a gone room", "room", code, "error", err)
		return
	}
	if outcome == nil {
		return
	}

	u.record(*outcome)
	u.graceClose(code, r)
}

// finishLocked stores the first ranked placement that still holds a suggestion
// as the winner and queues the result event.
func (u *Usecase) finishLocked(
	room *model.Room,
	out *service_dispatch.Outbox,
	r *run,
	res service_selection.Result,
) *model.Outcome {
	for _, p := range res.Ranking {
		idx, ok := room.SuggestionOf(p.Participant)
		if !ok {
			continue
		}

		winner := room.Suggestions[idx]
		room.Winner = &winner

		scores := make([]model.Score, 0, len(res.Ranking))
		for _, pl := range res.Ranking {
			if room.Participant(pl.Participant) == nil {
				continue
			}
			scores = append(scores, model.Score{ParticipantID: pl.Participant, ReactionMs: pl.ReactionMs})
		}

		switch r.mode {
		case model.GameModeQuickDraw:
			out.Broadcast(room, model.Event{
				Type: model.EventQuickDrawWinner,
				Payload: model.QuickDrawWinnerPayload{
					Index:       idx,
					Restaurant:  winner,
					Winner:      p.Participant,
					WinnerScore: p.ReactionMs,
					Scores:      scores,
				},
			})
		default:
			scores = nil
			out.Broadcast(room, model.Event{
				Type: model.EventRestaurantSelected,
				Payload: model.RestaurantSelectedPayload{
					Index:      idx,
					Restaurant: winner,
					Mode:       r.mode,
				},
			})
		}

		u.logger.Info("restaurant selected", "room", room.Code, "restaurant", winner.Name, "mode", r.mode)
		return &model.Outcome{
			RoomID:       room.ID,
			RoomCode:     room.Code,
			Mode:         r.mode,
			Winner:       winner,
			Index:        idx,
			Ranking:      scores,
			Participants: len(room.Participants),
			DecidedAt:    time.Now().UTC(),
		}
	}
	return nil
}

func (u *Usecase) abortLocked(room *model.Room, out *service_dispatch.Outbox, r *run) {
	u.stopRun(room)
	room.Phase = model.PhaseActive

	out.Broadcast(room, model.Event{Type: model.EventSelectionAborted, Payload: struct{}{}})
	if host := room.Host(); host != nil {
		out.Unicast(host.ID, ErrorEvent(ErrSelectionAborted))
	}
	u.logger.Info("selection aborted", "room", room.Code, "round", r.round.ID)
}

func (u *Usecase) record(outcome model.Outcome) {
	if len(u.recorders) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(u.ctx, recordingTimeout)
	defer cancel()

	for _, rec := range u.recorders {
		if err := rec.Record(ctx, outcome); err != nil {
			u.logger.Warn("outcome not recorded", "room", outcome.RoomCode, "error", err)
		}
	}
}

func (u *Usecase) graceClose(code model.RoomCode, r *run) {
	timer := time.NewTimer(u.grace)
	defer timer.Stop()

	select {
	case <-r.ctx.Done():
		return
	case <-timer.C:
	}

	_ = u.transition(context.Background(), code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if !u.current(room, r) {
			return nil
		}
		u.closeLocked(room, out, model.CloseCompleted)
		return nil
	})
}

func (u *Usecase) register(room *model.Room, round *service_selection.Round) (*run, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return nil, errors.Join(ErrInternal, errors.New("coordinator is shutting down"))
	}

	ctx, cancel := context.WithCancel(u.ctx)
	r := &run{
		roomID: room.ID,
		mode:   room.Mode,
		round:  round,
		ctx:    ctx,
		cancel: cancel,
	}
	u.runs[room.Code] = r
	u.wg.Add(1)
	return r, nil
}

func (u *Usecase) runOf(room *model.Room) *run {
	u.mu.Lock()
	defer u.mu.Unlock()

	r := u.runs[room.Code]
	if r == nil || r.roomID != room.ID {
		return nil
	}
	return r
}

func (u *Usecase) current(room *model.Room, r *run) bool {
	return room.Phase == model.PhaseSelecting && u.runOf(room) == r
}

func (u *Usecase) stopRun(room *model.Room) {
	u.mu.Lock()
	defer u.mu.Unlock()

	r := u.runs[room.Code]
	if r == nil || r.roomID != room.ID {
		return
	}
	r.cancel()
	delete(u.runs, room.Code)
}

// eligible lists the participants that have a suggestion, in join order.
func eligible(room *model.Room) []service_selection.Entry {
	entries := make([]service_selection.Entry, 0, len(room.Suggestions))
	for _, p := range room.Participants {
		idx, ok := room.SuggestionOf(p.ID)
		if !ok {
			continue
		}
		entries = append(entries, service_selection.Entry{
			Participant: p.ID,
			JoinOrder:   p.JoinOrder,
			Suggestion:  room.Suggestions[idx],
		})
	}
	return entries
}

// notifier turns race phases into room broadcasts.
type notifier struct {
	u    *Usecase
	code model.RoomCode
	run  *run
}

func (n notifier) Countdown(round *service_selection.Round, seconds int) {
	n.announce(model.Event{
		Type: model.EventQuickDrawStarted,
		Payload: model.QuickDrawStartedPayload{
			Countdown: seconds,
			RoundID:   round.ID,
		},
	})
}

func (n notifier) Go(round *service_selection.Round) {
	n.announce(model.Event{
		Type:    model.EventQuickDrawGo,
		Payload: model.QuickDrawGoPayload{RoundID: round.ID},
	})
}

func (n notifier) announce(ev model.Event) {
	_ = n.u.transition(n.run.ctx, n.code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if !n.u.current(room, n.run) {
			return nil
		}
		out.Broadcast(room, ev)
		return nil
	})
}
