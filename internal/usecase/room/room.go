package usecase_room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/humanbelnik/restaurantpicker/internal/model"
	service_dispatch "github.com/humanbelnik/restaurantpicker/internal/service/dispatch"
	service_selection "github.com/humanbelnik/restaurantpicker/internal/service/selection"
)

const (
	maxCodeLength    = 16
	maxNameLength    = 100
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeAttempts     = 3
	defaultCodeLen   = 4
	defaultGrace     = 5 * time.Second
	recordingTimeout = 5 * time.Second
)

type RoomStore interface {
	Create(ctx context.Context, code model.RoomCode, fn func(room *model.Room) error) error
	Update(ctx context.Context, code model.RoomCode, fn func(room *model.Room) error) error
	View(ctx context.Context, code model.RoomCode, fn func(room *model.Room)) error
	Exists(ctx context.Context, code model.RoomCode) bool
	Capacity() int
}

type Dispatcher interface {
	Flush(out *service_dispatch.Outbox)
}

//go:generate mockery --name=Recorder --output=../../../mocks/recorder --filename=recorder.go
type Recorder interface {
	Record(ctx context.Context, outcome model.Outcome) error
}

//go:generate mockery --name=Archive --output=../../../mocks/archive --filename=archive.go
type Archive interface {
	Recorder
	Load(ctx context.Context, code model.RoomCode) (model.Outcome, error)
}

type Usecase struct {
	store      RoomStore
	dispatcher Dispatcher
	selectors  map[model.GameMode]service_selection.Selector
	recorders  []Recorder
	archive    Archive
	src        service_selection.Source
	grace      time.Duration
	codeLength int
	logger     *slog.Logger

	mu     sync.Mutex
	runs   map[model.RoomCode]*run
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Usecase)

func WithSelector(s service_selection.Selector) Option {
	return func(u *Usecase) {
		u.selectors[s.Mode()] = s
	}
}

func WithRecorder(r Recorder) Option {
	return func(u *Usecase) {
		u.recorders = append(u.recorders, r)
	}
}

// WithArchive sets where outcomes are read back from; the archive also records them.
func WithArchive(a Archive) Option {
	return func(u *Usecase) {
		u.archive = a
		u.recorders = append(u.recorders, a)
	}
}

func WithSource(src service_selection.Source) Option {
	return func(u *Usecase) {
		u.src = src
	}
}

func WithGrace(d time.Duration) Option {
	return func(u *Usecase) {
		u.grace = d
	}
}

func WithCodeLength(n int) Option {
	return func(u *Usecase) {
		if n > 0 && n <= maxCodeLength {
			u.codeLength = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(store RoomStore, dispatcher Dispatcher, opts ...Option) *Usecase {
	ctx, cancel := context.WithCancel(context.Background())
	u := &Usecase{
		store:      store,
		dispatcher: dispatcher,
		selectors:  make(map[model.GameMode]service_selection.Selector),
		grace:      defaultGrace,
		codeLength: defaultCodeLen,
		logger:     slog.Default(),
		runs:       make(map[model.RoomCode]*run),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.src == nil {
		u.src = service_selection.NewSource()
	}
	if _, ok := u.selectors[model.GameModeWheel]; !ok {
		u.selectors[model.GameModeWheel] = service_selection.NewSpin(u.src)
	}
	if _, ok := u.selectors[model.GameModeQuickDraw]; !ok {
		u.selectors[model.GameModeQuickDraw] = service_selection.NewQuickDraw(u.src)
	}
	return u
}

func (u *Usecase) CreateRoom(ctx context.Context, rawCode string, host model.ConnID) (model.RoomStatus, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return model.RoomStatus{}, err
	}

	var status model.RoomStatus
	err = u.store.Create(ctx, code, func(room *model.Room) error {
		var out service_dispatch.Outbox

		p := room.Admit(host, model.RoleHost)
		room.Phase = model.PhaseActive

		out.Unicast(host, sessionJoined(room, p))
		out.Unicast(host, currentUsers(room, ""))
		out.Unicast(host, currentRestaurants(room))
		out.Unicast(host, gameOption(room))
		if err := u.commit(room, &out); err != nil {
			return err
		}
		status = statusOf(room)
		return nil
	})
	if err != nil {
		return model.RoomStatus{}, err
	}

	u.logger.Info("room created", "room", code, "conn", host)
	return status, nil
}

func (u *Usecase) JoinRoom(ctx context.Context, rawCode string, conn model.ConnID) (model.Participant, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return model.Participant{}, err
	}

	var joined model.Participant
	err = u.transition(ctx, code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if room.Phase != model.PhaseActive {
			return ErrInvalidState
		}
		if room.Participant(conn) != nil {
			return ErrInvalidState
		}
		if room.Full() {
			return ErrRoomFull
		}

		p := room.Admit(conn, model.RoleGuest)
		joined = *p

		out.Broadcast(room, currentUsers(room, conn), conn)
		out.Unicast(conn, sessionJoined(room, p))
		out.Unicast(conn, currentUsers(room, ""))
		out.Unicast(conn, currentRestaurants(room))
		out.Unicast(conn, gameOption(room))
		return nil
	})
	if err != nil {
		return model.Participant{}, err
	}

	u.logger.Info("participant joined", "room", code, "conn", conn)
	return joined, nil
}

// LeaveRoom is idempotent: leaving a gone room or leaving twice is not an error.
func (u *Usecase) LeaveRoom(ctx context.Context, rawCode string, conn model.ConnID) error {
	code := model.NormalizeCode(rawCode)
	if code == model.EmptyRoomCode {
		return nil
	}

	err := u.transition(ctx, code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if room.Participant(conn) == nil {
			return nil
		}

		wasHost := room.IsHost(conn)
		_, hadSuggestion := room.Remove(conn)
		if r := u.runOf(room); r != nil {
			r.round.Drop(conn)
		}

		switch {
		case wasHost:
			u.closeLocked(room, out, model.CloseHostLeft)
		case len(room.Participants) == 0:
			room.Phase = model.PhaseClosed
			u.stopRun(room)
		default:
			out.Broadcast(room, currentUsers(room, ""))
			if hadSuggestion {
				out.Broadcast(room, currentRestaurants(room))
			}
		}
		return nil
	})
	if errors.Is(err, ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	u.logger.Info("participant left", "room", code, "conn", conn)
	return nil
}

func (u *Usecase) Suggest(ctx context.Context, rawCode string, conn model.ConnID, name string) (model.Suggestion, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return model.Suggestion{}, err
	}
	name = strings.TrimSpace(name)

	var suggestion model.Suggestion
	err = u.transition(ctx, code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if room.Participant(conn) == nil {
			return ErrRoomNotFound
		}
		if room.Phase != model.PhaseActive {
			return ErrInvalidState
		}
		if _, ok := room.SuggestionOf(conn); ok {
			return ErrDuplicateSuggestion
		}
		if name == "" {
			return ErrEmptyInput
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return fmt.Errorf("%w: restaurant name longer than %d characters", ErrInvalidInput, maxNameLength)
		}

		suggestion = model.Suggestion{Name: name, Submitter: conn}
		room.Suggestions = append(room.Suggestions, suggestion)

		out.Broadcast(room, model.Event{Type: model.EventRestaurantSuggest, Payload: suggestion})
		return nil
	})
	if err != nil {
		return model.Suggestion{}, err
	}
	return suggestion, nil
}

func (u *Usecase) SetGameMode(ctx context.Context, rawCode string, conn model.ConnID, mode model.GameMode) error {
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
		if !mode.Valid() {
			return fmt.Errorf("%w: unknown game mode %q", ErrInvalidInput, mode)
		}

		room.Mode = mode
		out.Broadcast(room, gameOption(room))
		return nil
	})
}

// DeleteRoom lets the host close the room, except while a run has not yet produced a winner.
func (u *Usecase) DeleteRoom(ctx context.Context, rawCode string, conn model.ConnID) error {
	code, err := parseCode(rawCode)
	if err != nil {
		return err
	}

	err = u.transition(ctx, code, func(room *model.Room, out *service_dispatch.Outbox) error {
		if !room.IsHost(conn) {
			return ErrNotHost
		}
		if room.Phase == model.PhaseSelecting && room.Winner == nil {
			return ErrInvalidState
		}
		u.closeLocked(room, out, model.CloseDeleted)
		return nil
	})
	if err != nil {
		return err
	}

	u.logger.Info("room deleted", "room", code, "conn", conn)
	return nil
}

func (u *Usecase) CheckRoom(ctx context.Context, rawCode string) (model.RoomStatus, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return model.RoomStatus{}, err
	}

	var status model.RoomStatus
	if err := u.store.View(ctx, code, func(room *model.Room) {
		status = statusOf(room)
	}); err != nil {
		return model.RoomStatus{}, err
	}
	return status, nil
}

func (u *Usecase) Restaurants(ctx context.Context, rawCode string) ([]model.Suggestion, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return nil, err
	}

	var snapshot []model.Suggestion
	if err := u.store.View(ctx, code, func(room *model.Room) {
		snapshot = room.Snapshot()
	}); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Outcome reads an archived selection result. Rooms are gone after completion,
// so this is the only way to look a result up afterwards.
func (u *Usecase) Outcome(ctx context.Context, rawCode string) (model.Outcome, error) {
	code, err := parseCode(rawCode)
	if err != nil {
		return model.Outcome{}, err
	}
	if u.archive == nil {
		return model.Outcome{}, ErrNoOutcome
	}

	outcome, err := u.archive.Load(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNoOutcome) {
			return model.Outcome{}, ErrNoOutcome
		}
		return model.Outcome{}, errors.Join(ErrInternal, err)
	}
	return outcome, nil
}

// Assuming that codes can conflict.
// Retrying...
func (u *Usecase) FreeCode(ctx context.Context) (model.RoomCode, error) {
	for range codeAttempts {
		code := u.buildRoomCode()
		if !u.store.Exists(ctx, code) {
			return code, nil
		}
	}
	return model.EmptyRoomCode, ErrRoomsUnavailable
}

func (u *Usecase) buildRoomCode() model.RoomCode {
	var builder strings.Builder
	builder.Grow(u.codeLength)

	for range u.codeLength {
		builder.WriteByte(codeAlphabet[u.src.IntN(len(codeAlphabet))])
	}

	return model.RoomCode(builder.String())
}

// Close stops every in-flight run and grace timer and waits for them.
func (u *Usecase) Close() {
	u.mu.Lock()
	u.closed = true
	u.mu.Unlock()

	u.cancel()
	u.wg.Wait()
}

// transition runs fn under the room's lock, then checks invariants and
// flushes the outbox before the lock is released.
func (u *Usecase) transition(
	ctx context.Context,
	code model.RoomCode,
	fn func(room *model.Room, out *service_dispatch.Outbox) error,
) error {
	return u.store.Update(ctx, code, func(room *model.Room) error {
		var out service_dispatch.Outbox
		if err := fn(room, &out); err != nil {
			return err
		}
		return u.commit(room, &out)
	})
}

func (u *Usecase) commit(room *model.Room, out *service_dispatch.Outbox) error {
	if err := room.CheckInvariants(); err != nil {
		u.logger.Error("room force-closed", "room", room.Code, "error", err)
		out.Reset()
		u.closeLocked(room, out, model.CloseInternalError)
		u.dispatcher.Flush(out)
		return errors.Join(ErrInternal, err)
	}
	u.dispatcher.Flush(out)
	return nil
}

// closeLocked queues session-deleted for every member and marks the room closed;
// the store drops closed rooms when the transition returns.
func (u *Usecase) closeLocked(room *model.Room, out *service_dispatch.Outbox, reason string) {
	out.Broadcast(room, model.Event{
		Type: model.EventSessionDeleted,
		Payload: model.SessionDeletedPayload{
			RoomCode: room.Code,
			Reason:   reason,
		},
	})
	room.Phase = model.PhaseClosed
	u.stopRun(room)
}

func parseCode(raw string) (model.RoomCode, error) {
	code := model.NormalizeCode(raw)
	if code == model.EmptyRoomCode {
		return model.EmptyRoomCode, ErrEmptyInput
	}
	if len(code) > maxCodeLength {
		return model.EmptyRoomCode, fmt.Errorf("%w: room code longer than %d characters", ErrInvalidInput, maxCodeLength)
	}
	for _, c := range code {
		if !strings.ContainsRune(codeAlphabet, c) {
			return model.EmptyRoomCode, fmt.Errorf("%w: room code must be letters and digits", ErrInvalidInput)
		}
	}
	return code, nil
}

func statusOf(room *model.Room) model.RoomStatus {
	return model.RoomStatus{
		Code:         room.Code,
		Phase:        room.Phase,
		Mode:         room.Mode,
		Participants: len(room.Participants),
		Capacity:     room.Capacity,
	}
}
