package ws_room

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
)

// Inbound event types.
const (
	EventCreateSession     = "create-session"
	EventJoinSession       = "join-session"
	EventCheckSession      = "check-session"
	EventLeaveSession      = "leave-session"
	EventSuggestRestaurant = "suggest-restaurant"
	EventGameOptionChanged = "game-option-changed"
	EventSpinWheel         = "spin-wheel"
	EventStartQuickDraw    = "start-quick-draw"
	EventQuickDrawFinished = "quick-draw-finished"
	EventDeleteSession     = "delete-session"
)

// maxReactionMs bounds a reported reaction time; anything slower is not a race entry.
const maxReactionMs = 60_000

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Controller struct {
	uc         *usecase_room.Usecase
	hub        *Hub
	sendBuffer int

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithSendBuffer(n int) ControllerOption {
	return func(c *Controller) {
		c.sendBuffer = n
	}
}

func NewController(uc *usecase_room.Usecase, hub *Hub, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		hub:    hub,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", c.serve)
}

func (c *Controller) serve(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()),
		)
		return
	}

	client := NewClient(conn, c.sendBuffer)
	c.hub.Register(client)

	go client.writePump()
	go c.readPump(client)
}

func (c *Controller) readPump(client *Client) {
	defer func() {
		if code := c.hub.Unregister(client.id); code != model.EmptyRoomCode {
			if err := c.uc.LeaveRoom(context.Background(), string(code), client.id); err != nil {
				c.logger.Error("leave on disconnect failed", "conn", client.id, "room", code, "error", err)
			}
		}
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed", "conn", client.id, "error", err)
			}
			return
		}

		var frame inbound
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reply(client.id, fmt.Errorf("%w: malformed frame", usecase_room.ErrInvalidInput))
			continue
		}
		c.handle(context.Background(), client.id, frame)
	}
}

type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// fields is the union of every inbound payload. A bare string or number
// payload fills every field it could stand for.
type fields struct {
	RoomCode   string   `json:"roomCode"`
	Name       string   `json:"name"`
	Mode       string   `json:"mode"`
	GameOption string   `json:"gameOption"`
	ReactionMs *float64 `json:"reactionMs"`
	RoundID    string   `json:"roundId"`

	bare bool
}

func decode(raw json.RawMessage) (fields, error) {
	var f fields
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return f, nil
	}

	switch raw[0] {
	case '{':
		if err := json.Unmarshal(raw, &f); err != nil {
			return f, fmt.Errorf("%w: %v", usecase_room.ErrInvalidInput, err)
		}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return f, fmt.Errorf("%w: %v", usecase_room.ErrInvalidInput, err)
		}
		f.RoomCode, f.Name, f.Mode = s, s, s
		f.bare = true
	default:
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return f, fmt.Errorf("%w: unsupported payload", usecase_room.ErrInvalidInput)
		}
		f.ReactionMs = &ms
	}
	return f, nil
}

func (c *Controller) handle(ctx context.Context, id model.ConnID, frame inbound) {
	f, err := decode(frame.Payload)
	if err != nil {
		c.reply(id, err)
		return
	}

	switch frame.Type {
	case EventCreateSession:
		err = c.create(ctx, id, f.RoomCode)
	case EventJoinSession:
		err = c.join(ctx, id, f.RoomCode)
	case EventCheckSession:
		c.check(ctx, id, f.RoomCode)
	case EventLeaveSession:
		err = c.leave(ctx, id, f.RoomCode)
	case EventSuggestRestaurant:
		err = c.inRoom(id, f.roomOnly(), func(code string) error {
			_, err := c.uc.Suggest(ctx, code, id, f.Name)
			return err
		})
	case EventGameOptionChanged:
		mode := f.Mode
		if f.GameOption != "" {
			mode = f.GameOption
		}
		err = c.inRoom(id, f.roomOnly(), func(code string) error {
			return c.uc.SetGameMode(ctx, code, id, model.GameMode(mode))
		})
	case EventSpinWheel:
		err = c.inRoom(id, f.roomOnly(), func(code string) error {
			return c.uc.BeginSelection(ctx, code, id, model.GameModeWheel)
		})
	case EventStartQuickDraw:
		err = c.inRoom(id, f.roomOnly(), func(code string) error {
			return c.uc.BeginSelection(ctx, code, id, model.GameModeQuickDraw)
		})
	case EventQuickDrawFinished:
		if f.ReactionMs == nil {
			return
		}
		ms, ok := reactionMs(*f.ReactionMs)
		if !ok {
			c.logger.Debug("reaction out of range", "conn", id, "reaction_ms", *f.ReactionMs)
			return
		}
		_ = c.inRoom(id, f.roomOnly(), func(code string) error {
			c.uc.ReportReaction(ctx, code, id, ms, f.RoundID)
			return nil
		})
	case EventDeleteSession:
		err = c.inRoom(id, f.roomOnly(), func(code string) error {
			return c.uc.DeleteRoom(ctx, code, id)
		})
	default:
		err = fmt.Errorf("%w: unknown event %q", usecase_room.ErrInvalidInput, frame.Type)
	}

	if err != nil {
		c.reply(id, err)
	}
}

// roomOnly keeps RoomCode only when it came from an object payload; a bare
// string was meant as a name or a mode.
func (f fields) roomOnly() string {
	if f.bare {
		return ""
	}
	return f.RoomCode
}

// create opens a room under the requested code, or under a fresh one when
// the client leaves the code to the server.
func (c *Controller) create(ctx context.Context, id model.ConnID, raw string) error {
	code := model.NormalizeCode(raw)
	if code == model.EmptyRoomCode {
		free, err := c.uc.FreeCode(ctx)
		if err != nil {
			return err
		}
		code = free
	}

	prev := c.hub.RoomOf(id)
	if _, err := c.uc.CreateRoom(ctx, string(code), id); err != nil {
		return err
	}
	c.leavePrevious(ctx, id, prev, code)
	return nil
}

// join enters another room. The connection keeps its current room when the join is refused.
func (c *Controller) join(ctx context.Context, id model.ConnID, raw string) error {
	prev := c.hub.RoomOf(id)
	if _, err := c.uc.JoinRoom(ctx, raw, id); err != nil {
		return err
	}
	c.leavePrevious(ctx, id, prev, model.NormalizeCode(raw))
	return nil
}

func (c *Controller) check(ctx context.Context, id model.ConnID, raw string) {
	status, err := c.uc.CheckRoom(ctx, raw)

	ev := model.Event{Type: model.EventSessionNotFound}
	switch {
	case err == nil && status.Full():
		ev.Type = model.EventRoomFull
	case err == nil:
		ev.Type = model.EventSessionExists
	case !errors.Is(err, usecase_room.ErrRoomNotFound):
		c.reply(id, err)
		return
	}
	ev.Payload = model.SessionCheckPayload{
		RoomCode: model.NormalizeCode(raw),
		Count:    status.Participants,
		Capacity: status.Capacity,
	}
	c.hub.Send(id, ev)
}

func (c *Controller) leave(ctx context.Context, id model.ConnID, raw string) error {
	code := model.NormalizeCode(raw)
	if code == model.EmptyRoomCode {
		code = c.hub.RoomOf(id)
	}
	if code == model.EmptyRoomCode {
		return nil
	}

	if err := c.uc.LeaveRoom(ctx, string(code), id); err != nil {
		return err
	}
	c.hub.Detach(id, code)
	return nil
}

// leavePrevious takes a connection out of the room it was in before it
// entered next. Called only once next has accepted it.
func (c *Controller) leavePrevious(ctx context.Context, id model.ConnID, prev, next model.RoomCode) {
	if prev == model.EmptyRoomCode || prev == next {
		return
	}
	if err := c.leave(ctx, id, string(prev)); err != nil {
		c.logger.Error("failed to leave previous room", "conn", id, "room", prev, "error", err)
	}
}

// reactionMs rounds a reported reaction time to whole milliseconds.
// Non-finite, negative and implausibly slow values are refused.
func reactionMs(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	ms := math.Round(v)
	if ms < 0 || ms > maxReactionMs {
		return 0, false
	}
	return int64(ms), true
}

// inRoom resolves the room of a room-scoped event: the code in the payload,
// else the room the connection is in.
func (c *Controller) inRoom(id model.ConnID, raw string, fn func(code string) error) error {
	code := model.NormalizeCode(raw)
	if code == model.EmptyRoomCode {
		code = c.hub.RoomOf(id)
	}
	if code == model.EmptyRoomCode {
		return usecase_room.ErrRoomNotFound
	}
	return fn(string(code))
}

func (c *Controller) reply(id model.ConnID, err error) {
	if usecase_room.Kind(err) == "Internal" {
		c.logger.Error("request failed", "conn", id, "error", err)
	} else {
		c.logger.Debug("request refused", "conn", id, "error", err)
	}
	c.hub.Send(id, usecase_room.ErrorEvent(err))
}
