package http_room

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/restaurantpicker/internal/delivery/http/common"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
)

type Controller struct {
	usecase *usecase_room.Usecase
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(usecase *usecase_room.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", c.book)
		rooms.GET("/:room_code/status", c.status)
		rooms.GET("/:room_code/restaurants", c.restaurants)
		rooms.GET("/:room_code/result", c.result)
	}
}

type BookResponseDTO struct {
	RoomCode string `json:"room_code"`
}

// book hands out a room code no live room uses. The room itself is created
// by the first create-session over the websocket.
// @Summary Reserve a room code
// @Tags Rooms
// @Produce json
// @Success 201 {object} BookResponseDTO
// @Failure 503 {object} http_common.ErrorResponse
// @Router /rooms [post]
func (c *Controller) book(ctx *gin.Context) {
	code, err := c.usecase.FreeCode(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, "failed to book room", err)
		return
	}

	ctx.JSON(http.StatusCreated, BookResponseDTO{
		RoomCode: string(code),
	})
}

type StatusResponseDTO struct {
	Status       string `json:"status"`
	Participants int    `json:"participants"`
	Capacity     int    `json:"capacity"`
	Mode         string `json:"mode"`
}

// @Summary Room status
// @Tags Rooms
// @Param room_code path string true "Room code"
// @Success 200 {object} StatusResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_code}/status [get]
func (c *Controller) status(ctx *gin.Context) {
	status, err := c.usecase.CheckRoom(ctx.Request.Context(), ctx.Param("room_code"))
	if err != nil {
		c.fail(ctx, "failed to get status", err)
		return
	}

	ctx.JSON(http.StatusOK, StatusResponseDTO{
		Status:       string(status.Phase),
		Participants: status.Participants,
		Capacity:     status.Capacity,
		Mode:         string(status.Mode),
	})
}

type RestaurantsResponseDTO struct {
	Restaurants []model.Suggestion `json:"restaurants"`
}

// @Summary Current suggestions
// @Tags Rooms
// @Param room_code path string true "Room code"
// @Success 200 {object} RestaurantsResponseDTO
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_code}/restaurants [get]
func (c *Controller) restaurants(ctx *gin.Context) {
	list, err := c.usecase.Restaurants(ctx.Request.Context(), ctx.Param("room_code"))
	if err != nil {
		c.fail(ctx, "failed to get restaurants", err)
		return
	}

	ctx.JSON(http.StatusOK, RestaurantsResponseDTO{
		Restaurants: list,
	})
}

// @Summary Archived selection result
// @Tags Rooms
// @Param room_code path string true "Room code"
// @Success 200 {object} model.Outcome
// @Failure 404 {object} http_common.ErrorResponse
// @Router /rooms/{room_code}/result [get]
func (c *Controller) result(ctx *gin.Context) {
	outcome, err := c.usecase.Outcome(ctx.Request.Context(), ctx.Param("room_code"))
	if err != nil {
		c.fail(ctx, "failed to get result", err)
		return
	}

	ctx.JSON(http.StatusOK, outcome)
}

func (c *Controller) fail(ctx *gin.Context, msg string, err error) {
	code, text := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, usecase_room.ErrRoomNotFound):
		code, text = http.StatusNotFound, "not found"
	case errors.Is(err, usecase_room.ErrNoOutcome):
		code, text = http.StatusNotFound, "no result"
	case errors.Is(err, usecase_room.ErrEmptyInput), errors.Is(err, usecase_room.ErrInvalidInput):
		code, text = http.StatusBadRequest, "invalid room code"
	case errors.Is(err, usecase_room.ErrRoomsUnavailable):
		code, text = http.StatusServiceUnavailable, "unavailable"
	}

	if code == http.StatusInternalServerError {
		c.logger.Error(msg, slog.String("error", err.Error()))
	} else {
		c.logger.Debug(msg, slog.String("error", err.Error()))
	}
	ctx.JSON(code, http_common.ErrorResponse{
		Message: text,
	})
}
