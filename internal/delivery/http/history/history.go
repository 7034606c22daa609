package http_history

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/restaurantpicker/internal/delivery/http/common"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_history "github.com/humanbelnik/restaurantpicker/internal/usecase/history"
)

type Controller struct {
	usecase *usecase_history.Usecase
	logger  *slog.Logger
}

func New(usecase *usecase_history.Usecase) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/history", c.recent)
}

type HistoryResponseDTO struct {
	Selections []model.SelectionRecord `json:"selections"`
}

// @Summary Latest selections
// @Tags History
// @Param limit query int false "1..100, default 20"
// @Success 200 {object} HistoryResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 503 {object} http_common.ErrorResponse
// @Router /history [get]
func (c *Controller) recent(ctx *gin.Context) {
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "limit must be a number",
			})
			return
		}
		limit = n
	}

	records, err := c.usecase.Recent(ctx.Request.Context(), limit)
	if err != nil {
		switch {
		case errors.Is(err, usecase_history.ErrInvalidLimit):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_history.ErrDisabled):
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "history disabled",
			})
		default:
			c.logger.Error("failed to list history", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	if records == nil {
		records = []model.SelectionRecord{}
	}
	ctx.JSON(http.StatusOK, HistoryResponseDTO{
		Selections: records,
	})
}
