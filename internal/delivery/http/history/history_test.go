package http_history

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	usecase_history "github.com/humanbelnik/restaurantpicker/internal/usecase/history"
	history_mocks "github.com/humanbelnik/restaurantpicker/mocks/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRouter(repo usecase_history.SelectionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	New(usecase_history.New(repo)).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRecent(t *testing.T) {
	t.Run("lists selections", func(t *testing.T) {
		repo := history_mocks.NewSelectionRepository(t)
		id := uuid.MustParse("7b0c6f5e-8d52-4a55-9d0a-0c8f5d6f1e11")
		repo.On("Recent", mock.Anything, 5).Return([]model.SelectionRecord{{
			ID:           id,
			RoomCode:     "ABCD",
			Mode:         model.GameModeWheel,
			Restaurant:   "Taco Place",
			Submitter:    "host",
			Participants: 2,
			DecidedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}}, nil).Once()

		w := get(newRouter(repo), "/api/v1/history?limit=5")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"selections":[{
			"id":"7b0c6f5e-8d52-4a55-9d0a-0c8f5d6f1e11",
			"room_code":"ABCD",
			"mode":"wheel",
			"restaurant":"Taco Place",
			"submitter":"host",
			"participants":2,
			"decided_at":"2026-03-01T12:00:00Z"
		}]}`, w.Body.String())
	})

	t.Run("empty history", func(t *testing.T) {
		repo := history_mocks.NewSelectionRepository(t)
		repo.On("Recent", mock.Anything, usecase_history.DefaultLimit).Return(nil, nil).Once()

		w := get(newRouter(repo), "/api/v1/history")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"selections":[]}`, w.Body.String())
	})

	t.Run("bad limits", func(t *testing.T) {
		engine := newRouter(history_mocks.NewSelectionRepository(t))

		assert.Equal(t, http.StatusBadRequest, get(engine, "/api/v1/history?limit=abc").Code)
		assert.Equal(t, http.StatusBadRequest, get(engine, "/api/v1/history?limit=500").Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := history_mocks.NewSelectionRepository(t)
		repo.On("Recent", mock.Anything, usecase_history.DefaultLimit).Return(nil, errors.New("db down")).Once()

		w := get(newRouter(repo), "/api/v1/history")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		w := get(newRouter(nil), "/api/v1/history")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
