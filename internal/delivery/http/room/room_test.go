package http_room

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/restaurantpicker/internal/model"
	service_dispatch "github.com/humanbelnik/restaurantpicker/internal/service/dispatch"
	storage_room "github.com/humanbelnik/restaurantpicker/internal/storage/room"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
	archive_mocks "github.com/humanbelnik/restaurantpicker/mocks/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type discard struct{}

func (discard) Send(model.ConnID, model.Event) {}

func newRouter(t *testing.T, opts ...usecase_room.Option) (*gin.Engine, *usecase_room.Usecase) {
	gin.SetMode(gin.TestMode)

	uc := usecase_room.New(storage_room.New(10), service_dispatch.New(discard{}), opts...)
	t.Cleanup(uc.Close)

	engine := gin.New()
	New(uc).RegisterRoutes(engine.Group("/api/v1"))
	return engine, uc
}

func do(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestBook(t *testing.T) {
	engine, _ := newRouter(t)

	w := do(engine, http.MethodPost, "/api/v1/rooms")

	require.Equal(t, http.StatusCreated, w.Code)
	var body BookResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.RoomCode, 4)
}

func TestStatus(t *testing.T) {
	engine, uc := newRouter(t)
	_, err := uc.CreateRoom(context.Background(), "ABCD", "host")
	require.NoError(t, err)
	_, err = uc.JoinRoom(context.Background(), "ABCD", "guest")
	require.NoError(t, err)

	testCases := []struct {
		name string
		path string
		code int
		body string
	}{
		{
			name: "live room",
			path: "/api/v1/rooms/abcd/status",
			code: http.StatusOK,
			body: `{"status":"active","participants":2,"capacity":10,"mode":"wheel"}`,
		},
		{
			name: "unknown room",
			path: "/api/v1/rooms/ZZZZ/status",
			code: http.StatusNotFound,
			body: `{"message":"not found"}`,
		},
		{
			name: "malformed code",
			path: "/api/v1/rooms/AB-CD/status",
			code: http.StatusBadRequest,
			body: `{"message":"invalid room code"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(engine, http.MethodGet, tc.path)

			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestRestaurants(t *testing.T) {
	engine, uc := newRouter(t)
	ctx := context.Background()
	_, _ = uc.CreateRoom(ctx, "ABCD", "host")
	_, _ = uc.Suggest(ctx, "ABCD", "host", "Taco Place")

	w := do(engine, http.MethodGet, "/api/v1/rooms/ABCD/restaurants")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"restaurants":[{"name":"Taco Place","submitter":"host"}]}`, w.Body.String())
}

func TestResult(t *testing.T) {
	t.Run("without archive", func(t *testing.T) {
		engine, _ := newRouter(t)

		w := do(engine, http.MethodGet, "/api/v1/rooms/ABCD/result")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("archived", func(t *testing.T) {
		archive := archive_mocks.NewArchive(t)
		engine, _ := newRouter(t, usecase_room.WithArchive(archive))
		archive.On("Load", mock.Anything, model.RoomCode("ABCD")).Return(model.Outcome{
			RoomCode: "ABCD",
			Mode:     model.GameModeWheel,
			Winner:   model.Suggestion{Name: "Taco Place", Submitter: "host"},
		}, nil).Once()

		w := do(engine, http.MethodGet, "/api/v1/rooms/ABCD/result")

		require.Equal(t, http.StatusOK, w.Code)
		var got model.Outcome
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Taco Place", got.Winner.Name)
	})
}
