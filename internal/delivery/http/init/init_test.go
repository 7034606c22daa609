package http_init

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingController struct{}

func (pingController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ping", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})
}

func TestControllerPool_Register(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pool := NewControllerPool()
	pool.Add(pingController{})
	pool.Register()

	w := httptest.NewRecorder()
	pool.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestControllerPool_RunAllStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pool := NewControllerPool()
	pool.Register()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- pool.RunAll(ctx, "127.0.0.1:0")
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
