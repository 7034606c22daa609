package app

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/humanbelnik/restaurantpicker/internal/config"
	http_history "github.com/humanbelnik/restaurantpicker/internal/delivery/http/history"
	http_init "github.com/humanbelnik/restaurantpicker/internal/delivery/http/init"
	http_room "github.com/humanbelnik/restaurantpicker/internal/delivery/http/room"
	ws_room "github.com/humanbelnik/restaurantpicker/internal/delivery/ws/room"
	infra_pg_init "github.com/humanbelnik/restaurantpicker/internal/infra/postgres/init"
	infra_postgres_selection "github.com/humanbelnik/restaurantpicker/internal/infra/postgres/selection"
	infra_redis_init "github.com/humanbelnik/restaurantpicker/internal/infra/redis/init"
	infra_redis_outcome "github.com/humanbelnik/restaurantpicker/internal/infra/redis/outcome"
	service_dispatch "github.com/humanbelnik/restaurantpicker/internal/service/dispatch"
	service_selection "github.com/humanbelnik/restaurantpicker/internal/service/selection"
	storage_room "github.com/humanbelnik/restaurantpicker/internal/storage/room"
	usecase_history "github.com/humanbelnik/restaurantpicker/internal/usecase/history"
	usecase_room "github.com/humanbelnik/restaurantpicker/internal/usecase/room"
)

func Go(cfg *config.Config) {
	const (
		outcomeKey = "outcome"
	)

	logger := newLogger(cfg.Logger)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := service_selection.NewSource()
	roomOpts := []usecase_room.Option{
		usecase_room.WithSource(src),
		usecase_room.WithGrace(cfg.Room.Grace),
		usecase_room.WithCodeLength(cfg.Room.CodeLength),
		usecase_room.WithLogger(logger),
		usecase_room.WithSelector(service_selection.NewSpin(src)),
		usecase_room.WithSelector(service_selection.NewQuickDraw(src,
			service_selection.WithCountdown(cfg.QuickDraw.Countdown),
			service_selection.WithDelay(cfg.QuickDraw.MinDelay, cfg.QuickDraw.MaxDelay),
			service_selection.WithReportTimeout(cfg.QuickDraw.ReportTimeout),
			service_selection.WithLogger(logger),
		)),
	}

	if cfg.Redis.Enabled {
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		defer redisConn.Close()
		roomOpts = append(roomOpts, usecase_room.WithArchive(
			infra_redis_outcome.New(redisConn, outcomeKey, cfg.Redis.OutcomeTTL),
		))
	}

	historyUC := usecase_history.New(nil, usecase_history.WithLogger(logger))
	if cfg.Postgres.Enabled {
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		defer pgConn.Close()

		selectionRepo := infra_postgres_selection.New(pgConn)
		if err := selectionRepo.Migrate(ctx); err != nil {
			log.Fatalf("migrate selections: %v", err)
		}
		historyUC = usecase_history.New(selectionRepo, usecase_history.WithLogger(logger))
		roomOpts = append(roomOpts, usecase_room.WithRecorder(historyUC))
	}

	hub := ws_room.NewHub(ws_room.WithHubLogger(logger))
	dispatcher := service_dispatch.New(hub, service_dispatch.WithLogger(logger))
	roomStorage := storage_room.New(cfg.Room.Capacity)
	roomUC := usecase_room.New(roomStorage, dispatcher, roomOpts...)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_room.New(roomUC, http_room.WithLogger(logger)))
	controllerPool.Add(http_history.New(historyUC))
	controllerPool.Add(ws_room.NewController(roomUC, hub,
		ws_room.WithLogger(logger),
		ws_room.WithSendBuffer(cfg.Room.SendBuffer),
	))

	controllerPool.Register()
	err := controllerPool.RunAll(ctx, net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port))

	hub.Shutdown()
	roomUC.Close()

	if err != nil {
		log.Fatalf("http server: %v", err)
	}
	logger.Info("server stopped")
}

func newLogger(cfg config.Logger) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
