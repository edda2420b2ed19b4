package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ctchen222/Gomoku/internal/api/controller"
	"ctchen222/Gomoku/internal/api/service"
	"ctchen222/Gomoku/internal/config"
	"ctchen222/Gomoku/internal/db"
	"ctchen222/Gomoku/internal/game"
	"ctchen222/Gomoku/internal/logger"
	"ctchen222/Gomoku/internal/repository"
	"ctchen222/Gomoku/internal/server"
	"ctchen222/Gomoku/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()

	cfg := config.MustLoad(config.PathFromEnv("config.yml"))

	// Initialize telemetry before the logger so the otelslog bridge exports.
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)
	if logger.ParseLevel(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	gameRepo, closeStore, err := newGameRepository(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize game store", "store.driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Create services
	gameService := service.NewGameService(gameRepo, service.WithGameOptions(
		game.WithSize(cfg.Game.BoardSize),
		game.WithWinLength(cfg.Game.WinLength),
	))

	// Create controllers
	gameController := controller.NewGameController(gameService)

	// Create the Gin-based server
	srv := server.NewServer(gameService, gameController, cfg.Web.Dir)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("HTTP server started", "http.addr", cfg.HTTP.Addr, "store.driver", cfg.Store.Driver,
			"game.size", cfg.Game.BoardSize, "game.win_length", cfg.Game.WinLength)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	srv.CloseSessions()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}

// newGameRepository opens the store selected by cfg.Store.Driver.
func newGameRepository(ctx context.Context, cfg *config.Config) (repository.GameRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisGameRepository(rdb, cfg.Store.TTL), func() { rdb.Close() }, nil
	case config.StoreSQLite:
		pool, err := db.ConnectSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteGameRepository(pool, cfg.Store.TTL), func() { pool.Close() }, nil
	default:
		return repository.NewMemoryGameRepository(cfg.Store.TTL), func() {}, nil
	}
}
