package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gridglow/vanishttt-backend/internal/config"
	"github.com/gridglow/vanishttt-backend/internal/repository"
	"github.com/gridglow/vanishttt-backend/internal/repository/storage"
	"github.com/gridglow/vanishttt-backend/internal/session"
	"github.com/gridglow/vanishttt-backend/internal/syncer"
	"github.com/gridglow/vanishttt-backend/internal/usecase"
	"github.com/gridglow/vanishttt-backend/transport/rest"
	"github.com/gridglow/vanishttt-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sessionStorage, err := storage.NewSQLiteStorage(conf.SessionStoragePath)
	if err != nil {
		return fmt.Errorf("could not open session storage: %w", err)
	}

	defer func() {
		if err = sessionStorage.Close(); err != nil {
			log.Error("could not close session storage", "error", err)
		}
	}()

	if err = sessionStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init session storage: %w", err)
	}

	gameRepo := repository.NewGameRepository(redisStorage)
	sessionRepo := repository.NewSessionRepository(sessionStorage.Connection)

	sessionManager := session.NewManager(logger, sessionRepo)
	gameManager := usecase.NewGameManager(logger, gameRepo, sessionManager)
	gameSyncer := syncer.New(logger, redisStorage, gameRepo, conf.Sync.PollInterval(), conf.Sync.ReconnectDelay())

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gameManager, conf.BaseURL)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager, gameSyncer)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
