package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/config"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/repository"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/service"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/transport/collaborator"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-game-rules/transport/rest"
	"github.com/rocketscienceinc/tictactoe-game-rules/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type snapshotMirror interface {
	Enqueue(roomID string, frame []byte)
	EnqueueDelete(roomID string)
}

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

	// stays a nil interface unless redis is enabled
	var mirror snapshotMirror

	if conf.Redis.Enabled {
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

		snapshotRepo := repository.NewSnapshotRepository(redisStorage.Connection, conf.Redis.ChannelPrefix)
		redisMirror := service.NewSnapshotMirror(logger, snapshotRepo, conf.Redis.MirrorBuffer)
		go redisMirror.Run(ctx)

		mirror = redisMirror
		log.Info("Mirroring snapshots to redis", "addr", redisAddrString)
	}

	collaborators := collaborator.New(collaborator.Options{
		UserServiceURL: conf.UserService.URL,
		UserTimeout:    conf.UserService.Timeout,
		RoomServiceURL: conf.RoomService.URL,
		RoomTimeout:    conf.RoomService.Timeout,
		IdentityTTL:    conf.Admission.IdentityCacheTTL,
	})

	admission := service.NewAdmissionService(logger, collaborators, collaborators)
	sessionRepo := repository.NewSessionRepository()
	broadcaster := service.NewBroadcaster(logger, mirror)
	gamePlay := service.NewGamePlayService(logger, broadcaster)
	gameUseCase := usecase.NewGameUseCase(admission, sessionRepo, gamePlay, mirror)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, logger, conf.HTTPPort, rest.NewHandlers(logger, gameUseCase)); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase, conf.Session.SendQueueSize)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err := <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
