package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type uGame interface {
	Connect(ctx context.Context, roomID, playerID string, ch entity.Channel) (*entity.Session, error)
	MakeTurn(session *entity.Session, playerID string, cell int) error
	Disconnect(session *entity.Session, playerID string, ch entity.Channel)
}

type Server struct {
	logger        *slog.Logger
	uGame         uGame
	upgrader      websocket.Upgrader
	sendQueueSize int
}

func New(logger *slog.Logger, uGame uGame, sendQueueSize int) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sendQueueSize: sendQueueSize,
	}
}

// Start - starts WebSocket server and stops it once ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler - returns the routes of the game socket. ctx bounds every admission lookup.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{roomID}/{playerID}", func(w http.ResponseWriter, r *http.Request) {
		that.serveGame(ctx, w, r)
	})

	return mux
}
