package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	GetGame(w http.ResponseWriter, r *http.Request)
	DeleteGame(w http.ResponseWriter, r *http.Request)
}

type gameUseCase interface {
	GetGame(roomID string) (entity.Snapshot, error)
	DeleteGame(roomID string) error
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func NewHandlers(logger *slog.Logger, gameUseCase gameUseCase) Handlers {
	return &handlers{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// GetGame - returns the snapshot of a live session.
func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	snapshot, err := that.gameUseCase.GetGame(roomID)
	if err != nil {
		that.writeError(w, roomID, err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

// DeleteGame - drops the session of a room. Connected players keep their sockets.
func (that *handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")

	if err := that.gameUseCase.DeleteGame(roomID); err != nil {
		that.writeError(w, roomID, err)
		return
	}

	that.logger.Info("game state cleared", "roomID", roomID)

	that.writeJSON(w, http.StatusOK, map[string]string{"message": "game state cleared"})
}

func (that *handlers) writeError(w http.ResponseWriter, roomID string, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		that.writeJSON(w, http.StatusNotFound, map[string]string{"detail": apperror.ErrNotFound.Error()})
		return
	}

	that.logger.Error("admin request failed", "roomID", roomID, "error", err)
	that.writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
