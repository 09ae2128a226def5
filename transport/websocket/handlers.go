package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

const msgInternalError = "internal server error"

// serveGame - upgrades the request and runs the connection until the peer goes away.
func (that *Server) serveGame(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	playerID := r.PathValue("playerID")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Warn("failed to upgrade connection", "error", err)
		return
	}

	connID := uuid.NewString()
	log := that.logger.With("connID", connID, "roomID", roomID, "playerID", playerID)

	client := newConnection(connID, log, conn, that.sendQueueSize)
	go client.writePump()
	defer client.wait()
	defer client.close()

	log.Info("WebSocket connection established")

	session, err := that.uGame.Connect(ctx, roomID, playerID, client)
	if err != nil {
		if apperror.IsAdmission(err) {
			log.Info("connection rejected", "error", err)
		}
		that.sendError(log, client, err)
		return
	}

	that.readPump(log, client, session, playerID)

	that.uGame.Disconnect(session, playerID, client)

	log.Info("WebSocket connection closed")
}

// readPump pumps commands from the websocket connection until it fails.
func (that *Server) readPump(log *slog.Logger, client *connection, session *entity.Session, playerID string) {
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("unexpected close", "error", err)
			}
			return
		}

		if err = that.handleCommand(session, playerID, payload); err != nil {
			switch {
			case apperror.IsProtocol(err):
				log.Debug("malformed command", "error", err)
			case apperror.IsRuleViolation(err):
				log.Debug("move rejected", "error", err)
			}
			that.sendError(log, client, err)
		}
	}
}

// handleCommand - decodes one frame and dispatches it. Errors are reported to the sender only.
func (that *Server) handleCommand(session *entity.Session, playerID string, payload []byte) error {
	var command Command
	if err := json.Unmarshal(payload, &command); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidJSON, err)
	}

	switch command.Action {
	case entity.ActionMove:
		return that.uGame.MakeTurn(session, playerID, command.cell())
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownAction, command.Action)
	}
}

func (that *Server) sendError(log *slog.Logger, client *connection, err error) {
	message, ok := apperror.Message(err)
	if !ok {
		log.Error("internal error", "error", err)
		message = msgInternalError
	}

	frame, err := json.Marshal(entity.NewErrorFrame(message))
	if err != nil {
		log.Error("failed to marshal error frame", "error", err)
		return
	}

	if err = client.Send(frame); err != nil {
		log.Debug("failed to queue error frame", "error", err)
	}
}
