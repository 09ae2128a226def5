package service

import (
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

const (
	msgWaitingForOpponent = "Waiting for opponent..."
	msgDraw               = "Draw!"
)

type GamePlayService interface {
	JoinGame(session *entity.Session, playerID string, ch entity.Channel) error
	MakeTurn(session *entity.Session, playerID string, cell int) error
	LeaveGame(session *entity.Session, playerID string, ch entity.Channel)
}

type gamePlayService struct {
	logger      *slog.Logger
	broadcaster *Broadcaster
}

func NewGamePlayService(logger *slog.Logger, broadcaster *Broadcaster) GamePlayService {
	return &gamePlayService{
		logger:      logger.With("component", "gamePlay"),
		broadcaster: broadcaster,
	}
}

// JoinGame - registers the channel and starts the game once both players are connected.
func (that *gamePlayService) JoinGame(session *entity.Session, playerID string, ch entity.Channel) error {
	log := that.logger.With("method", "JoinGame", "roomID", session.ID(), "playerID", playerID)

	session.Lock()
	defer session.Unlock()

	if err := session.Join(playerID, ch); err != nil {
		return fmt.Errorf("failed to join game: %w", err)
	}

	log.Info("player joined", "mark", session.Mark(playerID), "live", session.LiveCount())

	if !session.Start() {
		if err := that.broadcaster.Send(ch, entity.NewInfoFrame(msgWaitingForOpponent)); err != nil {
			log.Debug("failed to send waiting info", "error", err)
		}
		return nil
	}

	that.broadcaster.BroadcastState(session, fmt.Sprintf("Game started. %s goes first.", session.Turn()), nil)

	return nil
}

// MakeTurn - applies a move and drives the round to its next state, all under the session lock.
// Rule violations are returned to the caller and nothing is broadcast.
func (that *gamePlayService) MakeTurn(session *entity.Session, playerID string, cell int) error {
	log := that.logger.With("method", "MakeTurn", "roomID", session.ID(), "playerID", playerID)

	session.Lock()
	defer session.Unlock()

	outcome, err := session.ApplyMove(playerID, cell)
	if err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	switch outcome {
	case entity.XWins, entity.OWins:
		mark, _ := outcome.Winner()
		winnerID := session.PlayerByMark(mark)

		that.broadcaster.BroadcastState(session, fmt.Sprintf("Player %s (%s) wins!", winnerID, mark), &winnerID)
		session.Reset()

		log.Info("round finished", "winner", winnerID)
	case entity.Draw:
		draw := entity.DrawMarker

		that.broadcaster.BroadcastState(session, msgDraw, &draw)
		session.Reset()

		log.Info("round finished", "winner", draw)
	default:
		that.broadcaster.BroadcastState(session, fmt.Sprintf("Player %s moved. Next: %s", playerID, session.Turn()), nil)
	}

	return nil
}

// LeaveGame - drops the channel and tells the remaining player. Roster, marks and board stay.
func (that *gamePlayService) LeaveGame(session *entity.Session, playerID string, ch entity.Channel) {
	log := that.logger.With("method", "LeaveGame", "roomID", session.ID(), "playerID", playerID)

	session.Lock()
	defer session.Unlock()

	if !session.Leave(playerID, ch) {
		return
	}

	that.broadcaster.NotifyOthers(session, playerID, fmt.Sprintf("Opponent %s disconnected.", playerID))

	log.Info("player left", "live", session.LiveCount())
}
