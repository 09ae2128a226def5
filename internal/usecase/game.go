package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

type GameUseCase interface {
	Connect(ctx context.Context, roomID, playerID string, ch entity.Channel) (*entity.Session, error)
	MakeTurn(session *entity.Session, playerID string, cell int) error
	Disconnect(session *entity.Session, playerID string, ch entity.Channel)

	GetGame(roomID string) (entity.Snapshot, error)
	DeleteGame(roomID string) error
}

type admissionService interface {
	Admit(ctx context.Context, roomID, playerID string) error
}

type sessionRepo interface {
	GetOrCreate(roomID string) *entity.Session
	GetByID(roomID string) (*entity.Session, error)
	DeleteByID(roomID string) error
}

type gamePlayService interface {
	JoinGame(session *entity.Session, playerID string, ch entity.Channel) error
	MakeTurn(session *entity.Session, playerID string, cell int) error
	LeaveGame(session *entity.Session, playerID string, ch entity.Channel)
}

type mirrorCleaner interface {
	EnqueueDelete(roomID string)
}

type gameUseCase struct {
	admission admissionService
	sessions  sessionRepo
	gamePlay  gamePlayService
	mirror    mirrorCleaner
}

// NewGameUseCase - mirror may be nil when snapshots are not mirrored.
func NewGameUseCase(admission admissionService, sessions sessionRepo, gamePlay gamePlayService, mirror mirrorCleaner) GameUseCase {
	return &gameUseCase{
		admission: admission,
		sessions:  sessions,
		gamePlay:  gamePlay,
		mirror:    mirror,
	}
}

// Connect - admits the player, then registers ch in the room's session.
// Admission happens before any session is touched.
func (that *gameUseCase) Connect(ctx context.Context, roomID, playerID string, ch entity.Channel) (*entity.Session, error) {
	if err := that.admission.Admit(ctx, roomID, playerID); err != nil {
		return nil, fmt.Errorf("failed to admit player: %w", err)
	}

	session := that.sessions.GetOrCreate(roomID)

	if err := that.gamePlay.JoinGame(session, playerID, ch); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	return session, nil
}

func (that *gameUseCase) MakeTurn(session *entity.Session, playerID string, cell int) error {
	if err := that.gamePlay.MakeTurn(session, playerID, cell); err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	return nil
}

func (that *gameUseCase) Disconnect(session *entity.Session, playerID string, ch entity.Channel) {
	that.gamePlay.LeaveGame(session, playerID, ch)
}

func (that *gameUseCase) GetGame(roomID string) (entity.Snapshot, error) {
	session, err := that.sessions.GetByID(roomID)
	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("failed to get game: %w", err)
	}

	session.Lock()
	defer session.Unlock()

	return session.Snapshot(), nil
}

func (that *gameUseCase) DeleteGame(roomID string) error {
	if err := that.sessions.DeleteByID(roomID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if that.mirror != nil {
		that.mirror.EnqueueDelete(roomID)
	}

	return nil
}
