package repository

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

type SessionRepository interface {
	GetOrCreate(roomID string) *entity.Session
	GetByID(roomID string) (*entity.Session, error)
	DeleteByID(roomID string) error
}

// memSession keeps sessions in a sync.Map so rooms never share a lock.
type memSession struct {
	sessions sync.Map // roomID -> *entity.Session
}

func NewSessionRepository() SessionRepository {
	return &memSession{}
}

// GetOrCreate - returns the session of roomID, creating it on first use.
func (that *memSession) GetOrCreate(roomID string) *entity.Session {
	if existing, ok := that.sessions.Load(roomID); ok {
		return existing.(*entity.Session)
	}

	actual, _ := that.sessions.LoadOrStore(roomID, entity.NewSession(roomID))

	return actual.(*entity.Session)
}

func (that *memSession) GetByID(roomID string) (*entity.Session, error) {
	existing, ok := that.sessions.Load(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: room %s", apperror.ErrNotFound, roomID)
	}

	return existing.(*entity.Session), nil
}

func (that *memSession) DeleteByID(roomID string) error {
	if _, ok := that.sessions.LoadAndDelete(roomID); !ok {
		return fmt.Errorf("%w: room %s", apperror.ErrNotFound, roomID)
	}

	return nil
}
