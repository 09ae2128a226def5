package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
)

type AdmissionService interface {
	Admit(ctx context.Context, roomID, playerID string) error
}

type identityChecker interface {
	IdentityExists(ctx context.Context, playerID string) (bool, error)
}

type roomDirectory interface {
	RoomMembers(ctx context.Context, roomID string) ([]string, error)
}

type admissionService struct {
	logger     *slog.Logger
	identities identityChecker
	rooms      roomDirectory
}

func NewAdmissionService(logger *slog.Logger, identities identityChecker, rooms roomDirectory) AdmissionService {
	return &admissionService{
		logger:     logger.With("component", "admission"),
		identities: identities,
		rooms:      rooms,
	}
}

// Admit - checks that playerID is a known user listed in roomID. Any collaborator
// failure rejects the player.
func (that *admissionService) Admit(ctx context.Context, roomID, playerID string) error {
	log := that.logger.With("method", "Admit", "roomID", roomID, "playerID", playerID)

	exists, err := that.identities.IdentityExists(ctx, playerID)
	if err != nil {
		log.Warn("identity lookup failed", "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrCollaboratorUnavailable, err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, playerID)
	}

	members, err := that.rooms.RoomMembers(ctx, roomID)
	if err != nil {
		log.Warn("room lookup failed", "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrCollaboratorUnavailable, err)
	}

	for _, member := range members {
		if member == playerID {
			return nil
		}
	}

	return fmt.Errorf("%w: %s not in %s", apperror.ErrNotRoomMember, playerID, roomID)
}
