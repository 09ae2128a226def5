package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
)

type fakeIdentities struct {
	known map[string]bool
	err   error
}

func (that *fakeIdentities) IdentityExists(_ context.Context, playerID string) (bool, error) {
	return that.known[playerID], that.err
}

type fakeRooms struct {
	members map[string][]string
	err     error
	calls   int
}

func (that *fakeRooms) RoomMembers(_ context.Context, roomID string) ([]string, error) {
	that.calls++

	return that.members[roomID], that.err
}

func TestAdmissionService_Admit(t *testing.T) {
	unavailable := errors.New("connection refused")

	tests := []struct {
		name       string
		identities *fakeIdentities
		rooms      *fakeRooms
		playerID   string
		wantErr    error
	}{
		{
			name:       "Known member is admitted",
			identities: &fakeIdentities{known: map[string]bool{"p1": true}},
			rooms:      &fakeRooms{members: map[string][]string{"room1": {"p1", "p2"}}},
			playerID:   "p1",
		},
		{
			name:       "Unknown user",
			identities: &fakeIdentities{known: map[string]bool{}},
			rooms:      &fakeRooms{members: map[string][]string{"room1": {"p1"}}},
			playerID:   "p1",
			wantErr:    apperror.ErrUnknownPlayer,
		},
		{
			name:       "User outside the room",
			identities: &fakeIdentities{known: map[string]bool{"p3": true}},
			rooms:      &fakeRooms{members: map[string][]string{"room1": {"p1", "p2"}}},
			playerID:   "p3",
			wantErr:    apperror.ErrNotRoomMember,
		},
		{
			name:       "Unknown room",
			identities: &fakeIdentities{known: map[string]bool{"p1": true}},
			rooms:      &fakeRooms{},
			playerID:   "p1",
			wantErr:    apperror.ErrNotRoomMember,
		},
		{
			name:       "User service down fails closed",
			identities: &fakeIdentities{err: unavailable},
			rooms:      &fakeRooms{members: map[string][]string{"room1": {"p1"}}},
			playerID:   "p1",
			wantErr:    apperror.ErrCollaboratorUnavailable,
		},
		{
			name:       "Room service down fails closed",
			identities: &fakeIdentities{known: map[string]bool{"p1": true}},
			rooms:      &fakeRooms{err: unavailable},
			playerID:   "p1",
			wantErr:    apperror.ErrCollaboratorUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admission := NewAdmissionService(discardLogger(), tt.identities, tt.rooms)

			err := admission.Admit(context.Background(), "room1", tt.playerID)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, apperror.IsAdmission(err))
		})
	}
}

func TestAdmissionService_SkipsRoomsForUnknownUser(t *testing.T) {
	rooms := &fakeRooms{members: map[string][]string{"room1": {"ghost"}}}
	admission := NewAdmissionService(discardLogger(), &fakeIdentities{}, rooms)

	err := admission.Admit(context.Background(), "room1", "ghost")

	require.ErrorIs(t, err, apperror.ErrUnknownPlayer)
	assert.Zero(t, rooms.calls)
}
