package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
)

const roomsFlightKey = "rooms"

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Room is one entry of the room service listing.
type Room struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Players []string `json:"players"`
	Status  string   `json:"status"`
}

type Options struct {
	UserServiceURL  string
	UserTimeout     time.Duration
	RoomServiceURL  string
	RoomTimeout     time.Duration
	IdentityTTL     time.Duration
	CleanupInterval time.Duration
}

// Client talks to the user and room services. Known identities are cached;
// concurrent room listings share one request.
type Client struct {
	userURL    string
	roomURL    string
	userClient *http.Client
	roomClient *http.Client

	identities *cache.Cache
	rooms      singleflight.Group
}

func New(opts Options) *Client {
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = time.Minute
	}

	return &Client{
		userURL:    strings.TrimRight(opts.UserServiceURL, "/"),
		roomURL:    strings.TrimRight(opts.RoomServiceURL, "/"),
		userClient: &http.Client{Timeout: opts.UserTimeout},
		roomClient: &http.Client{Timeout: opts.RoomTimeout},
		identities: cache.New(opts.IdentityTTL, cleanup),
	}
}

// IdentityExists - asks the user service whether playerID is registered.
// Only positive answers are cached.
func (that *Client) IdentityExists(ctx context.Context, playerID string) (bool, error) {
	if _, found := that.identities.Get(playerID); found {
		return true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.userURL+"/users/"+url.PathEscape(playerID), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build user request: %w", err)
	}

	resp, err := that.userClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: user service: %w", apperror.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		that.identities.SetDefault(playerID, struct{}{})
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: user service: %w %d", apperror.ErrCollaboratorUnavailable, ErrUnexpectedStatus, resp.StatusCode)
	}
}

// RoomMembers - returns the players listed for roomID, or nil when the room is unknown.
// The shared listing request is bounded by the room timeout, not by any single caller.
func (that *Client) RoomMembers(ctx context.Context, roomID string) ([]string, error) {
	flight := that.rooms.DoChan(roomsFlightKey, func() (interface{}, error) {
		return that.listRooms(context.WithoutCancel(ctx))
	})

	var result singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: room service: %w", apperror.ErrCollaboratorUnavailable, ctx.Err())
	case result = <-flight:
	}

	if result.Err != nil {
		return nil, result.Err
	}

	for _, room := range result.Val.([]Room) {
		if room.ID == roomID {
			return room.Players, nil
		}
	}

	return nil, nil
}

func (that *Client) listRooms(ctx context.Context) ([]Room, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.roomURL+"/rooms", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rooms request: %w", err)
	}

	resp, err := that.roomClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: room service: %w", apperror.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: room service: %w %d", apperror.ErrCollaboratorUnavailable, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: room service: %w", apperror.ErrCollaboratorUnavailable, err)
	}

	// an empty listing comes back as {"message": "..."} instead of []
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, nil
	}

	var rooms []Room
	if err = json.Unmarshal(body, &rooms); err != nil {
		return nil, fmt.Errorf("%w: room service: failed to decode rooms: %w", apperror.ErrCollaboratorUnavailable, err)
	}

	return rooms, nil
}
