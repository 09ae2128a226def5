package entity

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
)

const (
	MaxPlayers = 2

	// DrawMarker is the winner value of a round that ended without a line.
	DrawMarker = "draw"
)

// Channel is the outbound side of one live connection.
// Send must not block; a full or closed queue returns an error.
type Channel interface {
	Send(frame []byte) error
}

// Session is the authoritative state of one room's match.
//
// All methods except ID must be called with the session locked. The lock
// belongs to this session only, so unrelated rooms never contend.
type Session struct {
	sync.Mutex

	id       string
	board    Board
	players  []string
	marks    map[string]Mark
	turn     string
	channels map[string]Channel
}

// Snapshot is a copy of the session state safe to use outside the lock.
type Snapshot struct {
	Board   Board           `json:"board"`
	Players []string        `json:"players"`
	Turn    *string         `json:"turn"`
	Marks   map[string]Mark `json:"mark_map"`
}

func NewSession(id string) *Session {
	return &Session{
		id:       id,
		players:  make([]string, 0, MaxPlayers),
		marks:    make(map[string]Mark, MaxPlayers),
		channels: make(map[string]Channel, MaxPlayers),
	}
}

func (that *Session) ID() string {
	return that.id
}

// Join - registers a live channel for playerID, adding it to the roster and
// assigning a mark by join order when it is new.
func (that *Session) Join(playerID string, ch Channel) error {
	if _, ok := that.channels[playerID]; ok {
		return fmt.Errorf("%w: %s", apperror.ErrAlreadyConnected, playerID)
	}

	if !that.IsPlayer(playerID) {
		if len(that.players) >= MaxPlayers {
			return fmt.Errorf("%w: room %s", apperror.ErrSessionFull, that.id)
		}
		that.players = append(that.players, playerID)
	}

	if _, ok := that.marks[playerID]; !ok {
		switch len(that.marks) {
		case 0:
			that.marks[playerID] = PlayerX
		case 1:
			that.marks[playerID] = PlayerO
		}
	}

	that.channels[playerID] = ch

	return nil
}

// Leave - drops the channel of playerID if it is still ch. Roster and marks are kept.
func (that *Session) Leave(playerID string, ch Channel) bool {
	current, ok := that.channels[playerID]
	if !ok || current != ch {
		return false
	}

	delete(that.channels, playerID)

	return true
}

func (that *Session) LiveCount() int {
	return len(that.channels)
}

// Start - gives the turn to the first roster entry once both players are connected.
// It reports whether the game started.
func (that *Session) Start() bool {
	if len(that.channels) != MaxPlayers {
		return false
	}

	that.turn = that.players[0]

	return true
}

// ApplyMove - validates and records a move. On an ongoing outcome the turn passes to
// the other player; terminal outcomes leave the board as is until Reset.
func (that *Session) ApplyMove(playerID string, cell int) (Outcome, error) {
	if !that.IsPlayer(playerID) {
		return Ongoing, apperror.ErrNotParticipant
	}

	if that.turn != playerID {
		return Ongoing, apperror.ErrNotYourTurn
	}

	if !IsValidCell(cell) {
		return Ongoing, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if that.board[cell] != EmptyCell {
		return Ongoing, fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	that.board[cell] = that.marks[playerID]

	outcome := DetermineOutcome(that.board)
	if !outcome.IsTerminal() {
		that.turn = that.Opponent(playerID)
	}

	return outcome, nil
}

// Reset - starts a fresh round with the same roster and marks.
func (that *Session) Reset() {
	that.board = Board{}

	if len(that.players) > 0 {
		that.turn = that.players[0]
	} else {
		that.turn = ""
	}
}

func (that *Session) IsPlayer(playerID string) bool {
	for _, id := range that.players {
		if id == playerID {
			return true
		}
	}

	return false
}

// Opponent - returns the other roster member, or "" when there is none.
func (that *Session) Opponent(playerID string) string {
	for _, id := range that.players {
		if id != playerID {
			return id
		}
	}

	return ""
}

// PlayerByMark - resolves a mark back to the player that owns it.
func (that *Session) PlayerByMark(mark Mark) string {
	for id, m := range that.marks {
		if m == mark {
			return id
		}
	}

	return ""
}

func (that *Session) Mark(playerID string) Mark {
	return that.marks[playerID]
}

func (that *Session) Turn() string {
	return that.turn
}

// Channels - returns a copy of the live channels keyed by player.
func (that *Session) Channels() map[string]Channel {
	channels := make(map[string]Channel, len(that.channels))
	for id, ch := range that.channels {
		channels[id] = ch
	}

	return channels
}

func (that *Session) Snapshot() Snapshot {
	snapshot := Snapshot{
		Board:   that.board,
		Players: make([]string, len(that.players)),
		Marks:   make(map[string]Mark, len(that.marks)),
	}

	copy(snapshot.Players, that.players)

	if that.turn != "" {
		turn := that.turn
		snapshot.Turn = &turn
	}

	for id, mark := range that.marks {
		snapshot.Marks[id] = mark
	}

	return snapshot
}
