package websocket_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/repository"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/service"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-game-rules/transport/websocket"
)

const readTimeout = 2 * time.Second

type admitFunc func(ctx context.Context, roomID, playerID string) error

func (f admitFunc) Admit(ctx context.Context, roomID, playerID string) error {
	return f(ctx, roomID, playerID)
}

type frame struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Board   []string          `json:"board"`
	Players []string          `json:"players"`
	Turn    *string           `json:"turn"`
	Marks   map[string]string `json:"mark_map"`
	Winner  *string           `json:"winner"`
}

func newTestServer(t *testing.T, admission admitFunc) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	broadcaster := service.NewBroadcaster(logger, nil)
	gamePlay := service.NewGamePlayService(logger, broadcaster)
	gameUseCase := usecase.NewGameUseCase(admission, repository.NewSessionRepository(), gamePlay, nil)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(websocket.New(logger, gameUseCase, 16).Handler(ctx))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func allowAll(context.Context, string, string) error { return nil }

func dial(t *testing.T, baseURL, roomID, playerID string) *gorilla.Conn {
	t.Helper()

	conn, _, err := gorilla.DefaultDialer.Dial(baseURL+"/ws/"+roomID+"/"+playerID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *gorilla.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var result frame
	require.NoError(t, json.Unmarshal(payload, &result))

	return result
}

func move(t *testing.T, conn *gorilla.Conn, cell int) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{"action": "move", "index": cell}))
}

// startGame connects p1 and p2 to roomID and drains the opening frames.
func startGame(t *testing.T, baseURL, roomID string) (*gorilla.Conn, *gorilla.Conn) {
	t.Helper()

	p1 := dial(t, baseURL, roomID, "p1")
	waiting := readFrame(t, p1)
	require.Equal(t, "info", waiting.Type)
	require.Equal(t, "Waiting for opponent...", waiting.Message)

	p2 := dial(t, baseURL, roomID, "p2")
	for _, conn := range []*gorilla.Conn{p1, p2} {
		started := readFrame(t, conn)
		require.Equal(t, "state", started.Type)
		require.Equal(t, "Game started. p1 goes first.", started.Message)
	}

	return p1, p2
}

func TestServer_FullRound(t *testing.T) {
	baseURL := newTestServer(t, allowAll)

	// Given: two connected players
	p1, p2 := startGame(t, baseURL, "room1")

	// When: p1 completes the top row
	moves := []struct {
		conn *gorilla.Conn
		cell int
	}{{p1, 0}, {p2, 3}, {p1, 1}, {p2, 4}}

	for _, m := range moves {
		move(t, m.conn, m.cell)
		readFrame(t, p1)
		readFrame(t, p2)
	}

	move(t, p1, 2)

	// Then: both players see the winning board
	for _, conn := range []*gorilla.Conn{p1, p2} {
		result := readFrame(t, conn)
		assert.Equal(t, "state", result.Type)
		assert.Equal(t, "Player p1 (X) wins!", result.Message)
		require.NotNil(t, result.Winner)
		assert.Equal(t, "p1", *result.Winner)
		assert.Equal(t, []string{"X", "X", "X", "O", "O", "", "", "", ""}, result.Board)
		assert.Equal(t, []string{"p1", "p2"}, result.Players)
		assert.Equal(t, map[string]string{"p1": "X", "p2": "O"}, result.Marks)
	}

	// And: the next round starts with p1 again
	move(t, p2, 0)
	rejected := readFrame(t, p2)
	assert.Equal(t, "error", rejected.Type)
	assert.Equal(t, "not your turn", rejected.Message)

	move(t, p1, 8)
	next := readFrame(t, p1)
	assert.Equal(t, "Player p1 moved. Next: p2", next.Message)
	assert.Nil(t, next.Winner)
}

func TestServer_ProtocolErrorsKeepConnection(t *testing.T) {
	baseURL := newTestServer(t, allowAll)
	p1, p2 := startGame(t, baseURL, "room1")

	// When: p1 sends garbage
	require.NoError(t, p1.WriteMessage(gorilla.TextMessage, []byte("not json")))
	assert.Equal(t, frame{Type: "error", Message: "invalid json"}, readFrame(t, p1))

	require.NoError(t, p1.WriteJSON(map[string]any{"action": "jump"}))
	assert.Equal(t, frame{Type: "error", Message: "unknown action"}, readFrame(t, p1))

	require.NoError(t, p1.WriteJSON(map[string]any{"action": "move", "index": "four"}))
	assert.Equal(t, frame{Type: "error", Message: "invalid cell index"}, readFrame(t, p1))

	// Then: the connection still plays
	move(t, p1, 4)
	assert.Equal(t, "Player p1 moved. Next: p2", readFrame(t, p1).Message)
	assert.Equal(t, "Player p1 moved. Next: p2", readFrame(t, p2).Message)
}

func TestServer_AdmissionFailureClosesConnection(t *testing.T) {
	baseURL := newTestServer(t, func(_ context.Context, _, playerID string) error {
		if playerID == "stranger" {
			return apperror.ErrNotRoomMember
		}
		return nil
	})

	conn := dial(t, baseURL, "room1", "stranger")

	// Then: one error frame, then the socket closes
	result := readFrame(t, conn)
	assert.Equal(t, "error", result.Type)
	assert.Equal(t, "user not in the specified room", result.Message)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestServer_DuplicateConnectionRejected(t *testing.T) {
	baseURL := newTestServer(t, allowAll)

	first := dial(t, baseURL, "room1", "p1")
	readFrame(t, first)

	// When: the same player connects again
	second := dial(t, baseURL, "room1", "p1")

	// Then: the new socket is refused and the first one keeps working
	result := readFrame(t, second)
	assert.Equal(t, "error", result.Type)
	assert.Equal(t, "player already connected", result.Message)

	p2 := dial(t, baseURL, "room1", "p2")
	assert.Equal(t, "Game started. p1 goes first.", readFrame(t, first).Message)
	assert.Equal(t, "Game started. p1 goes first.", readFrame(t, p2).Message)
}

func TestServer_DisconnectNotifiesOpponent(t *testing.T) {
	baseURL := newTestServer(t, allowAll)
	p1, p2 := startGame(t, baseURL, "room1")

	// When: p2 goes away
	require.NoError(t, p2.Close())

	// Then: p1 is told
	assert.Equal(t, frame{Type: "info", Message: "Opponent p2 disconnected."}, readFrame(t, p1))

	// And: p2 can come back and the round resumes with the current turn
	back := dial(t, baseURL, "room1", "p2")
	for _, conn := range []*gorilla.Conn{p1, back} {
		result := readFrame(t, conn)
		assert.Equal(t, "Game started. p1 goes first.", result.Message)
	}
}
