package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

func stateFrame(board entity.Board, turn *string, winner *string, message string) entity.StateFrame {
	return entity.NewStateFrame(entity.Snapshot{
		Board:   board,
		Players: []string{"p1", "p2"},
		Turn:    turn,
		Marks:   map[string]entity.Mark{"p1": entity.PlayerX, "p2": entity.PlayerO},
	}, message, winner)
}

func TestRender(t *testing.T) {
	p1 := "p1"

	t.Run("Board with legend and own turn", func(t *testing.T) {
		var out bytes.Buffer

		board := entity.Board{entity.PlayerX, "", "", "", entity.PlayerO}
		Render(&out, stateFrame(board, &p1, nil, "Player p2 moved. Next: p1"), "p1")

		assert.Equal(t, strings.Join([]string{
			" X | 1 | 2",
			"---+---+---",
			" 3 | O | 5",
			"---+---+---",
			" 6 | 7 | 8",
			"Player p2 moved. Next: p1",
			"Your turn (X)",
			"",
		}, "\n"), out.String())
	})

	t.Run("Opponent turn", func(t *testing.T) {
		var out bytes.Buffer

		Render(&out, stateFrame(entity.Board{}, &p1, nil, "Game started. p1 goes first."), "p2")

		assert.True(t, strings.HasSuffix(out.String(), "Waiting for p1\n"))
	})

	t.Run("Finished round has no turn line", func(t *testing.T) {
		var out bytes.Buffer

		board := entity.Board{entity.PlayerX, entity.PlayerX, entity.PlayerX, entity.PlayerO, entity.PlayerO}
		Render(&out, stateFrame(board, &p1, &p1, "Player p1 (X) wins!"), "p1")

		assert.True(t, strings.HasSuffix(out.String(), "Player p1 (X) wins!\n"))
	})

	t.Run("Info and error frames", func(t *testing.T) {
		var out bytes.Buffer

		Render(&out, entity.StateFrame{Type: entity.TypeInfo, Message: "Waiting for opponent..."}, "p1")
		Render(&out, entity.StateFrame{Type: entity.TypeError, Message: "not your turn"}, "p1")

		assert.Equal(t, "Waiting for opponent...\nerror: not your turn\n", out.String())
	})
}

func TestClient_Run(t *testing.T) {
	received := make(chan map[string]any, 1)
	upgrader := websocket.Upgrader{}

	// Given: a server that greets, takes one move and closes
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/room1/p1", r.URL.Path)

		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		p1 := "p1"
		greeting, _ := json.Marshal(stateFrame(entity.Board{}, &p1, nil, "Game started. p1 goes first."))
		_ = conn.WriteMessage(websocket.TextMessage, greeting)

		var command map[string]any
		if assert.NoError(t, conn.ReadJSON(&command)) {
			received <- command
		}

		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	client, err := Dial(ctx, strings.TrimPrefix(srv.URL, "http://"), "room1", "p1", &out)
	require.NoError(t, err)

	in, typed := io.Pipe()
	defer typed.Close()

	go func() {
		_, _ = typed.Write([]byte("4\n"))
	}()

	// When: the player types a cell
	require.NoError(t, client.Run(ctx, in))

	// Then: a move went out and the greeting was printed
	command := <-received
	assert.Equal(t, "move", command["action"])
	assert.EqualValues(t, 4, command["index"])
	assert.Contains(t, out.String(), "Your turn (X)")
}

func TestScanLines_StopsWhenDone(t *testing.T) {
	lines := make(chan string)
	done := make(chan struct{})
	finished := make(chan struct{})

	// Given: input with lines nobody reads
	go func() {
		defer close(finished)
		scanLines(strings.NewReader("1\n2\n3\n"), lines, done)
	}()

	assert.Equal(t, "1", <-lines)

	// When: the reader goes away
	close(done)

	// Then: the forwarder returns instead of blocking on the next line
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("line forwarder still blocked")
	}

	_, open := <-lines
	assert.False(t, open)
}
