package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

const (
	writeWait = 5 * time.Second
	quit      = "q"
)

type move struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

// Client is a terminal player connected to one room.
type Client struct {
	conn     *websocket.Conn
	playerID string
	out      io.Writer
}

// Dial - opens the game socket of roomID as playerID. addr is host:port or a ws:// URL.
func Dial(ctx context.Context, addr, roomID, playerID string, out io.Writer) (*Client, error) {
	base := addr
	if !strings.Contains(base, "://") {
		base = "ws://" + base
	}

	target := strings.TrimRight(base, "/") + "/ws/" + url.PathEscape(roomID) + "/" + url.PathEscape(playerID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}

	return &Client{conn: conn, playerID: playerID, out: out}, nil
}

// Run - prints every frame from the server and sends moves typed on in, until
// the server closes the socket, in is exhausted, or the player types q.
func (that *Client) Run(ctx context.Context, in io.Reader) error {
	defer that.conn.Close()

	closed := make(chan error, 1)
	go func() {
		closed <- that.readLoop()
	}()

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	go scanLines(in, lines, done)

	for {
		select {
		case <-ctx.Done():
			return that.leave()
		case err := <-closed:
			return err
		case line, ok := <-lines:
			if !ok || line == quit {
				return that.leave()
			}

			if line == "" {
				continue
			}

			cell, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintf(that.out, "enter a cell 0-%d or %s to quit\n", entity.BoardSize-1, quit)
				continue
			}

			if err = that.send(move{Action: entity.ActionMove, Index: cell}); err != nil {
				return err
			}
		}
	}
}

// scanLines - forwards trimmed lines of in until it ends or done is closed.
func scanLines(in io.Reader, lines chan<- string, done <-chan struct{}) {
	defer close(lines)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- strings.TrimSpace(scanner.Text()):
		case <-done:
			return
		}
	}
}

func (that *Client) readLoop() error {
	for {
		_, payload, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		var frame entity.StateFrame
		if err = json.Unmarshal(payload, &frame); err != nil {
			fmt.Fprintf(that.out, "unreadable frame: %s\n", payload)
			continue
		}

		Render(that.out, frame, that.playerID)
	}
}

func (that *Client) send(command move) error {
	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := that.conn.WriteJSON(command); err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}

	return nil
}

func (that *Client) leave() error {
	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

	err := that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

// Render - writes a frame for a human. Empty cells show their index.
func Render(w io.Writer, frame entity.StateFrame, playerID string) {
	switch frame.Type {
	case entity.TypeError:
		fmt.Fprintf(w, "error: %s\n", frame.Message)
		return
	case entity.TypeInfo:
		fmt.Fprintln(w, frame.Message)
		return
	}

	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			index := row*3 + col
			cells[col] = string(frame.Board[index])
			if frame.Board[index] == entity.EmptyCell {
				cells[col] = strconv.Itoa(index)
			}
		}

		fmt.Fprintf(w, " %s\n", strings.Join(cells, " | "))
		if row < 2 {
			fmt.Fprintln(w, "---+---+---")
		}
	}

	fmt.Fprintln(w, frame.Message)

	switch {
	case frame.Winner != nil:
	case frame.Turn == nil:
	case *frame.Turn == playerID:
		fmt.Fprintf(w, "Your turn (%s)\n", frame.Marks[playerID])
	default:
		fmt.Fprintf(w, "Waiting for %s\n", *frame.Turn)
	}
}
