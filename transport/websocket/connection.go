package websocket

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("send queue full")
)

// connection is one accepted socket. Frames queued with Send are written by
// writePump, so a slow peer only ever fills its own queue.
type connection struct {
	id     string
	logger *slog.Logger
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan []byte
	closed bool
	done   chan struct{}
}

func newConnection(id string, logger *slog.Logger, conn *websocket.Conn, queueSize int) *connection {
	if queueSize <= 0 {
		queueSize = 16
	}

	return &connection{
		id:     id,
		logger: logger,
		conn:   conn,
		send:   make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
}

// Send - queues a frame without blocking.
func (that *connection) Send(frame []byte) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return fmt.Errorf("%w: %s", ErrConnectionClosed, that.id)
	}

	select {
	case that.send <- frame:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrSendQueueFull, that.id)
	}
}

// close - stops accepting frames; writePump flushes what is queued, then closes the socket.
func (that *connection) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.closed {
		that.closed = true
		close(that.send)
	}
}

// wait - blocks until writePump has released the socket.
func (that *connection) wait() {
	<-that.done
}

// writePump pumps queued frames to the websocket connection.
func (that *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
		close(that.done)
	}()

	for {
		select {
		case frame, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				that.logger.Debug("failed to write frame", "error", err)
				return
			}

		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
