package service

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/entity"
)

type snapshotMirror interface {
	Enqueue(roomID string, frame []byte)
}

// Broadcaster hands serialized frames to the send queues of live channels.
// Delivery is best effort: a failing channel never stops the others and never
// changes session state.
type Broadcaster struct {
	logger *slog.Logger
	mirror snapshotMirror
}

// NewBroadcaster - mirror may be nil when no external readers are configured.
func NewBroadcaster(logger *slog.Logger, mirror snapshotMirror) *Broadcaster {
	return &Broadcaster{
		logger: logger.With("component", "broadcaster"),
		mirror: mirror,
	}
}

// BroadcastState - sends the current snapshot to every live channel of the session.
// The caller must hold the session lock.
func (that *Broadcaster) BroadcastState(session *entity.Session, message string, winner *string) {
	stateFrame := entity.NewStateFrame(session.Snapshot(), message, winner)

	frame, err := json.Marshal(stateFrame)
	if err != nil {
		that.logger.Error("failed to marshal state frame", "roomID", session.ID(), "error", err)
		return
	}

	that.fanOut(session.ID(), session.Channels(), frame)

	if that.mirror != nil {
		that.mirror.Enqueue(session.ID(), frame)
	}
}

// NotifyOthers - sends an info frame to every live channel except the one of playerID.
// The caller must hold the session lock.
func (that *Broadcaster) NotifyOthers(session *entity.Session, playerID, message string) {
	frame, err := json.Marshal(entity.NewInfoFrame(message))
	if err != nil {
		that.logger.Error("failed to marshal info frame", "roomID", session.ID(), "error", err)
		return
	}

	channels := session.Channels()
	delete(channels, playerID)

	that.fanOut(session.ID(), channels, frame)
}

// Send - delivers a single frame to one channel.
func (that *Broadcaster) Send(ch entity.Channel, payload any) error {
	frame, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	if err = ch.Send(frame); err != nil {
		return fmt.Errorf("failed to send frame: %w", err)
	}

	return nil
}

func (that *Broadcaster) fanOut(roomID string, channels map[string]entity.Channel, frame []byte) {
	for playerID, ch := range channels {
		if err := ch.Send(frame); err != nil {
			that.logger.Debug("dropped frame", "roomID", roomID, "playerID", playerID, "error", err)
		}
	}
}
