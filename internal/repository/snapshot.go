package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
)

const snapshotKeyPrefix = "game:"

// SnapshotRepository mirrors the latest state frame of every room for external readers.
type SnapshotRepository interface {
	Save(ctx context.Context, roomID string, frame []byte) error
	DeleteByID(ctx context.Context, roomID string) error
}

type dbSnapshot struct {
	client        *redis.Client
	channelPrefix string
}

func NewSnapshotRepository(client *redis.Client, channelPrefix string) SnapshotRepository {
	return &dbSnapshot{
		client:        client,
		channelPrefix: channelPrefix,
	}
}

// Save - stores the frame under game:<roomID> and publishes it on <prefix><roomID>.
func (that *dbSnapshot) Save(ctx context.Context, roomID string, frame []byte) error {
	pipe := that.client.TxPipeline()
	pipe.Set(ctx, snapshotKeyPrefix+roomID, frame, 0)
	pipe.Publish(ctx, that.channelPrefix+roomID, frame)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (that *dbSnapshot) DeleteByID(ctx context.Context, roomID string) error {
	deleted, err := that.client.Del(ctx, snapshotKeyPrefix+roomID).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot by id: %w", err)
	}

	if deleted == 0 {
		return fmt.Errorf("%w: room %s", apperror.ErrNotFound, roomID)
	}

	return nil
}
