package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-game-rules/internal/apperror"
)

type snapshotRepo interface {
	Save(ctx context.Context, roomID string, frame []byte) error
	DeleteByID(ctx context.Context, roomID string) error
}

type mirrorJob struct {
	roomID string
	frame  []byte // nil means delete
}

// SnapshotMirror copies state frames to the snapshot repository off the session lock.
// Jobs for all rooms go through one ordered queue, so a delete is never overtaken
// by an earlier save of the same room.
type SnapshotMirror struct {
	logger *slog.Logger
	repo   snapshotRepo
	jobs   chan mirrorJob
}

func NewSnapshotMirror(logger *slog.Logger, repo snapshotRepo, buffer int) *SnapshotMirror {
	if buffer <= 0 {
		buffer = 256
	}

	return &SnapshotMirror{
		logger: logger.With("component", "snapshotMirror"),
		repo:   repo,
		jobs:   make(chan mirrorJob, buffer),
	}
}

// Enqueue - schedules a save without blocking; the frame is dropped when the queue is full.
func (that *SnapshotMirror) Enqueue(roomID string, frame []byte) {
	that.push(mirrorJob{roomID: roomID, frame: frame})
}

// EnqueueDelete - schedules removal of the mirrored frame of roomID.
func (that *SnapshotMirror) EnqueueDelete(roomID string) {
	that.push(mirrorJob{roomID: roomID})
}

// Run - drains the queue until ctx is canceled.
func (that *SnapshotMirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-that.jobs:
			that.handle(ctx, job)
		}
	}
}

func (that *SnapshotMirror) handle(ctx context.Context, job mirrorJob) {
	log := that.logger.With("roomID", job.roomID)

	if job.frame == nil {
		if err := that.repo.DeleteByID(ctx, job.roomID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
			log.Error("failed to delete mirrored snapshot", "error", err)
		}
		return
	}

	if err := that.repo.Save(ctx, job.roomID, job.frame); err != nil {
		log.Error("failed to mirror snapshot", "error", err)
	}
}

func (that *SnapshotMirror) push(job mirrorJob) {
	select {
	case that.jobs <- job:
	default:
		that.logger.Warn("mirror queue full, dropping job", "roomID", job.roomID)
	}
}
