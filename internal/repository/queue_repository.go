package repository

import (
	"context"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// QueueRepository handles the per-day practice queues
type QueueRepository interface {
	// Get returns the queue for the day, or ErrNotFound when none was built.
	Get(ctx context.Context, userID int64, date srs.Date) (*models.DailyQueue, error)
	// Replace stores ids as the queue for the day, dropping any previous one.
	Replace(ctx context.Context, userID int64, date srs.Date, ids []int64) error
	MarkDone(ctx context.Context, userID int64, date srs.Date, chunkID int64) (bool, error)
	DeleteForUser(ctx context.Context, userID int64) error
}
