package repository

import (
	"context"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// ReviewFunc computes the reviewed chunk and its history row from the
// chunk as currently stored.
type ReviewFunc func(current models.Chunk) (models.Chunk, models.ReviewHistory, error)

// ChunkRepository handles chunk data access
type ChunkRepository interface {
	Get(ctx context.Context, userID, id int64) (*models.Chunk, error)
	List(ctx context.Context, filter models.ChunkFilter) ([]models.Chunk, error)
	Count(ctx context.Context, filter models.ChunkFilter) (int, error)
	// All returns every chunk of the user, oldest first.
	All(ctx context.Context, userID int64) ([]models.Chunk, error)
	// Due returns at most limit chunks due on or before today, most overdue
	// first, then least reviewed, then by id.
	Due(ctx context.Context, userID int64, today srs.Date, limit int) ([]models.Chunk, error)
	CountDue(ctx context.Context, userID int64, today srs.Date) (int, error)
	Insert(ctx context.Context, chunk models.Chunk) (int64, error)
	InsertBatch(ctx context.Context, chunks []models.Chunk) ([]int64, error)
	Update(ctx context.Context, chunk models.Chunk) error
	UpdateContent(ctx context.Context, userID int64, edits []models.ChunkEdit) (int, error)
	DeleteMany(ctx context.Context, userID int64, ids []int64) (int, error)
	ResetIntervals(ctx context.Context, userID int64, ids []int64, today srs.Date) (int, error)
	DeleteAll(ctx context.Context, userID int64) (int, error)
	InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error
	// ApplyReview reads the chunk, runs fn and stores its result together
	// with the history row in one transaction.
	ApplyReview(ctx context.Context, userID, id int64, fn ReviewFunc) (*models.Chunk, error)
}
