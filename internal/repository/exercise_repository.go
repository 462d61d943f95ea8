package repository

import (
	"context"

	"github.com/chunkrecall/trainer/internal/models"
)

// ExerciseRepository handles generated practice questions
type ExerciseRepository interface {
	Insert(ctx context.Context, e models.Exercise) (int64, error)
	Latest(ctx context.Context, userID, chunkID int64) (*models.Exercise, error)
	SaveFeedback(ctx context.Context, id int64, userAnswer, feedback string, score *int) error
}

// ImportRepository tracks background spreadsheet imports
type ImportRepository interface {
	Create(ctx context.Context, rec models.ImportRecord) (int64, error)
	MarkRunning(ctx context.Context, id int64) error
	Finish(ctx context.Context, id int64, imported int, importErr error) error
	Recent(ctx context.Context, userID int64, limit int) ([]models.ImportRecord, error)
}
