package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
)

type exerciseRepository struct {
	db *sqlx.DB
}

// NewExerciseRepository creates a new ExerciseRepository implementation
func NewExerciseRepository(db *sql.DB) repository.ExerciseRepository {
	return &exerciseRepository{db: wrap(db)}
}

func (r *exerciseRepository) Insert(ctx context.Context, e models.Exercise) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")
	log.Debug("inserting exercise: user_id=%d, chunk_id=%d", e.UserID, e.ChunkID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO exercises (user_id, chunk_id, question, answer_key)
VALUES (?, ?, ?, ?)
`, e.UserID, e.ChunkID, e.Question, e.AnswerKey)
	if err != nil {
		log.Error("failed to insert exercise: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *exerciseRepository) Latest(ctx context.Context, userID, chunkID int64) (*models.Exercise, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")
	log.Debug("fetching latest exercise: user_id=%d, chunk_id=%d", userID, chunkID)

	var e models.Exercise
	err := r.db.GetContext(ctx, &e, `
SELECT id, user_id, chunk_id, question, answer_key, user_answer, feedback, score, created_at
FROM exercises
WHERE user_id = ? AND chunk_id = ?
ORDER BY id DESC
LIMIT 1
`, userID, chunkID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get latest exercise: %v", err)
		}
		return nil, notFound(err)
	}
	return &e, nil
}

func (r *exerciseRepository) SaveFeedback(ctx context.Context, id int64, userAnswer, feedback string, score *int) error {
	log := logger.FromContext(ctx).WithPrefix("exercise_repo")
	log.Debug("saving exercise feedback: id=%d", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE exercises SET user_answer = ?, feedback = ?, score = ?
WHERE id = ?
`, userAnswer, feedback, score, id)
	if err != nil {
		log.Error("failed to save exercise feedback: %v", err)
		return err
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
