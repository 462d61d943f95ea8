package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/srs"
)

type queueRepository struct {
	db *sqlx.DB
}

// NewQueueRepository creates a new QueueRepository implementation
func NewQueueRepository(db *sql.DB) repository.QueueRepository {
	return &queueRepository{db: wrap(db)}
}

func (r *queueRepository) Get(ctx context.Context, userID int64, date srs.Date) (*models.DailyQueue, error) {
	log := logger.FromContext(ctx).WithPrefix("queue_repo")
	log.Debug("getting daily queue: user_id=%d, date=%s", userID, date)

	entries := []models.QueueEntry{}
	err := r.db.SelectContext(ctx, &entries, `
SELECT chunk_id, position, done
FROM daily_queues
WHERE user_id = ? AND queue_date = ?
ORDER BY position ASC
`, userID, date)
	if err != nil {
		log.Error("failed to get daily queue: %v", err)
		return nil, err
	}
	if len(entries) == 0 {
		// A built queue can be empty; queue_markers tells it apart from
		// a queue that was never built.
		var built int
		if err := r.db.GetContext(ctx, &built, `
SELECT COUNT(*) FROM queue_markers WHERE user_id = ? AND queue_date = ?
`, userID, date); err != nil {
			log.Error("failed to check queue marker: %v", err)
			return nil, err
		}
		if built == 0 {
			return nil, repository.ErrNotFound
		}
	}
	return &models.DailyQueue{UserID: userID, QueueDate: date, Entries: entries}, nil
}

func (r *queueRepository) Replace(ctx context.Context, userID int64, date srs.Date, ids []int64) error {
	log := logger.FromContext(ctx).WithPrefix("queue_repo")
	log.Debug("replacing daily queue: user_id=%d, date=%s, size=%d", userID, date, len(ids))

	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_queues WHERE user_id = ?`, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_markers WHERE user_id = ?`, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO queue_markers (user_id, queue_date) VALUES (?, ?)`, userID, date); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		q := sqlBuilder.Insert("daily_queues").Columns("user_id", "queue_date", "chunk_id", "position")
		for i, id := range ids {
			q = q.Values(userID, date, id, i)
		}
		sqlStr, args, err := q.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, sqlStr, args...)
		return err
	})
	if err != nil {
		log.Error("failed to replace daily queue: %v", err)
	}
	return err
}

func (r *queueRepository) MarkDone(ctx context.Context, userID int64, date srs.Date, chunkID int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("queue_repo")
	log.Debug("marking queue entry done: user_id=%d, date=%s, chunk_id=%d", userID, date, chunkID)

	res, err := r.db.ExecContext(ctx, `
UPDATE daily_queues SET done = 1
WHERE user_id = ? AND queue_date = ? AND chunk_id = ? AND done = 0
`, userID, date, chunkID)
	if err != nil {
		log.Error("failed to mark queue entry done: %v", err)
		return false, err
	}
	n, err := affected(res)
	return n > 0, err
}

func (r *queueRepository) DeleteForUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx).WithPrefix("queue_repo")
	log.Debug("deleting daily queues: user_id=%d", userID)

	return tx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_queues WHERE user_id = ?`, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM queue_markers WHERE user_id = ?`, userID)
		return err
	})
}
