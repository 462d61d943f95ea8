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

// masteredInterval is the interval from which a chunk counts as mastered.
const masteredInterval = 21

type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: wrap(db)}
}

func (r *statsRepository) ChunkStats(ctx context.Context, userID int64, today srs.Date) (*models.ChunkStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching chunk stats: user_id=%d, today=%s", userID, today)

	var stat models.ChunkStats
	err := r.db.GetContext(ctx, &stat, `
SELECT
    COUNT(*) AS total_chunks,
    COALESCE(AVG(ease_factor), 0) AS avg_ease_factor,
    COALESCE(AVG(interval_days), 0) AS avg_interval_days,
    COUNT(CASE WHEN next_due_date <= ? THEN 1 END) AS due_today,
    COUNT(CASE WHEN next_due_date > ? AND next_due_date <= ? THEN 1 END) AS due_this_week,
    COUNT(CASE WHEN interval_days >= ? THEN 1 END) AS mastered,
    COUNT(CASE WHEN ease_factor < 2.0 THEN 1 END) AS struggling,
    COUNT(CASE WHEN review_count = 0 AND interval_days = 0 THEN 1 END) AS never_reviewed,
    (SELECT COUNT(*) FROM review_history h WHERE h.user_id = ?) AS total_reviews,
    (
        SELECT CASE
            WHEN COUNT(*) > 0
            THEN ROUND(100.0 * SUM(CASE WHEN h.quality >= 3 THEN 1 ELSE 0 END) / COUNT(*), 1)
            ELSE 0
        END
        FROM review_history h WHERE h.user_id = ?
    ) AS accuracy
FROM chunks
WHERE user_id = ?
`, today, today, today.AddDays(7), masteredInterval, userID, userID, userID)
	if err != nil {
		log.Error("failed to get chunk stats: %v", err)
		return nil, err
	}
	return &stat, nil
}

func (r *statsRepository) QualityDistribution(ctx context.Context, userID int64) ([]models.QualityCount, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching quality distribution: user_id=%d", userID)

	counts := []models.QualityCount{}
	err := r.db.SelectContext(ctx, &counts, `
SELECT quality, COUNT(*) AS count
FROM review_history
WHERE user_id = ?
GROUP BY quality
ORDER BY quality ASC
`, userID)
	if err != nil {
		log.Error("failed to get quality distribution: %v", err)
		return nil, err
	}
	return counts, nil
}
