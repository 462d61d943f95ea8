package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/srs"
)

var chunkColumns = []string{
	"id", "user_id", "jp_prompt", "en_answer", "ease_factor", "interval_days",
	"next_due_date", "review_count", "created_at", "updated_at",
}

// Allowed ORDER BY columns for List.
var chunkOrderColumns = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"next_due_date": true,
	"ease_factor":   true,
	"interval_days": true,
	"review_count":  true,
	"jp_prompt":     true,
}

type chunkRepository struct {
	db *sqlx.DB
}

// NewChunkRepository creates a new ChunkRepository implementation
func NewChunkRepository(db *sql.DB) repository.ChunkRepository {
	return &chunkRepository{db: wrap(db)}
}

func (r *chunkRepository) Get(ctx context.Context, userID, id int64) (*models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("getting chunk: user_id=%d, id=%d", userID, id)

	c, err := getChunk(ctx, r.db, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("chunk not found: id=%d", id)
		} else {
			log.Error("failed to get chunk: %v", err)
		}
		return nil, err
	}
	return c, nil
}

func getChunk(ctx context.Context, q sqlx.QueryerContext, userID, id int64) (*models.Chunk, error) {
	query, args, err := sqlBuilder.Select(chunkColumns...).
		From("chunks").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var c models.Chunk
	if err := sqlx.GetContext(ctx, q, &c, query, args...); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func applyChunkFilter(q squirrel.SelectBuilder, filter models.ChunkFilter) squirrel.SelectBuilder {
	q = q.Where(squirrel.Eq{"user_id": filter.UserID})
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"jp_prompt": pattern},
			squirrel.Like{"en_answer": pattern},
		})
	}
	if filter.DueOnly {
		q = q.Where(squirrel.LtOrEq{"next_due_date": filter.Today})
	}
	return q
}

func (r *chunkRepository) List(ctx context.Context, filter models.ChunkFilter) ([]models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("listing chunks with filter: user_id=%d, search=%q, due_only=%t", filter.UserID, filter.Search, filter.DueOnly)

	query := applyChunkFilter(sqlBuilder.Select(chunkColumns...).From("chunks"), filter)

	// Safe ORDER BY with validation
	orderBy := "created_at"
	if chunkOrderColumns[filter.OrderBy] {
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id "+orderDir)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build list query: %v", err)
		return nil, err
	}

	chunks := []models.Chunk{}
	if err := r.db.SelectContext(ctx, &chunks, sqlStr, args...); err != nil {
		log.Error("failed to list chunks: %v", err)
		return nil, err
	}
	log.Debug("found %d chunks", len(chunks))
	return chunks, nil
}

func (r *chunkRepository) Count(ctx context.Context, filter models.ChunkFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")

	sqlStr, args, err := applyChunkFilter(sqlBuilder.Select("COUNT(*)").From("chunks"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, sqlStr, args...); err != nil {
		log.Error("failed to count chunks: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *chunkRepository) All(ctx context.Context, userID int64) ([]models.Chunk, error) {
	return r.List(ctx, models.ChunkFilter{UserID: userID, OrderBy: "created_at", OrderDir: "asc"})
}

func (r *chunkRepository) Due(ctx context.Context, userID int64, today srs.Date, limit int) ([]models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("fetching due chunks: user_id=%d, today=%s, limit=%d", userID, today, limit)

	chunks := []models.Chunk{}
	if limit <= 0 {
		return chunks, nil
	}

	sqlStr, args, err := sqlBuilder.Select(chunkColumns...).
		From("chunks").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"next_due_date": today}).
		OrderBy("next_due_date ASC", "review_count ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &chunks, sqlStr, args...); err != nil {
		log.Error("failed to query due chunks: %v", err)
		return nil, err
	}
	log.Debug("found %d due chunks", len(chunks))
	return chunks, nil
}

func (r *chunkRepository) CountDue(ctx context.Context, userID int64, today srs.Date) (int, error) {
	return r.Count(ctx, models.ChunkFilter{UserID: userID, DueOnly: true, Today: today})
}

func insertChunk(ctx context.Context, e sqlx.ExecerContext, c models.Chunk) (int64, error) {
	sqlStr, args, err := sqlBuilder.Insert("chunks").
		Columns("user_id", "jp_prompt", "en_answer", "ease_factor", "interval_days", "next_due_date", "review_count").
		Values(c.UserID, c.JPPrompt, c.ENAnswer, c.EaseFactor, c.IntervalDays, c.NextDueDate, c.ReviewCount).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := e.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *chunkRepository) Insert(ctx context.Context, c models.Chunk) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("inserting chunk: user_id=%d", c.UserID)

	id, err := insertChunk(ctx, r.db, c)
	if err != nil {
		log.Error("failed to insert chunk: %v", err)
		return 0, err
	}
	log.Debug("chunk inserted: id=%d", id)
	return id, nil
}

func (r *chunkRepository) InsertBatch(ctx context.Context, chunks []models.Chunk) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("inserting %d chunks", len(chunks))

	ids := make([]int64, 0, len(chunks))
	if len(chunks) == 0 {
		return ids, nil
	}
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, c := range chunks {
			id, err := insertChunk(ctx, tx, c)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert chunk batch: %v", err)
		return nil, err
	}
	log.Info("inserted %d chunks", len(ids))
	return ids, nil
}

func updateChunk(ctx context.Context, e sqlx.ExecerContext, c models.Chunk) error {
	sqlStr, args, err := sqlBuilder.Update("chunks").
		SetMap(map[string]any{
			"jp_prompt":     c.JPPrompt,
			"en_answer":     c.ENAnswer,
			"ease_factor":   c.EaseFactor,
			"interval_days": c.IntervalDays,
			"next_due_date": c.NextDueDate,
			"review_count":  c.ReviewCount,
			"updated_at":    squirrel.Expr("CURRENT_TIMESTAMP"),
		}).
		Where(squirrel.Eq{"id": c.ID, "user_id": c.UserID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := e.ExecContext(ctx, sqlStr, args...)
	if err != nil {
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

func (r *chunkRepository) Update(ctx context.Context, c models.Chunk) error {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("updating chunk: id=%d, interval=%d, ease=%.2f, due=%s", c.ID, c.IntervalDays, c.EaseFactor, c.NextDueDate)

	if err := updateChunk(ctx, r.db, c); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to update chunk: %v", err)
		}
		return err
	}
	return nil
}

func (r *chunkRepository) UpdateContent(ctx context.Context, userID int64, edits []models.ChunkEdit) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("bulk editing %d chunks: user_id=%d", len(edits), userID)

	total := 0
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, e := range edits {
			q := sqlBuilder.Update("chunks").
				Set("jp_prompt", e.JPPrompt).
				Set("en_answer", e.ENAnswer).
				Set("ease_factor", e.EaseFactor).
				Set("interval_days", e.IntervalDays).
				Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
				Where(squirrel.Eq{"id": e.ID, "user_id": userID})
			// A zero interval makes the chunk new again.
			if e.IntervalDays == 0 {
				q = q.Set("review_count", 0)
			}
			sqlStr, args, err := q.ToSql()
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, sqlStr, args...)
			if err != nil {
				return err
			}
			n, err := affected(res)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		log.Error("failed to bulk edit chunks: %v", err)
		return 0, err
	}
	return total, nil
}

func (r *chunkRepository) DeleteMany(ctx context.Context, userID int64, ids []int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("deleting chunks: user_id=%d, ids=%v", userID, ids)

	if len(ids) == 0 {
		return 0, nil
	}
	sqlStr, args, err := sqlBuilder.Delete("chunks").
		Where(squirrel.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to delete chunks: %v", err)
		return 0, err
	}
	return affected(res)
}

func (r *chunkRepository) ResetIntervals(ctx context.Context, userID int64, ids []int64, today srs.Date) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("resetting intervals: user_id=%d, ids=%v", userID, ids)

	if len(ids) == 0 {
		return 0, nil
	}
	sqlStr, args, err := sqlBuilder.Update("chunks").
		Set("interval_days", 0).
		Set("review_count", 0).
		Set("next_due_date", today).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to reset intervals: %v", err)
		return 0, err
	}
	return affected(res)
}

func (r *chunkRepository) DeleteAll(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Warn("deleting all chunks: user_id=%d", userID)

	res, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE user_id = ?`, userID)
	if err != nil {
		log.Error("failed to delete all chunks: %v", err)
		return 0, err
	}
	return affected(res)
}

func insertReviewHistory(ctx context.Context, e sqlx.ExecerContext, h models.ReviewHistory) error {
	_, err := e.ExecContext(ctx, `
INSERT INTO review_history (chunk_id, user_id, quality, time_seconds, ease_factor, interval_days)
VALUES (?, ?, ?, ?, ?, ?)
`, h.ChunkID, h.UserID, h.Quality, h.TimeSeconds, h.EaseFactor, h.IntervalDays)
	return err
}

func (r *chunkRepository) InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("inserting review history: chunk_id=%d, quality=%d, time=%.2fs", h.ChunkID, h.Quality, h.TimeSeconds)

	if err := insertReviewHistory(ctx, r.db, h); err != nil {
		log.Error("failed to insert review history: %v", err)
		return err
	}
	return nil
}

func (r *chunkRepository) ApplyReview(ctx context.Context, userID, id int64, fn repository.ReviewFunc) (*models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_repo")
	log.Debug("applying review: user_id=%d, id=%d", userID, id)

	var updated models.Chunk
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := getChunk(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		next, history, err := fn(*current)
		if err != nil {
			return err
		}
		next.ID, next.UserID = current.ID, current.UserID
		if err := updateChunk(ctx, tx, next); err != nil {
			return err
		}
		history.ChunkID, history.UserID = current.ID, current.UserID
		if err := insertReviewHistory(ctx, tx, history); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to apply review: %v", err)
		}
		return nil, err
	}
	log.Debug("review applied: id=%d, interval=%d, due=%s", updated.ID, updated.IntervalDays, updated.NextDueDate)
	return &updated, nil
}
