package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
)

type importRepository struct {
	db *sqlx.DB
}

// NewImportRepository creates a new ImportRepository implementation
func NewImportRepository(db *sql.DB) repository.ImportRepository {
	return &importRepository{db: wrap(db)}
}

func (r *importRepository) Create(ctx context.Context, rec models.ImportRecord) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")
	log.Debug("creating import record: user_id=%d, file=%s", rec.UserID, rec.Filename)

	status := rec.Status
	if status == "" {
		status = models.ImportStatusPending
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO imports (user_id, filename, format, status)
VALUES (?, ?, ?, ?)
`, rec.UserID, rec.Filename, rec.Format, status)
	if err != nil {
		log.Error("failed to create import record: %v", err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *importRepository) MarkRunning(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("import_repo")

	_, err := r.db.ExecContext(ctx, `UPDATE imports SET status = ? WHERE id = ?`, models.ImportStatusRunning, id)
	if err != nil {
		log.Error("failed to mark import running: %v", err)
	}
	return err
}

func (r *importRepository) Finish(ctx context.Context, id int64, imported int, importErr error) error {
	log := logger.FromContext(ctx).WithPrefix("import_repo")

	status, msg := models.ImportStatusCompleted, ""
	if importErr != nil {
		status, msg = models.ImportStatusFailed, importErr.Error()
	}
	log.Debug("finishing import: id=%d, status=%s, imported=%d", id, status, imported)

	_, err := r.db.ExecContext(ctx, `
UPDATE imports SET status = ?, imported = ?, error = ?, finished_at = CURRENT_TIMESTAMP
WHERE id = ?
`, status, imported, msg, id)
	if err != nil {
		log.Error("failed to finish import: %v", err)
	}
	return err
}

func (r *importRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.ImportRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")

	if limit <= 0 {
		limit = 10
	}
	sqlStr, args, err := sqlBuilder.
		Select("id", "user_id", "filename", "format", "status", "imported", "error", "created_at", "finished_at").
		From("imports").
		Where("user_id = ?", userID).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	records := []models.ImportRecord{}
	if err := r.db.SelectContext(ctx, &records, sqlStr, args...); err != nil {
		log.Error("failed to list imports: %v", err)
		return nil, err
	}
	return records, nil
}
