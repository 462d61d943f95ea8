package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: wrap(db)}
}

// Timestamps are stored in UTC at second precision so that the driver's
// text encoding compares in time order.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func (r *sessionRepository) Create(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: user_id=%d, expires_at=%s", s.UserID, s.ExpiresAt.Format(time.RFC3339))

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (token, user_id, openai_api_key, expires_at)
VALUES (?, ?, ?, ?)
`, s.Token, s.UserID, s.OpenAIAPIKey, dbTime(s.ExpiresAt))
	if err != nil {
		log.Error("failed to create session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var s models.Session
	err := r.db.GetContext(ctx, &s, `
SELECT token, user_id, openai_api_key, created_at, expires_at
FROM sessions
WHERE token = ?
`, token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get session: %v", err)
		}
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("deleting session")

	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		log.Error("failed to delete session: %v", err)
	}
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, dbTime(now))
	if err != nil {
		log.Error("failed to delete expired sessions: %v", err)
		return 0, err
	}
	n, err := affected(res)
	if err == nil && n > 0 {
		log.Info("deleted %d expired sessions", n)
	}
	return n, err
}

func (r *sessionRepository) SetAPIKey(ctx context.Context, token, apiKey string) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session api key")

	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET openai_api_key = ? WHERE token = ?`, apiKey, token)
	if err != nil {
		log.Error("failed to update session api key: %v", err)
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
