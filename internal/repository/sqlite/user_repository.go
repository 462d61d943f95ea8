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

const userColumns = `id, firebase_uid, email, display_name, created_at, last_login_at`

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: wrap(db)}
}

func (r *userRepository) Upsert(ctx context.Context, firebaseUID, email, displayName string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("upserting user: email=%s", email)

	var u models.User
	err := r.db.GetContext(ctx, &u, `
INSERT INTO users (firebase_uid, email, display_name)
VALUES (?, ?, ?)
ON CONFLICT(firebase_uid) DO UPDATE SET email = excluded.email, display_name = excluded.display_name
RETURNING `+userColumns, firebaseUID, email, displayName)
	if err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, err
	}
	log.Debug("user upserted: id=%d", u.ID)
	return &u, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%d", id)

	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get user: %v", err)
		}
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user by email: %s", email)

	var u models.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get user by email: %v", err)
		}
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("listing users")

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id ASC`); err != nil {
		log.Error("failed to list users: %v", err)
		return nil, err
	}
	log.Debug("found %d users", len(users))
	return users, nil
}

func (r *userRepository) TouchLogin(ctx context.Context, id int64, t time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating last login: user_id=%d", id)

	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, t.UTC(), id)
	if err != nil {
		log.Error("failed to update last login: %v", err)
	}
	return err
}
