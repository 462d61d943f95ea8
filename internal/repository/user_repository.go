package repository

import (
	"context"
	"time"

	"github.com/chunkrecall/trainer/internal/models"
)

// UserRepository handles user data access
type UserRepository interface {
	// Upsert creates the user or refreshes email and display name of the
	// existing one with the same firebase uid.
	Upsert(ctx context.Context, firebaseUID, email, displayName string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	TouchLogin(ctx context.Context, id int64, t time.Time) error
}

// SessionRepository handles login session data access
type SessionRepository interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	SetAPIKey(ctx context.Context, token, apiKey string) error
}
