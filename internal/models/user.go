package models

import "time"

type User struct {
	ID          int64      `db:"id" json:"id"`
	FirebaseUID string     `db:"firebase_uid" json:"firebase_uid"`
	Email       string     `db:"email" json:"email"`
	DisplayName string     `db:"display_name" json:"display_name"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at"`
}

// Session is a server-side login. The token is the cookie value.
type Session struct {
	Token        string    `db:"token" json:"-"`
	UserID       int64     `db:"user_id" json:"user_id"`
	OpenAIAPIKey string    `db:"openai_api_key" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
