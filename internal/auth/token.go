package auth

import "github.com/google/uuid"

// NewSessionToken returns a random session cookie value.
func NewSessionToken() string {
	return uuid.NewString()
}

// ValidSessionToken reports whether s looks like a token from
// NewSessionToken, so junk cookies skip the database.
func ValidSessionToken(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
