package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/db"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

var dbCounter atomic.Int64

// NewTestDB creates a private in-memory SQLite database with all migrations
// applied and foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A named shared-cache memory database lets the pool reopen the same
	// data; the name keeps tests isolated from each other.
	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbCounter.Add(1))
	sqlDB, err := sql.Open("sqlite3", name)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// CreateUser inserts a user and returns its id.
func CreateUser(t *testing.T, sqlDB *sql.DB, email string) int64 {
	t.Helper()
	res, err := sqlDB.Exec(`INSERT INTO users (firebase_uid, email) VALUES (?, ?)`, "uid-"+email, email)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CreateChunk inserts a chunk with the given scheduling state and returns its id.
func CreateChunk(t *testing.T, sqlDB *sql.DB, userID int64, jp string, state srs.State) int64 {
	t.Helper()
	res, err := sqlDB.Exec(`
INSERT INTO chunks (user_id, jp_prompt, en_answer, ease_factor, interval_days, next_due_date, review_count)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, userID, jp, "answer to "+jp, state.EasinessFactor, state.Interval, state.NextDueDate, state.ReviewCount)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// SampleChunk returns an unsaved chunk for service and handler tests.
func SampleChunk(id, userID int64, today srs.Date) models.Chunk {
	c := models.NewChunk(userID, "おはようございます。調子はどうですか？", "Good morning. How are you?", today)
	c.ID = id
	return c
}
