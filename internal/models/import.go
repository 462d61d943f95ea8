package models

import "time"

const (
	ImportStatusPending   = "pending"
	ImportStatusRunning   = "running"
	ImportStatusCompleted = "completed"
	ImportStatusFailed    = "failed"
)

const (
	ImportFormatCSV  = "csv"
	ImportFormatXLSX = "xlsx"
)

// ImportRecord tracks one uploaded spreadsheet through the background queue.
type ImportRecord struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Filename   string     `db:"filename" json:"filename"`
	Format     string     `db:"format" json:"format"`
	Status     string     `db:"status" json:"status"`
	Imported   int        `db:"imported" json:"imported"`
	Error      string     `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}
