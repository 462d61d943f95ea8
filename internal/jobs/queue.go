package jobs

import "github.com/chunkrecall/trainer/internal/srs"

// ImportRequest describes an uploaded spreadsheet waiting to be imported.
// The import row must already exist.
type ImportRequest struct {
	ImportID int64
	UserID   int64
	Filename string
	Format   string
	Data     []byte
	Today    srs.Date
}

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueImport(req ImportRequest) error
}
