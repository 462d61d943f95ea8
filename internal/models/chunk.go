package models

import (
	"time"

	"github.com/chunkrecall/trainer/internal/srs"
)

// Chunk is one flashcard: a Japanese prompt, its English answer and the
// SM-2 scheduling state.
type Chunk struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	JPPrompt     string    `db:"jp_prompt" json:"jp_prompt"`
	ENAnswer     string    `db:"en_answer" json:"en_answer"`
	EaseFactor   float64   `db:"ease_factor" json:"ef"`
	IntervalDays int       `db:"interval_days" json:"interval"`
	NextDueDate  srs.Date  `db:"next_due_date" json:"next_due_date"`
	ReviewCount  int       `db:"review_count" json:"review_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// NewChunk returns an unsaved chunk with default scheduling, due today.
func NewChunk(userID int64, jp, en string, today srs.Date) Chunk {
	c := Chunk{UserID: userID, JPPrompt: jp, ENAnswer: en}
	c.ApplySchedule(srs.NewState(0, today))
	return c
}

// Schedule returns the chunk's scheduling state.
func (c Chunk) Schedule() srs.State {
	return srs.State{
		ID:             c.ID,
		EasinessFactor: c.EaseFactor,
		Interval:       c.IntervalDays,
		ReviewCount:    c.ReviewCount,
		NextDueDate:    c.NextDueDate,
	}
}

// ApplySchedule copies s onto the chunk. The chunk ID is left alone.
func (c *Chunk) ApplySchedule(s srs.State) {
	c.EaseFactor = s.EasinessFactor
	c.IntervalDays = s.Interval
	c.ReviewCount = s.ReviewCount
	c.NextDueDate = s.NextDueDate
}

// IsDue reports whether the chunk can be practiced on today.
func (c Chunk) IsDue(today srs.Date) bool {
	return srs.IsDue(c.Schedule(), today)
}

// DaysOverdue is zero for chunks that are not yet due.
func (c Chunk) DaysOverdue(today srs.Date) int {
	if !c.IsDue(today) {
		return 0
	}
	return c.NextDueDate.DaysUntil(today)
}

// ChunkFilter narrows ListChunks.
type ChunkFilter struct {
	UserID   int64
	Search   string
	DueOnly  bool
	Today    srs.Date
	OrderBy  string
	OrderDir string
	Limit    int
	Offset   int
}

// ChunkEdit is one row of a bulk edit from the manage page.
type ChunkEdit struct {
	ID           int64
	JPPrompt     string
	ENAnswer     string
	EaseFactor   float64
	IntervalDays int
}

// ReviewHistory records one review event and the state it produced.
type ReviewHistory struct {
	ID           int64     `db:"id" json:"id"`
	ChunkID      int64     `db:"chunk_id" json:"chunk_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Quality      int       `db:"quality" json:"quality"`
	TimeSeconds  float64   `db:"time_seconds" json:"time_seconds"`
	EaseFactor   float64   `db:"ease_factor" json:"ef"`
	IntervalDays int       `db:"interval_days" json:"interval"`
	ReviewedAt   time.Time `db:"reviewed_at" json:"reviewed_at"`
}
