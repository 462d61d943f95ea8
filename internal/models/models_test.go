package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

var today = srs.NewDate(2025, time.March, 14)

func TestNewChunk_Defaults(t *testing.T) {
	c := models.NewChunk(3, "こんばんは。", "Good evening.", today)

	assert.Equal(t, int64(3), c.UserID)
	assert.Equal(t, srs.DefaultEasinessFactor, c.EaseFactor)
	assert.Equal(t, 0, c.IntervalDays)
	assert.Equal(t, 0, c.ReviewCount)
	assert.Equal(t, today, c.NextDueDate)
	assert.True(t, c.IsDue(today))
}

func TestChunk_ScheduleRoundTrip(t *testing.T) {
	c := models.Chunk{ID: 11, EaseFactor: 2.6, IntervalDays: 6, ReviewCount: 2, NextDueDate: today}

	next, err := srs.Update(c.Schedule(), srs.QualityPerfect, today)
	assert.NoError(t, err)
	c.ApplySchedule(next)

	assert.Equal(t, int64(11), c.ID)
	assert.Equal(t, 16, c.IntervalDays)
	assert.Equal(t, 3, c.ReviewCount)
	assert.Equal(t, today.AddDays(16), c.NextDueDate)
}

func TestChunk_DaysOverdue(t *testing.T) {
	assert.Equal(t, 4, models.Chunk{NextDueDate: today.AddDays(-4)}.DaysOverdue(today))
	assert.Equal(t, 0, models.Chunk{NextDueDate: today}.DaysOverdue(today))
	assert.Equal(t, 0, models.Chunk{NextDueDate: today.AddDays(2)}.DaysOverdue(today))
}

func TestDailyQueue_Progress(t *testing.T) {
	q := models.DailyQueue{Entries: []models.QueueEntry{
		{ChunkID: 5, Position: 0, Done: true},
		{ChunkID: 2, Position: 1},
		{ChunkID: 9, Position: 2, Done: true},
		{ChunkID: 1, Position: 3},
	}}

	assert.Equal(t, 4, q.Total())
	assert.Equal(t, 2, q.DoneCount())
	assert.InDelta(t, 0.5, q.Progress(), 1e-9)
	assert.Equal(t, []int64{2, 1}, q.Pending())

	assert.Equal(t, 1.0, models.DailyQueue{}.Progress())
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	s := models.Session{ExpiresAt: now}

	assert.True(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(-time.Second)))
}
