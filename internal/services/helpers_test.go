package services_test

import (
	"time"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/services"
	"github.com/chunkrecall/trainer/internal/srs"
)

var (
	now   = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	today = srs.DateOf(now)
)

func fixedClock() services.Clock {
	return func() time.Time { return now }
}

func chunk(id int64, ef float64, interval, reviews int, due srs.Date) models.Chunk {
	return models.Chunk{
		ID:           id,
		UserID:       1,
		JPPrompt:     "jp",
		ENAnswer:     "en",
		EaseFactor:   ef,
		IntervalDays: interval,
		ReviewCount:  reviews,
		NextDueDate:  due,
	}
}
