package services

import (
	"time"

	"github.com/chunkrecall/trainer/internal/srs"
)

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

// SystemClock is the wall clock.
var SystemClock Clock = time.Now

func (c Clock) today() srs.Date {
	if c == nil {
		return srs.Today()
	}
	return srs.DateOf(c())
}

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
