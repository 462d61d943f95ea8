// Package srs holds the SM-2 spaced-repetition scheduler and the due-set
// selection policy. Everything here is a pure function over value types;
// persistence and clocks belong to the caller.
package srs

import (
	"errors"
	"fmt"
	"math"
)

// Quality is the 0-5 recall score given after attempting an item.
type Quality = int

const (
	QualityBlackout          Quality = 0
	QualityIncorrect         Quality = 1
	QualityIncorrectFamiliar Quality = 2
	QualityCorrectDifficult  Quality = 3
	QualityCorrectHesitation Quality = 4
	QualityPerfect           Quality = 5
)

const (
	// PassThreshold is the lowest quality counted as a successful recall.
	PassThreshold = QualityCorrectDifficult

	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3

	firstInterval  = 1
	secondInterval = 6
)

// ErrInvalidQuality is returned when a quality score is outside [0,5].
var ErrInvalidQuality = errors.New("srs: quality must be an integer between 0 and 5")

// State is the scheduling state of one flashcard.
type State struct {
	ID             int64
	EasinessFactor float64
	Interval       int
	ReviewCount    int
	NextDueDate    Date
}

// NewState returns the scheduling state of a freshly added card: due today,
// never reviewed.
func NewState(id int64, today Date) State {
	return State{
		ID:             id,
		EasinessFactor: DefaultEasinessFactor,
		Interval:       0,
		ReviewCount:    0,
		NextDueDate:    today,
	}
}

// Mastering reports whether the card has at least one success since its
// last failure.
func (s State) Mastering() bool {
	return s.ReviewCount >= 1
}

// ValidQuality reports whether q is an accepted quality score.
func ValidQuality(q int) bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Update applies one review of the given quality on day today and returns
// the new state. The input state is left untouched. On an invalid quality the
// input is returned as-is along with an error wrapping ErrInvalidQuality.
//
// A failed review (quality < 3) schedules the card for tomorrow and restarts
// the success sequence without touching the easiness factor. A successful
// review adjusts the easiness factor and grows the interval: 1 day, then 6,
// then prev*EF rounded half-to-even.
func Update(s State, quality int, today Date) (State, error) {
	if !ValidQuality(quality) {
		return s, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	next := s
	if quality < PassThreshold {
		next.Interval = firstInterval
		next.ReviewCount = 0
	} else {
		next.EasinessFactor = nextEasiness(s.EasinessFactor, quality)
		switch s.ReviewCount {
		case 0:
			next.Interval = firstInterval
		case 1:
			next.Interval = secondInterval
		default:
			next.Interval = int(math.RoundToEven(float64(s.Interval) * next.EasinessFactor))
		}
		next.ReviewCount = s.ReviewCount + 1
	}

	next.NextDueDate = today.AddDays(max(1, next.Interval))
	return next, nil
}

func nextEasiness(ef float64, quality int) float64 {
	miss := float64(QualityPerfect - quality)
	ef += 0.1 - miss*(0.08+miss*0.02)
	return math.Max(MinEasinessFactor, ef)
}
