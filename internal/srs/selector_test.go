package srs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chunkrecall/trainer/internal/srs"
)

func ids(states []srs.State) []int64 {
	out := make([]int64, 0, len(states))
	for _, s := range states {
		out = append(out, s.ID)
	}
	return out
}

func TestSelectDue_FiltersAndOrders(t *testing.T) {
	states := []srs.State{
		{ID: 1, ReviewCount: 0, NextDueDate: today},
		{ID: 2, ReviewCount: 3, NextDueDate: today.AddDays(-5)},
		{ID: 3, ReviewCount: 1, NextDueDate: today.AddDays(1)},
		{ID: 4, ReviewCount: 0, NextDueDate: today.AddDays(-5)},
		{ID: 5, ReviewCount: 2, NextDueDate: today.AddDays(-1)},
		{ID: 6, ReviewCount: 0, NextDueDate: today.AddDays(30)},
	}

	due := srs.SelectDue(states, today, 10)

	assert.Equal(t, []int64{4, 2, 5, 1}, ids(due))
}

func TestSelectDue_Limit(t *testing.T) {
	states := []srs.State{
		{ID: 1, NextDueDate: today.AddDays(-1)},
		{ID: 2, NextDueDate: today.AddDays(-2)},
		{ID: 3, NextDueDate: today.AddDays(-3)},
	}

	assert.Equal(t, []int64{3, 2}, ids(srs.SelectDue(states, today, 2)))
	assert.Empty(t, srs.SelectDue(states, today, 0))
	assert.Empty(t, srs.SelectDue(states, today, -4))
}

func TestSelectDue_StableForFullTies(t *testing.T) {
	states := []srs.State{
		{ID: 10, ReviewCount: 1, NextDueDate: today},
		{ID: 4, ReviewCount: 1, NextDueDate: today},
		{ID: 7, ReviewCount: 1, NextDueDate: today},
	}

	assert.Equal(t, []int64{10, 4, 7}, ids(srs.SelectDue(states, today, 5)))
}

func TestSelectDue_NothingDue(t *testing.T) {
	states := []srs.State{{ID: 1, NextDueDate: today.AddDays(1)}}

	due := srs.SelectDue(states, today, 5)

	assert.NotNil(t, due)
	assert.Empty(t, due)
	assert.Empty(t, srs.SelectDue(nil, today, 5))
}

func TestSelectDue_DoesNotReorderInput(t *testing.T) {
	states := []srs.State{
		{ID: 1, NextDueDate: today},
		{ID: 2, NextDueDate: today.AddDays(-1)},
	}

	_ = srs.SelectDue(states, today, 5)

	assert.Equal(t, []int64{1, 2}, ids(states))
}

func TestSelectDue_Properties(t *testing.T) {
	var states []srs.State
	for i := 0; i < 40; i++ {
		states = append(states, srs.State{
			ID:          int64(i),
			ReviewCount: (i * 7) % 5,
			NextDueDate: today.AddDays((i*13)%21 - 10),
		})
	}

	for _, limit := range []int{1, 5, 17, 100} {
		due := srs.SelectDue(states, today, limit)

		assert.LessOrEqual(t, len(due), limit)
		for i, s := range due {
			assert.True(t, srs.IsDue(s, today))
			if i == 0 {
				continue
			}
			prev := due[i-1]
			assert.False(t, s.NextDueDate.Before(prev.NextDueDate), "sorted by due date")
			if s.NextDueDate.Equal(prev.NextDueDate) {
				assert.GreaterOrEqual(t, s.ReviewCount, prev.ReviewCount, "then by review count")
			}
		}
	}
}
