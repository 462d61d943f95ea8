package srs

import "sort"

// IsDue reports whether s may be reviewed on day today.
func IsDue(s State, today Date) bool {
	return !s.NextDueDate.After(today)
}

// SelectDue returns the states due on or before today, most overdue first
// and, among equally overdue states, the least practiced first. Remaining
// ties keep input order. At most limit states are returned; a limit of zero
// or less selects nothing. The input slice is not modified.
func SelectDue(states []State, today Date, limit int) []State {
	if limit <= 0 {
		return []State{}
	}

	due := make([]State, 0, len(states))
	for _, s := range states {
		if IsDue(s, today) {
			due = append(due, s)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		if c := due[i].NextDueDate.Compare(due[j].NextDueDate); c != 0 {
			return c < 0
		}
		return due[i].ReviewCount < due[j].ReviewCount
	})

	if len(due) > limit {
		due = due[:limit]
	}
	return due
}
