package models

import "github.com/chunkrecall/trainer/internal/srs"

// DailyQueue is the fixed practice list picked for a user on one day.
type DailyQueue struct {
	UserID    int64        `json:"user_id"`
	QueueDate srs.Date     `json:"queue_date"`
	Entries   []QueueEntry `json:"entries"`
}

type QueueEntry struct {
	ChunkID  int64 `db:"chunk_id" json:"chunk_id"`
	Position int   `db:"position" json:"position"`
	Done     bool  `db:"done" json:"done"`
}

func (q DailyQueue) Total() int {
	return len(q.Entries)
}

func (q DailyQueue) DoneCount() int {
	n := 0
	for _, e := range q.Entries {
		if e.Done {
			n++
		}
	}
	return n
}

// Progress is the finished share of the queue in [0,1]. An empty queue
// counts as finished.
func (q DailyQueue) Progress() float64 {
	if len(q.Entries) == 0 {
		return 1
	}
	return float64(q.DoneCount()) / float64(len(q.Entries))
}

// Pending returns the chunk IDs still to practice, in queue order.
func (q DailyQueue) Pending() []int64 {
	var ids []int64
	for _, e := range q.Entries {
		if !e.Done {
			ids = append(ids, e.ChunkID)
		}
	}
	return ids
}

// PracticeQueue is today's queue with the chunks still to practice loaded.
type PracticeQueue struct {
	Queue   DailyQueue `json:"queue"`
	Pending []Chunk    `json:"pending"`
}

// Next returns the first chunk still to practice.
func (p PracticeQueue) Next() (Chunk, bool) {
	if len(p.Pending) == 0 {
		return Chunk{}, false
	}
	return p.Pending[0], true
}
