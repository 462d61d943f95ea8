package models

import "time"

// Exercise is a generated practice question for a chunk and, once the
// learner answered, the model's feedback.
type Exercise struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	ChunkID    int64     `db:"chunk_id" json:"chunk_id"`
	Question   string    `db:"question" json:"question"`
	AnswerKey  string    `db:"answer_key" json:"answer_key"`
	UserAnswer string    `db:"user_answer" json:"user_answer,omitempty"`
	Feedback   string    `db:"feedback" json:"feedback,omitempty"`
	Score      *int      `db:"score" json:"score,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func (e Exercise) Answered() bool {
	return e.Feedback != ""
}
