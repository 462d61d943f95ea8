package models

type ChunkStats struct {
	TotalChunks     int     `db:"total_chunks" json:"total_chunks"`
	AvgEaseFactor   float64 `db:"avg_ease_factor" json:"avg_ease_factor"`
	AvgIntervalDays float64 `db:"avg_interval_days" json:"avg_interval_days"`
	DueToday        int     `db:"due_today" json:"due_today"`
	DueThisWeek     int     `db:"due_this_week" json:"due_this_week"`
	Mastered        int     `db:"mastered" json:"mastered"`
	Struggling      int     `db:"struggling" json:"struggling"`
	NeverReviewed   int     `db:"never_reviewed" json:"never_reviewed"`
	TotalReviews    int     `db:"total_reviews" json:"total_reviews"`
	Accuracy        float64 `db:"accuracy" json:"accuracy"`
}

type QualityCount struct {
	Quality int `db:"quality" json:"quality"`
	Count   int `db:"count" json:"count"`
}
