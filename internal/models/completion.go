package models

import "time"

// CompletionEvent records that a habit was done on a calendar day.
// RecordedAt is kept for display only; streak logic looks at Day alone.
type CompletionEvent struct {
	ID         string    `json:"id" yaml:"id"`
	HabitID    string    `json:"habit_id" yaml:"habit_id"`
	Day        string    `json:"day" yaml:"day"` // YYYY-MM-DD format
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// CompletionQuery selects completions. HabitID narrows to one habit, otherwise
// every habit of OwnerID is included. Start and End are inclusive days and may be empty.
type CompletionQuery struct {
	OwnerID string
	HabitID string
	Start   string
	End     string
}
