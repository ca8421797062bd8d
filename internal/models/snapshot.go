package models

import "time"

// Snapshot is the exportable view of everything an owner has recorded.
type Snapshot struct {
	OwnerID    string        `json:"owner_id" yaml:"owner_id"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at"`
	AsOf       string        `json:"as_of" yaml:"as_of"`
	Habits     []HabitRecord `json:"habits" yaml:"habits"`
}

// HabitRecord pairs a habit with its full history and derived streak.
type HabitRecord struct {
	Habit       Habit             `json:"habit" yaml:"habit"`
	Completions []CompletionEvent `json:"completions" yaml:"completions"`
	Streak      StreakState       `json:"streak" yaml:"streak"`
}
