package models

// StreakState is derived from a habit's completion history and a reference day.
type StreakState struct {
	HabitID           string `json:"habit_id" yaml:"habit_id"`
	CurrentStreak     int    `json:"current_streak" yaml:"current_streak"`
	LongestStreak     int    `json:"longest_streak" yaml:"longest_streak"`
	LastCompletedDate string `json:"last_completed_date,omitempty" yaml:"last_completed_date,omitempty"`
}
