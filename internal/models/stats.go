package models

// DailyStats summarizes completions across all habits for one day.
type DailyStats struct {
	Date           string  `json:"date"`
	TotalHabits    int     `json:"total_habits"`
	CompletedCount int     `json:"completed_count"`
	CompletionRate float64 `json:"completion_rate"`
}

// WeeklyStats covers the seven days ending at EndDate.
type WeeklyStats struct {
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	TotalHabits    int             `json:"total_habits"`
	CompletedDays  int             `json:"completed_days"`
	PossibleDays   int             `json:"possible_days"`
	CompletionRate float64         `json:"completion_rate"`
	Habits         []HabitWeekStat `json:"habits"`
}

// HabitWeekStat is one habit's row in WeeklyStats. Days is indexed from StartDate.
type HabitWeekStat struct {
	HabitID        string  `json:"habit_id"`
	Name           string  `json:"name"`
	DaysCompleted  int     `json:"days_completed"`
	PossibleDays   int     `json:"possible_days"`
	CompletionRate float64 `json:"completion_rate"`
	Days           []bool  `json:"days"`
}

// AggregateStats sums streaks across all habits.
type AggregateStats struct {
	TotalActiveStreakDays int `json:"total_active_streak_days"`
	LongestStreakOverall  int `json:"longest_streak_overall"`
}
