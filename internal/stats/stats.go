package stats

import "momentumAPI/internal/habit"

// TodayHabit is one entry of the "due today" view.
type TodayHabit struct {
	Habit     *habit.Habit    `json:"habit"`
	Completed bool            `json:"completed"`
	Log       *habit.HabitLog `json:"log,omitempty"`
}

// HabitStats aggregates a user's habits for the dashboard.
type HabitStats struct {
	Total               int     `json:"total"`
	Active              int     `json:"active"`
	Archived            int     `json:"archived"`
	CompletionRateToday float64 `json:"completion_rate_today"`
	CompletedToday      int     `json:"completed_today"`
	TotalToday          int     `json:"total_today"`
	MonthlyLogs         int     `json:"monthly_logs"`
}

// StreakEntry ranks one habit by its current streak.
type StreakEntry struct {
	Habit         *habit.Habit `json:"habit"`
	CurrentStreak int          `json:"current_streak"`
	LongestStreak int          `json:"longest_streak"`
}

type TaskStats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	CompletedToday int `json:"completed_today"`
}

type NoteStats struct {
	Total    int `json:"total"`
	Pinned   int `json:"pinned"`
	Archived int `json:"archived"`
	Words    int `json:"words"`
}
