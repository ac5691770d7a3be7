package habit

import "time"

type CreateHabitRequest struct {
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	HabitType   HabitType      `json:"habit_type,omitempty"`
	Frequency   HabitFrequency `json:"frequency,omitempty"`
	TargetCount int            `json:"target_count,omitempty"`
	TargetDays  []int          `json:"target_days,omitempty"`
	Color       *string        `json:"color,omitempty"`
	Icon        *string        `json:"icon,omitempty"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
}

type UpdateHabitRequest struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	HabitType   *HabitType      `json:"habit_type,omitempty"`
	Frequency   *HabitFrequency `json:"frequency,omitempty"`
	TargetCount *int            `json:"target_count,omitempty"`
	TargetDays  []int           `json:"target_days,omitempty"`
	Color       *string         `json:"color,omitempty"`
	Icon        *string         `json:"icon,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
}

type LogHabitRequest struct {
	Date      time.Time `json:"date"`
	Completed *bool     `json:"completed,omitempty"`
	Value     *float64  `json:"value,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
}

// HabitWithLogs is the detail view: the habit, its recent logs and the
// current streak length.
type HabitWithLogs struct {
	Habit         *Habit      `json:"habit"`
	Logs          []*HabitLog `json:"logs"`
	CurrentStreak int         `json:"current_streak"`
}
