package habit

import (
	"time"

	"github.com/google/uuid"
)

type HabitFrequency string

const (
	FrequencyDaily   HabitFrequency = "daily"
	FrequencyWeekly  HabitFrequency = "weekly"
	FrequencyMonthly HabitFrequency = "monthly"
	FrequencyCustom  HabitFrequency = "custom"
)

type HabitType string

const (
	TypeBuild    HabitType = "build"
	TypeBreak    HabitType = "break"
	TypeMaintain HabitType = "maintain"
)

type Habit struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	UserID      string         `json:"user_id" db:"user_id"`
	Name        string         `json:"name" db:"name"`
	Description *string        `json:"description,omitempty" db:"description"`
	HabitType   HabitType      `json:"habit_type" db:"habit_type"`
	Frequency   HabitFrequency `json:"frequency" db:"frequency"`
	TargetCount int            `json:"target_count" db:"target_count"`
	TargetDays  []int          `json:"target_days,omitempty" db:"target_days"`
	Color       *string        `json:"color,omitempty" db:"color"`
	Icon        *string        `json:"icon,omitempty" db:"icon"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	IsArchived  bool           `json:"is_archived" db:"is_archived"`
	StartDate   time.Time      `json:"start_date" db:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty" db:"end_date"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type HabitLog struct {
	ID              uuid.UUID `json:"id" db:"id"`
	HabitID         uuid.UUID `json:"habit_id" db:"habit_id"`
	UserID          string    `json:"user_id" db:"user_id"`
	LogDate         time.Time `json:"log_date" db:"log_date"`
	Completed       bool      `json:"completed" db:"completed"`
	Value           *float64  `json:"value,omitempty" db:"value"`
	CompletionCount int       `json:"completion_count" db:"completion_count"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Streak is one run of check-ins for a habit. At most one row per habit
// has IsActive=true; closed rows keep the history.
type Streak struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	HabitID      uuid.UUID  `json:"habit_id" db:"habit_id"`
	UserID       string     `json:"user_id" db:"user_id"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty" db:"end_date"`
	CurrentCount int        `json:"current_count" db:"current_count"`
	LongestCount int        `json:"longest_count" db:"longest_count"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastCheckIn  *time.Time `json:"last_check_in,omitempty" db:"last_check_in"`
	FreezeCount  int        `json:"freeze_count" db:"freeze_count"`
	MaxFreezes   int        `json:"max_freezes" db:"max_freezes"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// DefaultMaxFreezes is the freeze-day budget a new streak starts with.
const DefaultMaxFreezes = 2
