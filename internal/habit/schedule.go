package habit

import (
	"fmt"
	"time"
)

// Weekday indexing for weekly target days is Monday=0 .. Sunday=6, which is
// what the mobile clients send. Go's time.Weekday starts at Sunday, so convert.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// IsDueOn reports whether the habit is due on the given calendar date.
// Archived habits are never due, and a habit is only due inside its
// [StartDate, EndDate] window.
func IsDueOn(h *Habit, day time.Time) bool {
	if h.IsArchived || !h.IsActive {
		return false
	}

	day = Midnight(day)
	if day.Before(Midnight(h.StartDate)) {
		return false
	}
	if h.EndDate != nil && day.After(Midnight(*h.EndDate)) {
		return false
	}

	switch h.Frequency {
	case FrequencyWeekly:
		return containsDay(h.TargetDays, mondayIndex(day.Weekday()))
	case FrequencyMonthly:
		return containsDay(h.TargetDays, day.Day())
	default:
		// daily and custom habits show every day
		return true
	}
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// ValidateTargetDays rejects target-day sets that are out of range for the
// declared frequency. Called at habit create/update time, never on the read path.
func ValidateTargetDays(freq HabitFrequency, days []int) error {
	switch freq {
	case FrequencyWeekly:
		for _, d := range days {
			if d < 0 || d > 6 {
				return fmt.Errorf("weekly target days must be between 0-6, got %d", d)
			}
		}
	case FrequencyMonthly:
		for _, d := range days {
			if d < 1 || d > 31 {
				return fmt.Errorf("monthly target days must be between 1-31, got %d", d)
			}
		}
	}
	return nil
}

// Midnight truncates a timestamp to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}
