package habit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dailyHabit() *Habit {
	return &Habit{
		Name:      "read",
		Frequency: FrequencyDaily,
		IsActive:  true,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestDailyHabitDueEveryDay(t *testing.T) {
	h := dailyHabit()

	assert.True(t, IsDueOn(h, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsDueOn(h, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
}

func TestHabitNotDueBeforeStartDate(t *testing.T) {
	h := dailyHabit()

	assert.False(t, IsDueOn(h, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestHabitNotDueAfterEndDate(t *testing.T) {
	h := dailyHabit()
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	h.EndDate = &end

	assert.True(t, IsDueOn(h, end))
	assert.False(t, IsDueOn(h, end.AddDate(0, 0, 1)))
}

func TestArchivedHabitNeverDue(t *testing.T) {
	h := dailyHabit()
	h.IsArchived = true

	assert.False(t, IsDueOn(h, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func TestWeeklyHabitTargetDays(t *testing.T) {
	h := dailyHabit()
	h.Frequency = FrequencyWeekly
	h.TargetDays = []int{0, 2, 4} // Mon, Wed, Fri

	// 2025-03-03 is a Monday.
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		want := i == 0 || i == 2 || i == 4
		assert.Equalf(t, want, IsDueOn(h, d), "weekday offset %d", i)
	}
}

func TestMonthlyHabitTargetDays(t *testing.T) {
	h := dailyHabit()
	h.Frequency = FrequencyMonthly
	h.TargetDays = []int{1, 15}

	assert.True(t, IsDueOn(h, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsDueOn(h, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsDueOn(h, time.Date(2025, 4, 16, 0, 0, 0, 0, time.UTC)))
}

func TestCustomHabitAlwaysDue(t *testing.T) {
	h := dailyHabit()
	h.Frequency = FrequencyCustom

	assert.True(t, IsDueOn(h, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)))
}

func TestValidateTargetDays(t *testing.T) {
	assert.NoError(t, ValidateTargetDays(FrequencyWeekly, []int{0, 6}))
	assert.Error(t, ValidateTargetDays(FrequencyWeekly, []int{7}))
	assert.Error(t, ValidateTargetDays(FrequencyWeekly, []int{-1}))

	assert.NoError(t, ValidateTargetDays(FrequencyMonthly, []int{1, 31}))
	assert.Error(t, ValidateTargetDays(FrequencyMonthly, []int{0}))
	assert.Error(t, ValidateTargetDays(FrequencyMonthly, []int{32}))

	// Daily and custom habits ignore target days.
	assert.NoError(t, ValidateTargetDays(FrequencyDaily, []int{99}))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2025, 3, 1, 23, 50, 0, 0, time.UTC)
	b := time.Date(2025, 3, 2, 0, 10, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysBetween(a, b))
	assert.Equal(t, -1, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}
