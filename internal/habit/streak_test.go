package habit

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n-1)
}

func newTestLedger() *Ledger {
	return NewLedger(uuid.New(), "user_test", nil, DefaultMaxFreezes, 0)
}

func TestConsecutiveCheckInsCountUp(t *testing.T) {
	l := newTestLedger()

	for n := 1; n <= 10; n++ {
		l.RecordCheckIn(day(n))
	}

	require.NotNil(t, l.Active)
	assert.Equal(t, 10, l.Active.CurrentCount)
	assert.Equal(t, 10, l.Active.LongestCount)
	assert.Equal(t, 0, l.Active.FreezeCount)
	assert.Empty(t, l.Closed)
	assert.Equal(t, day(10), *l.Active.LastCheckIn)
}

func TestFirstCheckInStartsStreak(t *testing.T) {
	l := newTestLedger()

	outcome := l.RecordCheckIn(day(1))

	assert.Equal(t, OutcomeStarted, outcome)
	require.NotNil(t, l.Active)
	assert.Equal(t, 1, l.Active.CurrentCount)
	assert.Equal(t, day(1), l.Active.StartDate)
	assert.True(t, l.Active.IsActive)
}

func TestSameDayCheckInIsIdempotent(t *testing.T) {
	l := newTestLedger()
	l.RecordCheckIn(day(1))
	l.RecordCheckIn(day(2))

	outcome := l.RecordCheckIn(day(2))

	assert.Equal(t, OutcomeNoChange, outcome)
	assert.Equal(t, 2, l.Active.CurrentCount)
	assert.Equal(t, 2, l.Active.LongestCount)
}

func TestGapWithinFreezeBudgetSurvives(t *testing.T) {
	l := newTestLedger()
	l.RecordCheckIn(day(1))
	l.RecordCheckIn(day(2))
	l.RecordCheckIn(day(3))

	// Skip days 4 and 5; with max_freezes=2 the streak must survive.
	outcome := l.RecordCheckIn(day(6))

	assert.Equal(t, OutcomeFrozen, outcome)
	assert.Equal(t, 4, l.Active.CurrentCount)
	assert.Equal(t, 2, l.Active.FreezeCount)
	assert.Empty(t, l.Closed)
}

func TestGapBeyondFreezeBudgetBreaks(t *testing.T) {
	l := newTestLedger()
	l.RecordCheckIn(day(1))

	// Three missed days against a budget of two.
	outcome := l.RecordCheckIn(day(5))

	assert.Equal(t, OutcomeBroken, outcome)
	require.Len(t, l.Closed, 1)
	assert.False(t, l.Closed[0].IsActive)
	assert.Equal(t, day(1), *l.Closed[0].EndDate)
	assert.Equal(t, 1, l.Active.CurrentCount)
	assert.Equal(t, day(5), l.Active.StartDate)
}

// The worked scenario: check in days 1-3, skip 4-5 (budget spent), check in
// day 6, then skip day 7. The next check-in breaks the streak because no
// freeze budget remains.
func TestFreezeBudgetExhaustedThenBreak(t *testing.T) {
	l := newTestLedger()
	for _, n := range []int{1, 2, 3} {
		l.RecordCheckIn(day(n))
	}
	require.Equal(t, OutcomeFrozen, l.RecordCheckIn(day(6)))
	require.Equal(t, 4, l.Active.CurrentCount)
	require.Equal(t, 2, l.Active.FreezeCount)

	outcome := l.RecordCheckIn(day(8))

	assert.Equal(t, OutcomeBroken, outcome)
	require.Len(t, l.Closed, 1)
	closed := l.Closed[0]
	assert.Equal(t, day(6), *closed.EndDate)
	assert.Equal(t, 4, closed.LongestCount)

	assert.Equal(t, 1, l.Active.CurrentCount)
	assert.Equal(t, day(8), l.Active.StartDate)
	assert.Equal(t, 0, l.Active.FreezeCount)
	// Longest ever is preserved on the new streak.
	assert.Equal(t, 4, l.Active.LongestCount)
}

func TestBackfillIsOutOfOrder(t *testing.T) {
	l := newTestLedger()
	l.RecordCheckIn(day(3))
	l.RecordCheckIn(day(4))

	outcome := l.RecordCheckIn(day(2))

	assert.Equal(t, OutcomeOutOfOrder, outcome)
	// Nothing changed; the caller is expected to replay.
	assert.Equal(t, 2, l.Active.CurrentCount)
}

func TestReplayMergesBackfilledDay(t *testing.T) {
	habitID := uuid.New()

	// Days 1,2 then 4,5 checked in; day 3 backfilled afterwards.
	streaks := Replay(habitID, "user_test", []time.Time{
		day(1), day(2), day(4), day(5), day(3),
	}, DefaultMaxFreezes, 0)

	require.Len(t, streaks, 1)
	active := streaks[0]
	assert.True(t, active.IsActive)
	assert.Equal(t, 5, active.CurrentCount)
	assert.Equal(t, 0, active.FreezeCount)
	assert.Equal(t, day(1), active.StartDate)
}

func TestReplayAfterRemovalDecrementsByOne(t *testing.T) {
	habitID := uuid.New()
	days := []time.Time{day(1), day(2), day(3), day(4)}

	before := Replay(habitID, "u", days, DefaultMaxFreezes, 0)
	require.Len(t, before, 1)
	require.Equal(t, 4, before[0].CurrentCount)

	// Remove the most recent check-in.
	after := Replay(habitID, "u", days[:3], DefaultMaxFreezes, 0)

	require.Len(t, after, 1)
	assert.Equal(t, 3, after[0].CurrentCount)
	assert.Equal(t, day(3), *after[0].LastCheckIn)
	// Longest never decreases across removals.
	longest := Replay(habitID, "u", days[:3], DefaultMaxFreezes, before[0].LongestCount)
	assert.Equal(t, 4, longest[0].LongestCount)
}

func TestReplayRemovalCanMergePriorRuns(t *testing.T) {
	habitID := uuid.New()

	// Day 10 far from days 1-3: two runs.
	split := Replay(habitID, "u", []time.Time{day(1), day(2), day(3), day(10)}, DefaultMaxFreezes, 0)
	require.Len(t, split, 2)
	assert.False(t, split[0].IsActive)
	assert.True(t, split[1].IsActive)

	// Deleting day 10 leaves a single run ending at day 3.
	merged := Replay(habitID, "u", []time.Time{day(1), day(2), day(3)}, DefaultMaxFreezes, 0)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].IsActive)
	assert.Equal(t, 3, merged[0].CurrentCount)
}

func TestReplaySplitsOnLargeGaps(t *testing.T) {
	habitID := uuid.New()

	streaks := Replay(habitID, "u", []time.Time{
		day(1), day(2), day(3), // run one
		day(20), day(21), // run two
		day(40), // active run
	}, DefaultMaxFreezes, 0)

	require.Len(t, streaks, 3)
	assert.Equal(t, 3, streaks[0].CurrentCount)
	assert.Equal(t, day(3), *streaks[0].EndDate)
	assert.Equal(t, 2, streaks[1].CurrentCount)
	assert.True(t, streaks[2].IsActive)
	assert.Equal(t, 1, streaks[2].CurrentCount)
	assert.Equal(t, 3, streaks[2].LongestCount)
}

func TestReplayUsesFreezesWithinRun(t *testing.T) {
	habitID := uuid.New()

	streaks := Replay(habitID, "u", []time.Time{
		day(1), day(3), day(5), // two single-day gaps, both frozen
	}, DefaultMaxFreezes, 0)

	require.Len(t, streaks, 1)
	assert.Equal(t, 3, streaks[0].CurrentCount)
	assert.Equal(t, 2, streaks[0].FreezeCount)
}

func TestReplayEmptyLogYieldsNoStreaks(t *testing.T) {
	streaks := Replay(uuid.New(), "u", nil, DefaultMaxFreezes, 3)
	assert.Empty(t, streaks)
}

func TestLongestCountIsMonotone(t *testing.T) {
	l := newTestLedger()

	longest := 0
	check := func(d time.Time) {
		l.RecordCheckIn(d)
		require.GreaterOrEqual(t, l.Active.LongestCount, longest)
		longest = l.Active.LongestCount
	}

	for _, n := range []int{1, 2, 3, 4, 10, 11, 30, 31, 32, 33, 34} {
		check(day(n))
	}
	assert.Equal(t, 5, longest)
}

func TestCustomFreezeBudget(t *testing.T) {
	l := NewLedger(uuid.New(), "u", nil, 5, 0)
	l.RecordCheckIn(day(1))

	// Five missed days, budget of five: survives.
	outcome := l.RecordCheckIn(day(7))

	assert.Equal(t, OutcomeFrozen, outcome)
	assert.Equal(t, 2, l.Active.CurrentCount)
	assert.Equal(t, 5, l.Active.FreezeCount)

	// One more missed day now breaks.
	assert.Equal(t, OutcomeBroken, l.RecordCheckIn(day(9)))
}

func TestLedgerResumesPersistedStreak(t *testing.T) {
	last := day(4)
	active := &Streak{
		ID:           uuid.New(),
		HabitID:      uuid.New(),
		UserID:       "u",
		StartDate:    day(1),
		CurrentCount: 4,
		LongestCount: 9,
		IsActive:     true,
		LastCheckIn:  &last,
		MaxFreezes:   DefaultMaxFreezes,
	}
	l := NewLedger(active.HabitID, "u", active, active.MaxFreezes, 9)

	require.Equal(t, OutcomeExtended, l.RecordCheckIn(day(5)))
	assert.Equal(t, 5, active.CurrentCount)
	assert.Equal(t, 9, active.LongestCount)

	// Break it; the replacement keeps the historical longest.
	require.Equal(t, OutcomeBroken, l.RecordCheckIn(day(20)))
	assert.Equal(t, 9, l.Active.LongestCount)
}
