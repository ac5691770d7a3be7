package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"momentumAPI/internal/database"
	"momentumAPI/internal/habit"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests against a real Postgres. Set TEST_DATABASE_URL to run
// them; they create their own user and clean up after themselves.

func setupTestDB(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, database.Migrate(dbURL))

	db, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)

	clerkID := "user_test_" + uuid.NewString()
	_, err = db.Exec(context.Background(), `
	INSERT INTO users (id, clerk_id, email, username)
	VALUES ($1, $2, $3, $4)`,
		uuid.New(), clerkID, fmt.Sprintf("%s@example.com", clerkID), "streaktester")
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		db.Exec(ctx, `DELETE FROM habits WHERE user_id = $1`, clerkID)
		db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
		db.Close()
	})

	return db, clerkID
}

func newTestHabit(t *testing.T, svc *HabitService, clerkID string, start time.Time) *habit.Habit {
	t.Helper()

	h, err := svc.CreateHabit(context.Background(), clerkID, &habit.CreateHabitRequest{
		Name:      "Morning run",
		StartDate: &start,
	})
	require.NoError(t, err)
	return h
}

func checkIn(t *testing.T, svc *HabitService, clerkID string, habitID uuid.UUID, date time.Time) habit.CheckInOutcome {
	t.Helper()

	_, outcome, err := svc.LogHabit(context.Background(), clerkID, habitID, &habit.LogHabitRequest{Date: date})
	require.NoError(t, err)
	return outcome
}

func currentStreak(t *testing.T, svc *HabitService, clerkID string, habitID uuid.UUID) (current, longest int) {
	t.Helper()

	entries, err := svc.GetStreaks(context.Background(), clerkID)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Habit.ID == habitID {
			return e.CurrentStreak, e.LongestStreak
		}
	}
	t.Fatalf("habit %s not in streak list", habitID)
	return 0, 0
}

func TestCheckInFlow(t *testing.T) {
	db, clerkID := setupTestDB(t)
	svc := NewHabitService(db, NewNotificationService(db))

	start := habit.Midnight(time.Now()).AddDate(0, 0, -30)
	h := newTestHabit(t, svc, clerkID, start)

	day := func(n int) time.Time { return start.AddDate(0, 0, n-1) }

	assert.Equal(t, habit.OutcomeStarted, checkIn(t, svc, clerkID, h.ID, day(1)))
	assert.Equal(t, habit.OutcomeExtended, checkIn(t, svc, clerkID, h.ID, day(2)))
	assert.Equal(t, habit.OutcomeExtended, checkIn(t, svc, clerkID, h.ID, day(3)))

	current, longest := currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)

	// Same day again changes nothing.
	assert.Equal(t, habit.OutcomeNoChange, checkIn(t, svc, clerkID, h.ID, day(3)))
	current, _ = currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 3, current)

	// Two missed days fit the default freeze budget.
	assert.Equal(t, habit.OutcomeFrozen, checkIn(t, svc, clerkID, h.ID, day(6)))
	current, longest = currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 4, current)
	assert.Equal(t, 4, longest)

	// Budget is spent, one more missed day breaks the run.
	assert.Equal(t, habit.OutcomeBroken, checkIn(t, svc, clerkID, h.ID, day(8)))
	current, longest = currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 1, current)
	assert.Equal(t, 4, longest)
}

func TestBackfillTriggersReplay(t *testing.T) {
	db, clerkID := setupTestDB(t)
	svc := NewHabitService(db, NewNotificationService(db))

	start := habit.Midnight(time.Now()).AddDate(0, 0, -30)
	h := newTestHabit(t, svc, clerkID, start)

	day := func(n int) time.Time { return start.AddDate(0, 0, n-1) }

	checkIn(t, svc, clerkID, h.ID, day(1))
	checkIn(t, svc, clerkID, h.ID, day(2))
	checkIn(t, svc, clerkID, h.ID, day(6))
	checkIn(t, svc, clerkID, h.ID, day(7))

	// Days 1-2 and 6-7 are separate runs (gap of 3 exceeds the budget).
	current, _ := currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 2, current)

	// Backfilling day 4 shrinks both gaps to one missed day each; the replay
	// stitches everything into one frozen run of 5.
	assert.Equal(t, habit.OutcomeOutOfOrder, checkIn(t, svc, clerkID, h.ID, day(4)))
	current, longest := currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 5, current)
	assert.Equal(t, 5, longest)
}

func TestDeleteLogReplays(t *testing.T) {
	db, clerkID := setupTestDB(t)
	svc := NewHabitService(db, NewNotificationService(db))

	start := habit.Midnight(time.Now()).AddDate(0, 0, -30)
	h := newTestHabit(t, svc, clerkID, start)

	ctx := context.Background()
	day := func(n int) time.Time { return start.AddDate(0, 0, n-1) }

	var logs []*habit.HabitLog
	for n := 1; n <= 3; n++ {
		l, _, err := svc.LogHabit(ctx, clerkID, h.ID, &habit.LogHabitRequest{Date: day(n)})
		require.NoError(t, err)
		logs = append(logs, l)
	}

	current, _ := currentStreak(t, svc, clerkID, h.ID)
	require.Equal(t, 3, current)

	// Removing the last day shortens the streak by one.
	require.NoError(t, svc.DeleteLog(ctx, clerkID, logs[2].ID))
	current, _ = currentStreak(t, svc, clerkID, h.ID)
	assert.Equal(t, 2, current)
}

func TestLogOutsideHabitWindowRejected(t *testing.T) {
	db, clerkID := setupTestDB(t)
	svc := NewHabitService(db, NewNotificationService(db))

	start := habit.Midnight(time.Now()).AddDate(0, 0, -30)
	h := newTestHabit(t, svc, clerkID, start)

	_, _, err := svc.LogHabit(context.Background(), clerkID, h.ID, &habit.LogHabitRequest{
		Date: start.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHabitOwnershipIsEnforced(t *testing.T) {
	db, clerkID := setupTestDB(t)
	svc := NewHabitService(db, NewNotificationService(db))

	start := habit.Midnight(time.Now()).AddDate(0, 0, -30)
	h := newTestHabit(t, svc, clerkID, start)

	_, err := svc.GetHabitWithLogs(context.Background(), "user_someone_else", h.ID, 30)
	assert.ErrorIs(t, err, ErrNotFound)
}
