package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"momentumAPI/internal/habit"
	"momentumAPI/internal/notification"
	"momentumAPI/internal/stats"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HabitService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewHabitService(db *pgxpool.Pool, notifications *NotificationService) *HabitService {
	return &HabitService{db: db, notifications: notifications}
}

const habitColumns = `id, user_id, name, description, habit_type, frequency, target_count,
	target_days, color, icon, is_active, is_archived, start_date, end_date, created_at, updated_at`

func scanHabit(row pgx.Row) (*habit.Habit, error) {
	h := &habit.Habit{}
	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Description,
		&h.HabitType,
		&h.Frequency,
		&h.TargetCount,
		&h.TargetDays,
		&h.Color,
		&h.Icon,
		&h.IsActive,
		&h.IsArchived,
		&h.StartDate,
		&h.EndDate,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}

	habitType := req.HabitType
	if habitType == "" {
		habitType = habit.TypeBuild
	}
	frequency := req.Frequency
	if frequency == "" {
		frequency = habit.FrequencyDaily
	}
	if err := habit.ValidateTargetDays(frequency, req.TargetDays); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	targetCount := req.TargetCount
	if targetCount <= 0 {
		targetCount = 1
	}
	startDate := time.Now()
	if req.StartDate != nil {
		startDate = *req.StartDate
	}
	if req.EndDate != nil && habit.Midnight(*req.EndDate).Before(habit.Midnight(startDate)) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidArgument)
	}

	query := `
	INSERT INTO habits (id, user_id, name, description, habit_type, frequency, target_count,
		target_days, color, icon, start_date, end_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	RETURNING ` + habitColumns

	h, err := scanHabit(s.db.QueryRow(
		ctx,
		query,
		uuid.New(),
		clerkID,
		req.Name,
		req.Description,
		habitType,
		frequency,
		targetCount,
		req.TargetDays,
		req.Color,
		req.Icon,
		habit.Midnight(startDate),
		req.EndDate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return h, nil
}

func (s *HabitService) GetHabits(ctx context.Context, clerkID string, activeOnly bool, limit, offset int) ([]*habit.Habit, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `
	SELECT ` + habitColumns + `
	FROM habits
	WHERE user_id = $1 AND NOT is_deleted
	`
	if activeOnly {
		query += ` AND is_active AND NOT is_archived`
	}
	query += ` ORDER BY created_at ASC LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, clerkID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	habits := []*habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *HabitService) getHabitByUser(ctx context.Context, q queryRower, clerkID string, habitID uuid.UUID) (*habit.Habit, error) {
	query := `
	SELECT ` + habitColumns + `
	FROM habits
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	`
	h, err := scanHabit(q.QueryRow(ctx, query, habitID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return h, nil
}

// GetHabitWithLogs returns the habit detail view with its logs for the last
// `days` days and the current streak length.
func (s *HabitService) GetHabitWithLogs(ctx context.Context, clerkID string, habitID uuid.UUID, days int) (*habit.HabitWithLogs, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	h, err := s.getHabitByUser(ctx, s.db, clerkID, habitID)
	if err != nil {
		return nil, err
	}

	since := habit.Midnight(time.Now()).AddDate(0, 0, -days)
	logs, err := s.queryLogs(ctx, `
	SELECT `+logColumns+`
	FROM habit_logs
	WHERE habit_id = $1 AND log_date >= $2
	ORDER BY log_date DESC`, habitID, since)
	if err != nil {
		return nil, err
	}

	var current int
	err = s.db.QueryRow(ctx, `
	SELECT current_count FROM habit_streaks
	WHERE habit_id = $1 AND is_active`, habitID).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return &habit.HabitWithLogs{Habit: h, Logs: logs, CurrentStreak: current}, nil
}

func (s *HabitService) UpdateHabit(ctx context.Context, clerkID string, habitID uuid.UUID, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	if req.Frequency != nil || req.TargetDays != nil {
		// Validate against the frequency that will be in effect after the update.
		current, err := s.getHabitByUser(ctx, s.db, clerkID, habitID)
		if err != nil {
			return nil, err
		}
		freq := current.Frequency
		if req.Frequency != nil {
			freq = *req.Frequency
		}
		days := current.TargetDays
		if req.TargetDays != nil {
			days = req.TargetDays
		}
		if err := habit.ValidateTargetDays(freq, days); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}

	query := `
	UPDATE habits
	SET
		name = COALESCE($3, name),
		description = COALESCE($4, description),
		habit_type = COALESCE($5, habit_type),
		frequency = COALESCE($6, frequency),
		target_count = COALESCE($7, target_count),
		target_days = COALESCE($8, target_days),
		color = COALESCE($9, color),
		icon = COALESCE($10, icon),
		is_active = COALESCE($11, is_active),
		end_date = COALESCE($12, end_date),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING ` + habitColumns

	var targetDays any
	if req.TargetDays != nil {
		targetDays = req.TargetDays
	}

	h, err := scanHabit(s.db.QueryRow(
		ctx,
		query,
		habitID,
		clerkID,
		req.Name,
		req.Description,
		req.HabitType,
		req.Frequency,
		req.TargetCount,
		targetDays,
		req.Color,
		req.Icon,
		req.IsActive,
		req.EndDate,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) ArchiveHabit(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.Habit, error) {
	query := `
	UPDATE habits
	SET is_archived = TRUE, is_active = FALSE, updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	RETURNING ` + habitColumns

	h, err := scanHabit(s.db.QueryRow(ctx, query, habitID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to archive habit: %w", err)
	}
	return h, nil
}

// DeleteHabit soft-deletes; logs and streaks stay behind the flag and are
// only removed if the row is ever hard-deleted (FK cascade).
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	result, err := s.db.Exec(ctx, `
	UPDATE habits
	SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted`, habitID, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const logColumns = `id, habit_id, user_id, log_date, completed, value, completion_count, notes, created_at, updated_at`

func scanLog(row pgx.Row) (*habit.HabitLog, error) {
	l := &habit.HabitLog{}
	err := row.Scan(
		&l.ID,
		&l.HabitID,
		&l.UserID,
		&l.LogDate,
		&l.Completed,
		&l.Value,
		&l.CompletionCount,
		&l.Notes,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *HabitService) queryLogs(ctx context.Context, query string, args ...any) ([]*habit.HabitLog, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	logs := []*habit.HabitLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// LogHabit is the check-in path. The log upsert and the streak update are one
// transaction; either both land or neither does.
func (s *HabitService) LogHabit(ctx context.Context, clerkID string, habitID uuid.UUID, req *habit.LogHabitRequest) (*habit.HabitLog, habit.CheckInOutcome, error) {
	outcome := habit.OutcomeNoChange
	if req.Date.IsZero() {
		return nil, outcome, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}
	logDate := habit.Midnight(req.Date)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, outcome, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Locking the habit row serializes concurrent check-ins for the same
	// habit; the ledger below is read-modify-write.
	h, err := s.lockHabit(ctx, tx, clerkID, habitID)
	if err != nil {
		return nil, outcome, err
	}

	if logDate.Before(habit.Midnight(h.StartDate)) {
		return nil, outcome, fmt.Errorf("%w: log date before habit start date", ErrInvalidArgument)
	}
	if h.EndDate != nil && logDate.After(habit.Midnight(*h.EndDate)) {
		return nil, outcome, fmt.Errorf("%w: log date after habit end date", ErrInvalidArgument)
	}

	upsert := `
	INSERT INTO habit_logs (id, habit_id, user_id, log_date, completed, value, completion_count, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	ON CONFLICT (habit_id, log_date) DO UPDATE SET
		completed = EXCLUDED.completed,
		value = EXCLUDED.value,
		completion_count = EXCLUDED.completion_count,
		notes = EXCLUDED.notes,
		updated_at = NOW()
	RETURNING ` + logColumns

	completionCount := 0
	if completed {
		completionCount = 1
	}
	hlog, err := scanLog(tx.QueryRow(ctx, upsert, uuid.New(), h.ID, clerkID, logDate, completed, req.Value, completionCount, req.Notes))
	if err != nil {
		return nil, outcome, fmt.Errorf("failed to upsert log: %w", err)
	}

	outcome, milestone, err := s.reconcileStreak(ctx, tx, h, logDate, completed)
	if err != nil {
		return nil, outcome, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, outcome, fmt.Errorf("failed to commit check-in: %w", err)
	}

	if milestone > 0 && s.notifications != nil {
		s.notifications.NotifyStreakMilestone(ctx, clerkID, h, milestone)
	}

	return hlog, outcome, nil
}

// DeleteLog removes a check-in record and reconciles the streak from the
// remaining log, all in one transaction.
func (s *HabitService) DeleteLog(ctx context.Context, clerkID string, logID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Ownership runs through the parent habit.
	var habitID uuid.UUID
	err = tx.QueryRow(ctx, `
	SELECT hl.habit_id
	FROM habit_logs hl
	JOIN habits h ON h.id = hl.habit_id
	WHERE hl.id = $1 AND h.user_id = $2 AND NOT h.is_deleted`, logID, clerkID).Scan(&habitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to resolve log: %w", err)
	}

	h, err := s.lockHabit(ctx, tx, clerkID, habitID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM habit_logs WHERE id = $1`, logID); err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}

	if err := s.replayStreaks(ctx, tx, h); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *HabitService) GetHabitLogs(ctx context.Context, clerkID string, habitID uuid.UUID, start, end time.Time) ([]*habit.HabitLog, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidArgument)
	}
	if _, err := s.getHabitByUser(ctx, s.db, clerkID, habitID); err != nil {
		return nil, err
	}

	return s.queryLogs(ctx, `
	SELECT `+logColumns+`
	FROM habit_logs
	WHERE habit_id = $1 AND log_date >= $2 AND log_date <= $3
	ORDER BY log_date ASC`, habitID, habit.Midnight(start), habit.Midnight(end))
}

// GetUserLogs returns every habit log for the user in a date range, for
// calendar views.
func (s *HabitService) GetUserLogs(ctx context.Context, clerkID string, start, end time.Time) ([]*habit.HabitLog, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", ErrInvalidArgument)
	}

	return s.queryLogs(ctx, `
	SELECT `+logColumns+`
	FROM habit_logs
	WHERE user_id = $1 AND log_date >= $2 AND log_date <= $3
	ORDER BY log_date DESC, created_at DESC`, clerkID, habit.Midnight(start), habit.Midnight(end))
}

// lockHabit resolves the habit by owner and takes a row lock on it for the
// duration of the transaction.
func (s *HabitService) lockHabit(ctx context.Context, tx pgx.Tx, clerkID string, habitID uuid.UUID) (*habit.Habit, error) {
	query := `
	SELECT ` + habitColumns + `
	FROM habits
	WHERE id = $1 AND user_id = $2 AND NOT is_deleted
	FOR UPDATE`

	h, err := scanHabit(tx.QueryRow(ctx, query, habitID, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock habit: %w", err)
	}
	return h, nil
}

const streakColumns = `id, habit_id, user_id, start_date, end_date, current_count, longest_count,
	is_active, last_check_in, freeze_count, max_freezes, created_at, updated_at`

func scanStreak(row pgx.Row) (*habit.Streak, error) {
	st := &habit.Streak{}
	err := row.Scan(
		&st.ID,
		&st.HabitID,
		&st.UserID,
		&st.StartDate,
		&st.EndDate,
		&st.CurrentCount,
		&st.LongestCount,
		&st.IsActive,
		&st.LastCheckIn,
		&st.FreezeCount,
		&st.MaxFreezes,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

// reconcileStreak applies one check-in (or un-completion) to the habit's
// streak state. Returns the streak outcome and a milestone streak length
// when one was crossed.
func (s *HabitService) reconcileStreak(ctx context.Context, tx pgx.Tx, h *habit.Habit, day time.Time, completed bool) (habit.CheckInOutcome, int, error) {
	if !completed {
		// Marking a day not-completed is remove-check-in semantics: the only
		// safe way to shrink a streak is to rebuild it from the log.
		return habit.OutcomeNoChange, 0, s.replayStreaks(ctx, tx, h)
	}

	active, priorLongest, err := s.loadStreakState(ctx, tx, h.ID)
	if err != nil {
		return habit.OutcomeNoChange, 0, err
	}

	maxFreezes := habit.DefaultMaxFreezes
	if active != nil {
		maxFreezes = active.MaxFreezes
	}
	prevCount := 0
	if active != nil {
		prevCount = active.CurrentCount
	}

	ledger := habit.NewLedger(h.ID, h.UserID, active, maxFreezes, priorLongest)
	outcome := ledger.RecordCheckIn(day)

	if outcome == habit.OutcomeOutOfOrder {
		// Backfill into the middle of the streak window: replay instead of
		// patching past decisions.
		if err := s.replayStreaks(ctx, tx, h); err != nil {
			return outcome, 0, err
		}
		return outcome, 0, nil
	}

	for _, closed := range ledger.Closed {
		if err := s.saveStreak(ctx, tx, closed); err != nil {
			return outcome, 0, err
		}
	}
	if err := s.saveStreak(ctx, tx, ledger.Active); err != nil {
		return outcome, 0, err
	}

	if m, ok := notification.IsMilestone(prevCount, ledger.Active.CurrentCount); ok {
		return outcome, m, nil
	}
	return outcome, 0, nil
}

// loadStreakState fetches the active streak row (locked) and the longest run
// ever recorded for the habit.
func (s *HabitService) loadStreakState(ctx context.Context, tx pgx.Tx, habitID uuid.UUID) (*habit.Streak, int, error) {
	rows, err := tx.Query(ctx, `
	SELECT `+streakColumns+`
	FROM habit_streaks
	WHERE habit_id = $1 AND is_active
	FOR UPDATE`, habitID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load streak: %w", err)
	}
	defer rows.Close()

	var active *habit.Streak
	for rows.Next() {
		st, err := scanStreak(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan streak: %w", err)
		}
		if active != nil {
			// The partial unique index makes this unreachable; fail loudly
			// rather than guessing which row to trust.
			return nil, 0, fmt.Errorf("%w: habit %s has multiple active streaks", ErrConflict, habitID)
		}
		active = st
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var priorLongest int
	err = tx.QueryRow(ctx, `
	SELECT COALESCE(MAX(longest_count), 0) FROM habit_streaks WHERE habit_id = $1`, habitID).Scan(&priorLongest)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load longest streak: %w", err)
	}

	return active, priorLongest, nil
}

func (s *HabitService) saveStreak(ctx context.Context, tx pgx.Tx, st *habit.Streak) error {
	_, err := tx.Exec(ctx, `
	INSERT INTO habit_streaks (id, habit_id, user_id, start_date, end_date, current_count,
		longest_count, is_active, last_check_in, freeze_count, max_freezes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE SET
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		current_count = EXCLUDED.current_count,
		longest_count = EXCLUDED.longest_count,
		is_active = EXCLUDED.is_active,
		last_check_in = EXCLUDED.last_check_in,
		freeze_count = EXCLUDED.freeze_count,
		updated_at = NOW()`,
		st.ID,
		st.HabitID,
		st.UserID,
		st.StartDate,
		st.EndDate,
		st.CurrentCount,
		st.LongestCount,
		st.IsActive,
		st.LastCheckIn,
		st.FreezeCount,
		st.MaxFreezes,
	)
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}

// replayStreaks rebuilds the habit's streak rows from its completed log dates
// inside the replay window. Rows that ended before the window are left alone;
// check-ins older than the window do not take part in reconciliation.
func (s *HabitService) replayStreaks(ctx context.Context, tx pgx.Tx, h *habit.Habit) error {
	_, priorLongest, err := s.loadStreakState(ctx, tx, h.ID)
	if err != nil {
		return err
	}

	windowStart := habit.Midnight(time.Now()).AddDate(0, 0, -habit.ReplayWindowDays)

	var maxFreezes int
	err = tx.QueryRow(ctx, `
	SELECT COALESCE(MAX(max_freezes), $2) FROM habit_streaks WHERE habit_id = $1`,
		h.ID, habit.DefaultMaxFreezes).Scan(&maxFreezes)
	if err != nil {
		return fmt.Errorf("failed to load freeze budget: %w", err)
	}

	rows, err := tx.Query(ctx, `
	SELECT log_date FROM habit_logs
	WHERE habit_id = $1 AND completed AND log_date >= $2
	ORDER BY log_date ASC`, h.ID, windowStart)
	if err != nil {
		return fmt.Errorf("failed to load log dates: %w", err)
	}
	days := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan log date: %w", err)
		}
		days = append(days, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
	DELETE FROM habit_streaks
	WHERE habit_id = $1 AND (is_active OR end_date >= $2)`, h.ID, windowStart)
	if err != nil {
		return fmt.Errorf("failed to clear streaks for replay: %w", err)
	}

	for _, st := range habit.Replay(h.ID, h.UserID, days, maxFreezes, priorLongest) {
		if err := s.saveStreak(ctx, tx, st); err != nil {
			return err
		}
	}
	return nil
}

// queryRower lets habit lookups run against the pool or inside a transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetTodayHabits is the "due today" view: every active habit whose schedule
// selects today, with its completion state.
func (s *HabitService) GetTodayHabits(ctx context.Context, clerkID string) ([]*stats.TodayHabit, error) {
	today := habit.Midnight(time.Now())

	query := `
	SELECT ` + habitColumns + `
	FROM habits
	WHERE user_id = $1 AND NOT is_deleted AND is_active AND NOT is_archived
	ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	defer rows.Close()

	habits := []*habit.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := []*stats.TodayHabit{}
	for _, h := range habits {
		if !habit.IsDueOn(h, today) {
			continue
		}

		entry := &stats.TodayHabit{Habit: h}
		l, err := scanLog(s.db.QueryRow(ctx, `
		SELECT `+logColumns+`
		FROM habit_logs
		WHERE habit_id = $1 AND log_date = $2`, h.ID, today))
		if err == nil {
			entry.Log = l
			entry.Completed = l.Completed
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to get today's log: %w", err)
		}

		result = append(result, entry)
	}

	return result, nil
}

// GetStats aggregates the habit dashboard numbers.
func (s *HabitService) GetStats(ctx context.Context, clerkID string) (*stats.HabitStats, error) {
	st := &stats.HabitStats{}

	err := s.db.QueryRow(ctx, `
	SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE is_active AND NOT is_archived)
	FROM habits
	WHERE user_id = $1 AND NOT is_deleted`, clerkID).Scan(&st.Total, &st.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to count habits: %w", err)
	}
	st.Archived = st.Total - st.Active

	today, err := s.GetTodayHabits(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	st.TotalToday = len(today)
	for _, entry := range today {
		if entry.Completed {
			st.CompletedToday++
		}
	}
	if st.TotalToday > 0 {
		rate := float64(st.CompletedToday) / float64(st.TotalToday) * 100
		st.CompletionRateToday = float64(int(rate*10+0.5)) / 10
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	err = s.db.QueryRow(ctx, `
	SELECT COUNT(*)
	FROM habit_logs hl
	JOIN habits h ON h.id = hl.habit_id
	WHERE h.user_id = $1 AND NOT h.is_deleted AND hl.completed AND hl.log_date >= $2`,
		clerkID, monthStart).Scan(&st.MonthlyLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly logs: %w", err)
	}

	return st, nil
}

// GetStreaks ranks the user's active habits by current streak length.
// Ties keep habit creation order so the ranking is stable.
func (s *HabitService) GetStreaks(ctx context.Context, clerkID string) ([]*stats.StreakEntry, error) {
	query := `
	SELECT h.id, h.user_id, h.name, h.description, h.habit_type, h.frequency, h.target_count,
		h.target_days, h.color, h.icon, h.is_active, h.is_archived, h.start_date, h.end_date,
		h.created_at, h.updated_at,
		COALESCE(s.current_count, 0),
		COALESCE((SELECT MAX(longest_count) FROM habit_streaks WHERE habit_id = h.id), 0)
	FROM habits h
	LEFT JOIN habit_streaks s ON s.habit_id = h.id AND s.is_active
	WHERE h.user_id = $1 AND NOT h.is_deleted AND h.is_active AND NOT h.is_archived
	ORDER BY COALESCE(s.current_count, 0) DESC, h.created_at ASC`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get streaks: %w", err)
	}
	defer rows.Close()

	entries := []*stats.StreakEntry{}
	for rows.Next() {
		h := &habit.Habit{}
		entry := &stats.StreakEntry{Habit: h}
		err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.Name,
			&h.Description,
			&h.HabitType,
			&h.Frequency,
			&h.TargetCount,
			&h.TargetDays,
			&h.Color,
			&h.Icon,
			&h.IsActive,
			&h.IsArchived,
			&h.StartDate,
			&h.EndDate,
			&h.CreatedAt,
			&h.UpdatedAt,
			&entry.CurrentStreak,
			&entry.LongestStreak,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Printf("GetStreaks: %d active habits for %s", len(entries), clerkID)
	return entries, nil
}
