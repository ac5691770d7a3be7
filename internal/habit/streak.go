package habit

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ReplayWindowDays bounds how far back streak reconciliation looks when it
// has to rebuild from the log. Matches the 365-day lookback used by the
// streak queries; check-ins older than the window are not revisited.
const ReplayWindowDays = 365

type CheckInOutcome int

const (
	// OutcomeNoChange: the day was already counted (idempotent re-check-in).
	OutcomeNoChange CheckInOutcome = iota
	// OutcomeStarted: a new streak was opened.
	OutcomeStarted
	// OutcomeExtended: consecutive day, count incremented.
	OutcomeExtended
	// OutcomeFrozen: skipped days were absorbed by the freeze budget.
	OutcomeFrozen
	// OutcomeBroken: the gap exceeded the remaining freeze budget; the active
	// streak was closed and a new one opened at the check-in date.
	OutcomeBroken
	// OutcomeOutOfOrder: the check-in predates the streak's last counted day.
	// Incremental updates cannot reorder past decisions, so the caller must
	// rebuild with Replay.
	OutcomeOutOfOrder
)

func (o CheckInOutcome) String() string {
	switch o {
	case OutcomeNoChange:
		return "no_change"
	case OutcomeStarted:
		return "started"
	case OutcomeExtended:
		return "extended"
	case OutcomeFrozen:
		return "frozen"
	case OutcomeBroken:
		return "broken"
	case OutcomeOutOfOrder:
		return "out_of_order"
	default:
		return "unknown"
	}
}

// Ledger owns the streak state for one habit while a check-in or removal is
// being applied. It is loaded inside a transaction (with the streak rows
// locked), mutated, and written back before commit.
type Ledger struct {
	Active *Streak
	// Closed collects streaks that were closed during this operation and
	// still need to be written back.
	Closed []*Streak

	habitID      uuid.UUID
	userID       string
	maxFreezes   int
	priorLongest int
}

// NewLedger wraps the habit's current active streak (nil if none).
// priorLongest is the longest run ever recorded for the habit, so a fresh
// streak never reports a shorter "longest" than history does.
func NewLedger(habitID uuid.UUID, userID string, active *Streak, maxFreezes, priorLongest int) *Ledger {
	if maxFreezes <= 0 {
		maxFreezes = DefaultMaxFreezes
	}
	if active != nil && active.LongestCount > priorLongest {
		priorLongest = active.LongestCount
	}
	return &Ledger{
		Active:       active,
		habitID:      habitID,
		userID:       userID,
		maxFreezes:   maxFreezes,
		priorLongest: priorLongest,
	}
}

// RecordCheckIn applies a completed check-in for one calendar day.
func (l *Ledger) RecordCheckIn(day time.Time) CheckInOutcome {
	day = Midnight(day)

	if l.Active == nil {
		l.Active = l.open(day)
		return OutcomeStarted
	}

	s := l.Active
	if s.LastCheckIn == nil {
		// Should not happen for a persisted streak; count the day.
		s.CurrentCount = 1
		s.LastCheckIn = &day
		l.bumpLongest()
		return OutcomeExtended
	}

	gap := DaysBetween(*s.LastCheckIn, day)
	switch {
	case gap < 0:
		return OutcomeOutOfOrder
	case gap == 0:
		return OutcomeNoChange
	case gap == 1:
		s.CurrentCount++
		s.LastCheckIn = &day
		l.bumpLongest()
		return OutcomeExtended
	}

	missed := gap - 1
	if missed <= s.MaxFreezes-s.FreezeCount {
		s.FreezeCount += missed
		s.CurrentCount++
		s.LastCheckIn = &day
		l.bumpLongest()
		return OutcomeFrozen
	}

	// Freeze budget exhausted: close out the run and start over at day.
	l.close(s)
	l.Active = l.open(day)
	return OutcomeBroken
}

func (l *Ledger) open(day time.Time) *Streak {
	now := time.Now()
	longest := l.priorLongest
	if longest < 1 {
		longest = 1
	}
	return &Streak{
		ID:           uuid.New(),
		HabitID:      l.habitID,
		UserID:       l.userID,
		StartDate:    day,
		CurrentCount: 1,
		LongestCount: longest,
		IsActive:     true,
		LastCheckIn:  &day,
		MaxFreezes:   l.maxFreezes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (l *Ledger) close(s *Streak) {
	end := *s.LastCheckIn
	s.IsActive = false
	s.EndDate = &end
	l.Closed = append(l.Closed, s)
	if s.LongestCount > l.priorLongest {
		l.priorLongest = s.LongestCount
	}
}

func (l *Ledger) bumpLongest() {
	if l.Active.CurrentCount > l.Active.LongestCount {
		l.Active.LongestCount = l.Active.CurrentCount
	}
	if l.Active.LongestCount > l.priorLongest {
		l.priorLongest = l.Active.LongestCount
	}
}

// Replay rebuilds the full streak history for a habit from its completed log
// dates by running every day forward through the check-in rules. This is the
// reconciliation path for out-of-order backfills and log deletions, where
// patching the existing rows incrementally could not undo earlier decisions.
//
// The returned slice is in chronological order; the final element (if any) is
// the active streak. priorLongest seeds the longest-run bookkeeping so it
// stays monotone across rebuilds.
func Replay(habitID uuid.UUID, userID string, days []time.Time, maxFreezes, priorLongest int) []*Streak {
	norm := make([]time.Time, 0, len(days))
	seen := make(map[time.Time]bool, len(days))
	for _, d := range days {
		d = Midnight(d)
		if !seen[d] {
			seen[d] = true
			norm = append(norm, d)
		}
	}
	sort.Slice(norm, func(i, j int) bool { return norm[i].Before(norm[j]) })

	l := NewLedger(habitID, userID, nil, maxFreezes, priorLongest)
	for _, d := range norm {
		l.RecordCheckIn(d)
	}

	if l.Active == nil {
		return l.Closed
	}
	return append(l.Closed, l.Active)
}
