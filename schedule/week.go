/*
week.go - Week-submission coordination

PURPOSE:
  Derives a single source of truth for "is this work-week already submitted,
  and with what status", reconciling two independent read paths, and performs
  the submit action with an optimistic local update and rollback on failure.

STATUS DERIVATION (first success wins):
  1. The direct IsWeekSubmitted endpoint; SUBMITTED when it reports
     submission without a finer status
  2. The requester's submission history, matched on week start
  3. NOT_SUBMITTED as the default when both paths fail or find nothing -
     optimistic about letting the user retry rather than blocking on a
     transient read failure

SUBMIT (optimistic concurrency):
  Snapshot the cached status as a memento, set SUBMITTED locally so the UI
  locks edits before the round-trip completes, then call the API. Success
  installs server truth and fires the invalidation hooks; a conflict
  ("already submitted") is terminal and keeps the lock; any other failure
  replays the memento exactly.

Once SUBMITTED/APPROVED/REJECTED the state is terminal from the client's
perspective; reversal is administrative and shows up only as a later status
change on refresh.
*/
package schedule

import (
	"context"
	"sync"
)

// =============================================================================
// WEEK COORDINATOR
// =============================================================================

// WeekCoordinator is the engine's only I/O component and the only one with
// rollback semantics.
type WeekCoordinator struct {
	api RequestAPI

	mu         sync.Mutex
	status     map[Day]WeekStatus
	refreshGen map[Day]uint64 // last-write-wins guard per week key
	submitting map[Day]bool

	// invalidate runs after a successful submit so dependents (submission
	// history, day entries) refetch server truth.
	invalidate []func(weekStart Day)
}

func NewWeekCoordinator(api RequestAPI) *WeekCoordinator {
	return &WeekCoordinator{
		api:        api,
		status:     make(map[Day]WeekStatus),
		refreshGen: make(map[Day]uint64),
		submitting: make(map[Day]bool),
	}
}

// OnInvalidate registers a hook fired after a successful submit.
func (c *WeekCoordinator) OnInvalidate(fn func(weekStart Day)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate = append(c.invalidate, fn)
}

// Status returns the cached status for a week, NOT_SUBMITTED when unknown.
func (c *WeekCoordinator) Status(weekStart Day) WeekStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked(weekStart)
}

func (c *WeekCoordinator) statusLocked(weekStart Day) WeekStatus {
	if s, ok := c.status[weekStart]; ok {
		return s
	}
	return WeekNotSubmitted
}

// Locked reports whether day-level timesheet edits for the week are locked:
// either the week has an envelope or a submit is in flight.
func (c *WeekCoordinator) Locked(weekStart Day) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked(weekStart).Locks() || c.submitting[weekStart]
}

// CanEditDay gates day-level edit affordances by the day's week.
func (c *WeekCoordinator) CanEditDay(d Day) bool {
	return !c.Locked(WeekStart(d))
}

// Refresh re-derives the week's status from the two read paths and installs
// it unless a newer refresh for the same week was issued meanwhile. Read
// failures degrade to NOT_SUBMITTED instead of erroring.
func (c *WeekCoordinator) Refresh(ctx context.Context, weekStart Day) WeekStatus {
	c.mu.Lock()
	c.refreshGen[weekStart]++
	gen := c.refreshGen[weekStart]
	c.mu.Unlock()

	status := c.derive(ctx, weekStart)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.refreshGen[weekStart] != gen {
		// Superseded by a newer refresh; drop this result.
		return c.statusLocked(weekStart)
	}
	c.status[weekStart] = status
	return status
}

func (c *WeekCoordinator) derive(ctx context.Context, weekStart Day) WeekStatus {
	if check, err := c.api.IsWeekSubmitted(ctx, weekStart); err == nil {
		if check.IsSubmitted {
			if check.Status != "" {
				return check.Status
			}
			return WeekSubmitted
		}
		return WeekNotSubmitted
	}

	if history, err := c.api.ListMySubmissions(ctx); err == nil {
		for _, sub := range history {
			if sub.WeekStart == weekStart {
				return sub.Status
			}
		}
	}

	return WeekNotSubmitted
}

// =============================================================================
// SUBMIT - Optimistic write with memento rollback
// =============================================================================

// statusMemento captures the exact pre-submit cache entry so a failed submit
// replays it verbatim.
type statusMemento struct {
	weekStart Day
	previous  WeekStatus
	existed   bool
}

func (c *WeekCoordinator) snapshot(weekStart Day) statusMemento {
	prev, ok := c.status[weekStart]
	return statusMemento{weekStart: weekStart, previous: prev, existed: ok}
}

func (c *WeekCoordinator) restore(m statusMemento) {
	if m.existed {
		c.status[m.weekStart] = m.previous
	} else {
		delete(c.status, m.weekStart)
	}
}

// Submit creates the week's approval envelope. The cached status flips to
// SUBMITTED before the network call so edits lock immediately; on any
// non-conflict failure the pre-submit snapshot is restored exactly.
//
// A week already known to be submitted short-circuits with
// ErrAlreadySubmitted, so two sequential Submit calls can never create two
// envelopes even before the server's idempotency check is reached.
func (c *WeekCoordinator) Submit(ctx context.Context, weekStart Day) (*WeekSubmission, error) {
	c.mu.Lock()
	if c.statusLocked(weekStart).Locks() || c.submitting[weekStart] {
		c.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}

	memento := c.snapshot(weekStart)
	c.status[weekStart] = WeekSubmitted
	c.refreshGen[weekStart]++ // supersede any in-flight refresh
	c.submitting[weekStart] = true
	hooks := make([]func(Day), len(c.invalidate))
	copy(hooks, c.invalidate)
	c.mu.Unlock()

	sub, err := c.api.SubmitWeek(ctx, weekStart)

	c.mu.Lock()
	c.submitting[weekStart] = false
	c.refreshGen[weekStart]++ // the outcome below is newer than any refresh read
	switch {
	case err == nil:
		// Replace the optimistic value with server truth.
		c.status[weekStart] = sub.Status
	case IsConflict(err):
		// The envelope already exists server-side; terminal, keep the lock.
		c.status[weekStart] = WeekSubmitted
	default:
		c.restore(memento)
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	for _, fn := range hooks {
		fn(weekStart)
	}
	return sub, nil
}
