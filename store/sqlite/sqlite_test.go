package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func pendingOff(id schedule.RequestID, user schedule.UserID, start, end schedule.Day) schedule.Request {
	now := time.Now().UTC().Truncate(time.Second)
	return schedule.Request{
		ID:          id,
		UserID:      user,
		RequestType: schedule.RequestOff,
		PeriodType:  schedule.PeriodFullDay,
		StartDate:   start,
		EndDate:     end,
		Status:      schedule.StatusPending,
		Reason:      "Family event",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// =============================================================================
// REQUESTS
// =============================================================================

func TestRequestRoundTrip(t *testing.T) {
	// GIVEN a saved request
	store := newTestStore(t)
	ctx := context.Background()
	original := pendingOff("req-1", "alice", "2024-06-10", "2024-06-12")
	require.NoError(t, store.SaveRequest(ctx, original))

	// WHEN it is read back
	loaded, err := store.GetRequest(ctx, "req-1")
	require.NoError(t, err)

	// THEN every persisted field survives
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.UserID, loaded.UserID)
	assert.Equal(t, original.RequestType, loaded.RequestType)
	assert.Equal(t, original.StartDate, loaded.StartDate)
	assert.Equal(t, original.EndDate, loaded.EndDate)
	assert.Equal(t, original.Status, loaded.Status)
	assert.Equal(t, original.Reason, loaded.Reason)
}

func TestGetRequest_MissingIsTypedError(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRequest(context.Background(), "req-missing")

	assert.ErrorIs(t, err, schedule.ErrRequestNotFound)
}

func TestListRequests_MonthIntersection(t *testing.T) {
	// GIVEN a request straddling the May/June boundary and one in July
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRequest(ctx, pendingOff("req-1", "alice", "2024-05-30", "2024-06-03")))
	require.NoError(t, store.SaveRequest(ctx, pendingOff("req-2", "alice", "2024-07-01", "2024-07-01")))
	require.NoError(t, store.SaveRequest(ctx, pendingOff("req-3", "bob", "2024-06-10", "2024-06-10")))

	// WHEN alice lists June
	listed, err := store.ListRequests(ctx, "alice", 2024, time.June, "")
	require.NoError(t, err)

	// THEN the straddling request is included, July and bob's are not
	require.Len(t, listed, 1)
	assert.Equal(t, schedule.RequestID("req-1"), listed[0].ID)
}

func TestListRequestsOverlapping_InclusiveBounds(t *testing.T) {
	// GIVEN a request covering the 10th through the 12th
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRequest(ctx, pendingOff("req-1", "alice", "2024-06-10", "2024-06-12")))

	// WHEN overlap is probed on each side
	touching, err := store.ListRequestsOverlapping(ctx, "alice", "2024-06-12", "2024-06-14")
	require.NoError(t, err)
	clear, err := store.ListRequestsOverlapping(ctx, "alice", "2024-06-13", "2024-06-14")
	require.NoError(t, err)

	// THEN a shared edge day counts as overlap, adjacency does not
	assert.Len(t, touching, 1)
	assert.Empty(t, clear)
}

func TestDeleteRequest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveRequest(ctx, pendingOff("req-1", "alice", "2024-06-10", "2024-06-10")))

	require.NoError(t, store.DeleteRequest(ctx, "req-1"))

	_, err := store.GetRequest(ctx, "req-1")
	assert.ErrorIs(t, err, schedule.ErrRequestNotFound)
}

// =============================================================================
// WEEK SUBMISSIONS
// =============================================================================

func submission(id schedule.SubmissionID, user schedule.UserID, weekStart schedule.Day) schedule.WeekSubmission {
	return schedule.WeekSubmission{
		ID:          id,
		UserID:      user,
		WeekStart:   weekStart,
		Status:      schedule.WeekSubmitted,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestCreateWeekSubmission_DuplicateWeekIsConflict(t *testing.T) {
	// GIVEN alice already submitted the week of June 10
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateWeekSubmission(ctx, submission("sub-1", "alice", "2024-06-10")))

	// WHEN the same (user, week) pair is inserted again
	err := store.CreateWeekSubmission(ctx, submission("sub-2", "alice", "2024-06-10"))

	// THEN the unique constraint surfaces as the typed conflict
	assert.ErrorIs(t, err, schedule.ErrAlreadySubmitted)

	// AND a different user or week still inserts
	assert.NoError(t, store.CreateWeekSubmission(ctx, submission("sub-3", "bob", "2024-06-10")))
	assert.NoError(t, store.CreateWeekSubmission(ctx, submission("sub-4", "alice", "2024-06-17")))
}

func TestGetWeekSubmission_AbsentIsNil(t *testing.T) {
	store := newTestStore(t)

	sub, err := store.GetWeekSubmission(context.Background(), "alice", "2024-06-10")

	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestDecideWeekSubmission(t *testing.T) {
	// GIVEN a submitted week
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateWeekSubmission(ctx, submission("sub-1", "alice", "2024-06-10")))

	// WHEN a manager approves it
	require.NoError(t, store.DecideWeekSubmission(ctx, "sub-1", schedule.WeekApproved, "manager-1"))

	// THEN the stored envelope carries the decision
	sub, err := store.GetWeekSubmission(ctx, "alice", "2024-06-10")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, schedule.WeekApproved, sub.Status)
	assert.Equal(t, "manager-1", sub.DecidedBy)
	assert.NotNil(t, sub.DecidedAt)
}

func TestDecideWeekSubmission_MissingIsTypedError(t *testing.T) {
	store := newTestStore(t)

	err := store.DecideWeekSubmission(context.Background(), "sub-missing", schedule.WeekApproved, "manager-1")

	assert.ErrorIs(t, err, schedule.ErrRequestNotFound)
}

// =============================================================================
// TIMESHEETS
// =============================================================================

func TestTimesheetEntries_RangeAndDecimalHours(t *testing.T) {
	// GIVEN half-hour-precision entries across a week boundary
	store := newTestStore(t)
	ctx := context.Background()
	for i, day := range []schedule.Day{"2024-06-10", "2024-06-16", "2024-06-17"} {
		require.NoError(t, store.SaveTimesheetEntry(ctx, schedule.TimesheetEntry{
			ID:     "ts-" + string(rune('a'+i)),
			UserID: "alice",
			Date:   day,
			TaskID: "task-1",
			Hours:  decimal.RequireFromString("7.5"),
		}))
	}

	// WHEN the inclusive week range is listed
	entries, err := store.ListTimesheetEntries(ctx, "alice", "2024-06-10", "2024-06-16")
	require.NoError(t, err)

	// THEN both edge days return with exact decimal hours
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Hours.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, schedule.Day("2024-06-10"), entries[0].Date)
	assert.Equal(t, schedule.Day("2024-06-16"), entries[1].Date)
}
