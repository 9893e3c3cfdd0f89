package schedule

import (
	"context"
	"time"
)

// =============================================================================
// REQUEST API - External approval-service collaborator
// =============================================================================
// The engine consumes this interface and exposes only in-memory state to its
// callers; it defines no wire format of its own. Retry/backoff against
// transient failures belongs to the implementation, not to the engine.

// RequestFilters narrows a month read. RequestType empty means all types.
type RequestFilters struct {
	Year        int
	Month       time.Month
	RequestType RequestType
}

// WeekCheck is the direct "is this week submitted" read result. Status may
// be empty when the endpoint reports submission without a finer status.
type WeekCheck struct {
	IsSubmitted bool
	Status      WeekStatus
}

type RequestAPI interface {
	// ListMyRequests returns the requester's requests for a visible month.
	ListMyRequests(ctx context.Context, filters RequestFilters) ([]Request, error)

	// CreateRequest submits a normalized workflow payload. Fails with a
	// validation error when required fields for the resolved workflow are
	// missing, and with ErrRequestOverlap on a server-side conflict.
	CreateRequest(ctx context.Context, dto CreateRequestDTO) (*Request, error)

	// UpdateRequest edits an existing request; only PENDING requests are editable.
	UpdateRequest(ctx context.Context, id RequestID, dto CreateRequestDTO) (*Request, error)

	// DeleteRequest cancels an existing PENDING request.
	DeleteRequest(ctx context.Context, id RequestID) error

	// ListTimesheets returns day entries in the inclusive day range.
	ListTimesheets(ctx context.Context, from, to Day) ([]TimesheetEntry, error)

	// IsWeekSubmitted is the direct week-status read path.
	IsWeekSubmitted(ctx context.Context, weekStart Day) (WeekCheck, error)

	// ListMySubmissions is the history read path.
	ListMySubmissions(ctx context.Context) ([]WeekSubmission, error)

	// SubmitWeek creates the week's approval envelope. The server enforces
	// idempotency: a second submission fails with ErrAlreadySubmitted.
	SubmitWeek(ctx context.Context, weekStart Day) (*WeekSubmission, error)
}
