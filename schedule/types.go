/*
Package schedule implements the request-calendar scheduling engine.

PURPOSE:
  This package contains the pure decision layer behind a leave/remote/onsite
  request calendar and a weekly timesheet-approval surface:
  - Which existing requests cover a calendar day, and which pairs conflict
  - A multi-step day-selection state machine (one request type at a time)
  - Routing a completed selection to exactly one submission workflow
  - Week-submission status derivation with optimistic submit and rollback

KEY CONCEPTS IN THIS FILE (types.go):
  - Request: A leave/remote/onsite/time request with inclusive day bounds
  - RequestType / PeriodType: The category and sub-day granularity
  - WeekSubmission: The approval envelope locking a timesheet week
  - TimesheetEntry: A single day's worked hours against a task

DESIGN PRINCIPLES:
  1. Purity: interval, cell, selection and routing logic never perform I/O
  2. Calendar-day comparisons: days compare as YYYY-MM-DD strings, not
     timestamps, so results never drift with the local timezone
  3. Typed errors: all failures classify into the taxonomy in errors.go
  4. Single I/O component: only the WeekCoordinator talks to RequestAPI

SEE ALSO:
  - day.go: Calendar-day arithmetic and the month grid
  - interval.go: Covering and conflict predicates
  - selection.go: Selection state machine
  - router.go: Workflow routing and request normalization
  - week.go: Week-submission coordination
*/
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type RequestID string
type UserID string
type SubmissionID string

// =============================================================================
// REQUEST TYPE - Category of absence/work-mode request
// =============================================================================

type RequestType string

const (
	RequestOff    RequestType = "OFF"
	RequestRemote RequestType = "REMOTE"
	RequestOnsite RequestType = "ONSITE"

	// RequestTime is a late-arrival/early-departure adjustment. Some upstream
	// systems encode it as OFF with PeriodTime; Normalize lifts that encoding
	// into this explicit type.
	RequestTime RequestType = "TIME"
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	switch t {
	case RequestOff, RequestRemote, RequestOnsite, RequestTime:
		return true
	}
	return false
}

// =============================================================================
// PERIOD TYPE - Sub-day granularity, with the per-cell cycling order
// =============================================================================

type PeriodType string

const (
	PeriodFullDay   PeriodType = "FULL_DAY"
	PeriodMorning   PeriodType = "MORNING"
	PeriodAfternoon PeriodType = "AFTERNOON"
	PeriodTime      PeriodType = "TIME"
)

// Next returns the following period in the cell cycling order:
// FULL_DAY -> MORNING -> AFTERNOON -> TIME -> FULL_DAY.
func (p PeriodType) Next() PeriodType {
	switch p {
	case PeriodFullDay:
		return PeriodMorning
	case PeriodMorning:
		return PeriodAfternoon
	case PeriodAfternoon:
		return PeriodTime
	default:
		return PeriodFullDay
	}
}

func (p PeriodType) Valid() bool {
	switch p {
	case PeriodFullDay, PeriodMorning, PeriodAfternoon, PeriodTime:
		return true
	}
	return false
}

// Days returns the day fraction one covered day contributes to a request
// total: half for a morning or afternoon, one otherwise.
func (p PeriodType) Days() decimal.Decimal {
	if p == PeriodMorning || p == PeriodAfternoon {
		return decimal.NewFromFloat(0.5)
	}
	return decimal.NewFromInt(1)
}

// =============================================================================
// TIME TYPE - Direction of a TIME-period adjustment
// =============================================================================

type TimeType string

const (
	TimeLateArrival    TimeType = "LATE_ARRIVAL"
	TimeEarlyDeparture TimeType = "EARLY_DEPARTURE"
)

// =============================================================================
// REQUEST - A leave/remote/onsite/time request
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Request is a request as observed by the requester.
// Invariants: StartDate <= EndDate; a TIME-period request is single-day.
type Request struct {
	ID          RequestID
	UserID      UserID
	RequestType RequestType
	PeriodType  PeriodType
	StartDate   Day
	EndDate     Day
	Status      RequestStatus

	// TIME-period requests only
	TimeType  TimeType
	StartTime string // wall clock, "15:04"
	EndTime   string

	Reason string
	Note   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Covers reports whether the request's inclusive day range contains d.
// Comparison is on calendar-day strings, never timestamps.
func (r Request) Covers(d Day) bool {
	return d >= r.StartDate && d <= r.EndDate
}

// Editable reports whether the requester may still change or cancel the
// request. Approval and rejection are terminal for the requester.
func (r Request) Editable() bool {
	return r.Status == StatusPending
}

// Normalize lifts the legacy OFF+TIME encoding into the explicit TIME
// request type. All other requests pass through unchanged.
func (r Request) Normalize() Request {
	if r.RequestType == RequestOff && r.PeriodType == PeriodTime {
		r.RequestType = RequestTime
	}
	return r
}

// CheckInvariants validates the day-bound invariants of the request.
func (r Request) CheckInvariants() error {
	if r.StartDate > r.EndDate {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidDayRange, r.StartDate, r.EndDate)
	}
	if r.PeriodType == PeriodTime && r.StartDate != r.EndDate {
		return fmt.Errorf("%w: TIME request spans %s..%s", ErrInvalidDayRange, r.StartDate, r.EndDate)
	}
	return nil
}

// =============================================================================
// WEEK SUBMISSION - Approval envelope for a timesheet week
// =============================================================================

type WeekStatus string

const (
	WeekNotSubmitted WeekStatus = "NOT_SUBMITTED"
	WeekSubmitted    WeekStatus = "SUBMITTED"
	WeekApproved     WeekStatus = "APPROVED"
	WeekRejected     WeekStatus = "REJECTED"
)

// Locks reports whether day-level timesheet edits are locked under this
// status. There is no client-side un-submit; reversal is an administrative
// action observed only as a later status change.
func (s WeekStatus) Locks() bool {
	return s == WeekSubmitted || s == WeekApproved || s == WeekRejected
}

// WeekSubmission locks a calendar week's timesheet entries for approval.
type WeekSubmission struct {
	ID        SubmissionID
	UserID    UserID
	WeekStart Day // always a Monday
	Status    WeekStatus

	SubmittedAt time.Time
	DecidedAt   *time.Time
	DecidedBy   string
}

// =============================================================================
// TIMESHEET ENTRY - One day's worked hours
// =============================================================================

type TimesheetEntry struct {
	ID     string
	UserID UserID
	Date   Day
	TaskID string
	Hours  decimal.Decimal
	Note   string
}

// SumHours totals the hours of a set of entries.
func SumHours(entries []TimesheetEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
	}
	return total
}
