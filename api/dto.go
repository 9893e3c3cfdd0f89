/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the approval API. These decouple the engine's domain
  model from the wire contract. CreateRequestDTO is shared with the engine
  (schedule package) because it IS the normalized submission shape every
  workflow produces.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - ErrorResponse: Error wrapper with a machine-readable code

SEE ALSO:
  - handlers.go: Uses these types
  - schedule/router.go: CreateRequestDTO definition
*/
package api

import (
	"time"

	"github.com/warp/schedule-engine/catalog"
	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RequestDTO represents a request in API responses.
type RequestDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	RequestType string `json:"requestType"`
	PeriodType  string `json:"periodType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Status      string `json:"status"`
	TimeType    string `json:"timeType,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Reason      string `json:"reason"`
	Note        string `json:"note,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toRequestDTO(r schedule.Request) RequestDTO {
	return RequestDTO{
		ID:          string(r.ID),
		UserID:      string(r.UserID),
		RequestType: string(r.RequestType),
		PeriodType:  string(r.PeriodType),
		StartDate:   string(r.StartDate),
		EndDate:     string(r.EndDate),
		Status:      string(r.Status),
		TimeType:    string(r.TimeType),
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Reason:      r.Reason,
		Note:        r.Note,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WeekCheckDTO answers the direct "is this week submitted" read.
type WeekCheckDTO struct {
	IsSubmitted bool   `json:"isSubmitted"`
	Status      string `json:"status,omitempty"`
}

// WeekSubmissionDTO represents an approval envelope in API responses.
type WeekSubmissionDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	WeekStart   string  `json:"weekStartDate"`
	Status      string  `json:"status"`
	SubmittedAt string  `json:"submittedAt"`
	DecidedAt   *string `json:"decidedAt,omitempty"`
	DecidedBy   string  `json:"decidedBy,omitempty"`
}

func toSubmissionDTO(sub schedule.WeekSubmission) WeekSubmissionDTO {
	dto := WeekSubmissionDTO{
		ID:          string(sub.ID),
		UserID:      string(sub.UserID),
		WeekStart:   string(sub.WeekStart),
		Status:      string(sub.Status),
		SubmittedAt: sub.SubmittedAt.UTC().Format(time.RFC3339),
		DecidedBy:   sub.DecidedBy,
	}
	if sub.DecidedAt != nil {
		s := sub.DecidedAt.UTC().Format(time.RFC3339)
		dto.DecidedAt = &s
	}
	return dto
}

// TimesheetEntryDTO represents one day entry in API responses.
type TimesheetEntryDTO struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Date   string `json:"date"`
	TaskID string `json:"taskId"`
	Hours  string `json:"hours"`
	Note   string `json:"note,omitempty"`
}

func toEntryDTO(e schedule.TimesheetEntry) TimesheetEntryDTO {
	return TimesheetEntryDTO{
		ID:     e.ID,
		UserID: string(e.UserID),
		Date:   string(e.Date),
		TaskID: e.TaskID,
		Hours:  e.Hours.String(),
		Note:   e.Note,
	}
}

// AbsenceTypeDTO represents one selectable leave category.
type AbsenceTypeDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Paid                 bool   `json:"paid"`
	RequiresNoteOverDays int    `json:"requiresNoteOverDays"`
	MaxDaysPerRequest    int    `json:"maxDaysPerRequest"`
}

func toAbsenceTypeDTO(t catalog.AbsenceType) AbsenceTypeDTO {
	return AbsenceTypeDTO{
		ID:                   t.ID,
		Name:                 t.Name,
		Paid:                 t.Paid,
		RequiresNoteOverDays: t.RequiresNoteOverDays,
		MaxDaysPerRequest:    t.MaxDaysPerRequest,
	}
}

// DecideSubmissionRequest is the admin approve/reject body.
type DecideSubmissionRequest struct {
	Status    string `json:"status"` // APPROVED | REJECTED
	DecidedBy string `json:"decidedBy"`
}

// ErrorResponse is the uniform error body. Code is machine-readable so
// clients classify without parsing messages.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code,omitempty"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError mirrors schedule.FieldError on the wire.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "validation_failed"
	CodeAlreadySubmitted = "already_submitted"
	CodeOverlap          = "request_overlap"
	CodeNotFound         = "not_found"
	CodeNotEditable      = "not_editable"
	CodeInternal         = "internal_error"
)
