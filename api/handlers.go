/*
handlers.go - HTTP handlers for the request/approval API

PURPOSE:
  Implements the collaborator surface the scheduling engine consumes:
  month-scoped request reads, request create/edit/cancel, timesheet reads,
  the two week-status read paths, and the idempotent week submit.

VALIDATION:
  Create/update payloads are validated with the same workflow schemas the
  client-side router uses (schedule/router.go), so a payload that passes the
  client cannot fail differently here. Overlap conflicts reuse the engine's
  Conflicts predicate.

IDEMPOTENCY:
  POST /weeks/{weekStart}/submit relies on the store's unique
  (user, week_start) constraint; a duplicate maps to 409 already_submitted.

SEE ALSO:
  - server.go: Route wiring
  - dto.go: Wire types
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/schedule-engine/catalog"
	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence surface handlers need. Implemented by
// store/sqlite and store/memory.
type Store interface {
	SaveRequest(ctx context.Context, r schedule.Request) error
	GetRequest(ctx context.Context, id schedule.RequestID) (schedule.Request, error)
	UpdateRequest(ctx context.Context, r schedule.Request) error
	DeleteRequest(ctx context.Context, id schedule.RequestID) error
	ListRequests(ctx context.Context, user schedule.UserID, year int, month time.Month, rt schedule.RequestType) ([]schedule.Request, error)
	ListRequestsOverlapping(ctx context.Context, user schedule.UserID, start, end schedule.Day) ([]schedule.Request, error)

	CreateWeekSubmission(ctx context.Context, sub schedule.WeekSubmission) error
	GetWeekSubmission(ctx context.Context, user schedule.UserID, weekStart schedule.Day) (*schedule.WeekSubmission, error)
	ListWeekSubmissions(ctx context.Context, user schedule.UserID) ([]schedule.WeekSubmission, error)
	DecideWeekSubmission(ctx context.Context, id schedule.SubmissionID, status schedule.WeekStatus, decidedBy string) error

	SaveTimesheetEntry(ctx context.Context, e schedule.TimesheetEntry) error
	ListTimesheetEntries(ctx context.Context, user schedule.UserID, from, to schedule.Day) ([]schedule.TimesheetEntry, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store Store
	Types *catalog.Catalog
}

func NewHandler(store Store, types *catalog.Catalog) *Handler {
	return &Handler{Store: store, Types: types}
}

// userHeader identifies the requester. Authentication itself is out of
// scope; an upstream gateway is expected to set this.
const userHeader = "X-User-ID"

func requester(r *http.Request) schedule.UserID {
	if u := r.Header.Get(userHeader); u != "" {
		return schedule.UserID(u)
	}
	return "demo-user"
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

// ListRequests returns the requester's requests for a month.
// GET /api/requests?year=2024&month=6&type=OFF
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid or missing year", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid or missing month", err)
		return
	}
	rt := schedule.RequestType(r.URL.Query().Get("type"))
	if rt != "" && !rt.Valid() {
		writeError(w, http.StatusBadRequest, CodeValidation, "unknown request type", nil)
		return
	}

	requests, err := h.Store.ListRequests(r.Context(), requester(r), year, time.Month(month), rt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list requests", err)
		return
	}

	dtos := make([]RequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toRequestDTO(req.Normalize())
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRequest validates and persists a normalized workflow payload.
// POST /api/requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var dto schedule.CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "malformed JSON body", err)
		return
	}

	req, ok := h.buildRequest(w, r, dto)
	if !ok {
		return
	}
	req.ID = schedule.RequestID("req-" + uuid.NewString())
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	if conflicted := h.rejectIfConflicting(w, r, req); conflicted {
		return
	}

	if err := h.Store.SaveRequest(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to save request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

// UpdateRequest edits a PENDING request in place.
// PUT /api/requests/{id}
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id := schedule.RequestID(chi.URLParam(r, "id"))
	existing, err := h.Store.GetRequest(r.Context(), id)
	if errors.Is(err, schedule.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "request not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load request", err)
		return
	}
	if existing.UserID != requester(r) {
		writeError(w, http.StatusNotFound, CodeNotFound, "request not found", nil)
		return
	}
	if !existing.Editable() {
		writeError(w, http.StatusConflict, CodeNotEditable, "only pending requests can be edited", nil)
		return
	}

	var dto schedule.CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "malformed JSON body", err)
		return
	}

	updated, ok := h.buildRequest(w, r, dto)
	if !ok {
		return
	}
	updated.ID = existing.ID
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	// Moving a request onto other days must pass the same overlap rule as
	// creating it there; the check excludes the request's own id.
	if conflicted := h.rejectIfConflicting(w, r, updated); conflicted {
		return
	}

	if err := h.Store.UpdateRequest(r.Context(), updated); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to update request", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(updated))
}

// DeleteRequest cancels a PENDING request.
// DELETE /api/requests/{id}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := schedule.RequestID(chi.URLParam(r, "id"))
	existing, err := h.Store.GetRequest(r.Context(), id)
	if errors.Is(err, schedule.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "request not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load request", err)
		return
	}
	if existing.UserID != requester(r) {
		writeError(w, http.StatusNotFound, CodeNotFound, "request not found", nil)
		return
	}
	if !existing.Editable() {
		writeError(w, http.StatusConflict, CodeNotEditable, "only pending requests can be cancelled", nil)
		return
	}

	if err := h.Store.DeleteRequest(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to delete request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildRequest validates the DTO against its resolved workflow schema and
// materializes the stored request. Writes the error response itself.
func (h *Handler) buildRequest(w http.ResponseWriter, r *http.Request, dto schedule.CreateRequestDTO) (schedule.Request, bool) {
	routed, err := schedule.ResolveWorkflow(dto.RequestType, dto.PeriodType, schedule.PhaseCreate)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "no workflow eligible for request/period", err)
		return schedule.Request{}, false
	}

	switch routed.Kind {
	case schedule.WorkflowOff:
		err = schedule.OffForm{AbsenceTypeID: dto.AbsenceTypeID, Reason: dto.Reason, Note: dto.Note}.Validate()
	case schedule.WorkflowRemote:
		err = schedule.RemoteForm{ProjectID: dto.ProjectID, Reason: dto.Reason, Note: dto.Note}.Validate()
	case schedule.WorkflowOnsite:
		err = schedule.OnsiteForm{ProjectID: dto.ProjectID, Location: dto.Location, Reason: dto.Reason, Note: dto.Note}.Validate()
	case schedule.WorkflowTime:
		err = schedule.TimeForm{TimeType: dto.TimeType, StartTime: dto.StartTime, EndTime: dto.EndTime, Reason: dto.Reason, Note: dto.Note}.Validate()
	}
	if err != nil {
		writeValidationError(w, err)
		return schedule.Request{}, false
	}

	if err := dto.CheckInvariants(); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid day bounds", err)
		return schedule.Request{}, false
	}

	if routed.Kind == schedule.WorkflowOff {
		days := schedule.DaySpan(dto.StartDate, dto.EndDate)
		if err := h.Types.CheckRequest(dto.AbsenceTypeID, dto.Note, days); err != nil {
			writeValidationError(w, err)
			return schedule.Request{}, false
		}
	}

	req := schedule.Request{
		UserID:      requester(r),
		RequestType: dto.RequestType,
		PeriodType:  dto.PeriodType,
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
		Status:      schedule.StatusPending,
		TimeType:    dto.TimeType,
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Reason:      dto.Reason,
		Note:        dto.Note,
	}.Normalize()
	return req, true
}

// rejectIfConflicting answers the server half of the conflict rule: a new
// request sharing a day with an existing non-rejected one must be able to
// coexist under the engine's Conflicts predicate.
func (h *Handler) rejectIfConflicting(w http.ResponseWriter, r *http.Request, req schedule.Request) bool {
	overlapping, err := h.Store.ListRequestsOverlapping(r.Context(), req.UserID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to check overlaps", err)
		return true
	}
	for _, existing := range overlapping {
		if existing.ID == req.ID || existing.Status == schedule.StatusRejected {
			continue
		}
		if schedule.Conflicts(req, existing.Normalize()) {
			writeError(w, http.StatusConflict, CodeOverlap,
				"request conflicts with an existing request on a shared day", nil)
			return true
		}
	}
	return false
}

// =============================================================================
// WEEK SUBMISSION HANDLERS
// =============================================================================

// GetWeekCheck is the direct "is this week submitted" read path.
// GET /api/weeks/{weekStart}/submission
func (h *Handler) GetWeekCheck(w http.ResponseWriter, r *http.Request) {
	weekStart, ok := parseWeekStart(w, r)
	if !ok {
		return
	}

	sub, err := h.Store.GetWeekSubmission(r.Context(), requester(r), weekStart)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to read submission", err)
		return
	}
	if sub == nil {
		writeJSON(w, http.StatusOK, WeekCheckDTO{IsSubmitted: false})
		return
	}
	writeJSON(w, http.StatusOK, WeekCheckDTO{IsSubmitted: true, Status: string(sub.Status)})
}

// SubmitWeek creates the week's approval envelope, exactly once per week.
// POST /api/weeks/{weekStart}/submit
func (h *Handler) SubmitWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, ok := parseWeekStart(w, r)
	if !ok {
		return
	}

	sub := schedule.WeekSubmission{
		ID:          schedule.SubmissionID("sub-" + uuid.NewString()),
		UserID:      requester(r),
		WeekStart:   weekStart,
		Status:      schedule.WeekSubmitted,
		SubmittedAt: time.Now().UTC(),
	}
	err := h.Store.CreateWeekSubmission(r.Context(), sub)
	if errors.Is(err, schedule.ErrAlreadySubmitted) {
		writeError(w, http.StatusConflict, CodeAlreadySubmitted, "week already submitted", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to submit week", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubmissionDTO(sub))
}

// ListSubmissions is the history read path.
// GET /api/submissions
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Store.ListWeekSubmissions(r.Context(), requester(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list submissions", err)
		return
	}
	dtos := make([]WeekSubmissionDTO, len(subs))
	for i, sub := range subs {
		dtos[i] = toSubmissionDTO(sub)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DecideSubmission records an approve/reject decision (administrative).
// POST /api/submissions/{id}/decide
func (h *Handler) DecideSubmission(w http.ResponseWriter, r *http.Request) {
	var body DecideSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "malformed JSON body", err)
		return
	}
	status := schedule.WeekStatus(body.Status)
	if status != schedule.WeekApproved && status != schedule.WeekRejected {
		writeError(w, http.StatusBadRequest, CodeValidation, "status must be APPROVED or REJECTED", nil)
		return
	}

	id := schedule.SubmissionID(chi.URLParam(r, "id"))
	err := h.Store.DecideWeekSubmission(r.Context(), id, status, body.DecidedBy)
	if errors.Is(err, schedule.ErrRequestNotFound) {
		writeError(w, http.StatusNotFound, CodeNotFound, "submission not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to decide submission", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ABSENCE TYPE HANDLERS
// =============================================================================

// ListAbsenceTypes returns the catalog the leave workflow selects from.
// GET /api/absence-types
func (h *Handler) ListAbsenceTypes(w http.ResponseWriter, r *http.Request) {
	types := h.Types.Types()
	dtos := make([]AbsenceTypeDTO, len(types))
	for i, t := range types {
		dtos[i] = toAbsenceTypeDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// TIMESHEET HANDLERS
// =============================================================================

// ListTimesheets returns day entries in an inclusive range.
// GET /api/timesheets?from=2024-06-10&to=2024-06-16
func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	from, err := schedule.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid from day", err)
		return
	}
	to, err := schedule.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid to day", err)
		return
	}

	entries, err := h.Store.ListTimesheetEntries(r.Context(), requester(r), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list timesheets", err)
		return
	}
	dtos := make([]TimesheetEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTimesheetEntry records one day's hours. Rejected once the day's
// week has an approval envelope.
// POST /api/timesheets
func (h *Handler) CreateTimesheetEntry(w http.ResponseWriter, r *http.Request) {
	var dto TimesheetEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "malformed JSON body", err)
		return
	}
	date, err := schedule.ParseDay(dto.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid entry date", err)
		return
	}
	hours, err := decimal.NewFromString(dto.Hours)
	if err != nil || hours.IsNegative() {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid hours", err)
		return
	}

	user := requester(r)
	sub, err := h.Store.GetWeekSubmission(r.Context(), user, schedule.WeekStart(date))
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to read submission", err)
		return
	}
	if sub != nil && sub.Status.Locks() {
		writeError(w, http.StatusConflict, CodeAlreadySubmitted, "week is locked for approval", nil)
		return
	}

	entry := schedule.TimesheetEntry{
		ID:     "ts-" + uuid.NewString(),
		UserID: user,
		Date:   date,
		TaskID: dto.TaskID,
		Hours:  hours,
		Note:   dto.Note,
	}
	if err := h.Store.SaveTimesheetEntry(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// =============================================================================
// HELPERS
// =============================================================================

func parseWeekStart(w http.ResponseWriter, r *http.Request) (schedule.Day, bool) {
	weekStart, err := schedule.ParseDay(chi.URLParam(r, "weekStart"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid week start day", err)
		return "", false
	}
	if !schedule.IsWeekStart(weekStart) {
		writeError(w, http.StatusBadRequest, CodeValidation, "week start must be a Monday", nil)
		return "", false
	}
	return weekStart, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Code: CodeValidation}
	var verr *schedule.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			resp.Fields = append(resp.Fields, FieldError{Field: f.Field, Rule: f.Rule, Message: f.Message})
		}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
