/*
Package apiclient is the HTTP implementation of schedule.RequestAPI.

PURPOSE:
  Talks to the request/approval API on behalf of the engine. All transport
  policy lives here, not in the engine:
  - Exponential-backoff retry against transient (network/5xx) failures
  - Mapping HTTP status classes onto the engine's typed errors:
      400 + validation code  -> schedule.ValidationError
      401/403                -> schedule.ErrSessionExpired
      404                    -> schedule.ErrRequestNotFound
      409 already_submitted  -> schedule.ErrAlreadySubmitted
      409 request_overlap    -> schedule.ErrRequestOverlap
      409 not_editable       -> schedule.ErrNotEditable
      5xx / transport        -> schedule.ErrUnavailable (after retries)

  Conflict and auth responses are never retried; only unavailability is.

SEE ALSO:
  - schedule/api.go: The interface this implements
  - api/: The server side of the wire contract
*/
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/schedule-engine/api"
	"github.com/warp/schedule-engine/catalog"
	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// CLIENT
// =============================================================================

type Client struct {
	baseURL    string
	userID     schedule.UserID
	httpClient *http.Client
	logger     *zap.Logger

	maxRetries int
	backoff    time.Duration // doubles per attempt
}

// Compile-time check that Client implements the engine's collaborator interface.
var _ schedule.RequestAPI = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient overrides the underlying transport (tests, custom timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry tunes the transient-failure retry policy.
func WithRetry(maxRetries int, initialBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = initialBackoff
	}
}

func New(baseURL string, userID schedule.UserID, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		maxRetries: 3,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// REQUEST API IMPLEMENTATION
// =============================================================================

func (c *Client) ListMyRequests(ctx context.Context, filters schedule.RequestFilters) ([]schedule.Request, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(filters.Year))
	q.Set("month", strconv.Itoa(int(filters.Month)))
	if filters.RequestType != "" {
		q.Set("type", string(filters.RequestType))
	}

	var dtos []api.RequestDTO
	if err := c.do(ctx, http.MethodGet, "/api/requests?"+q.Encode(), nil, &dtos); err != nil {
		return nil, err
	}
	requests := make([]schedule.Request, len(dtos))
	for i, dto := range dtos {
		requests[i] = fromRequestDTO(dto)
	}
	return requests, nil
}

func (c *Client) CreateRequest(ctx context.Context, dto schedule.CreateRequestDTO) (*schedule.Request, error) {
	var out api.RequestDTO
	if err := c.do(ctx, http.MethodPost, "/api/requests", dto, &out); err != nil {
		return nil, err
	}
	r := fromRequestDTO(out)
	return &r, nil
}

func (c *Client) UpdateRequest(ctx context.Context, id schedule.RequestID, dto schedule.CreateRequestDTO) (*schedule.Request, error) {
	var out api.RequestDTO
	if err := c.do(ctx, http.MethodPut, "/api/requests/"+url.PathEscape(string(id)), dto, &out); err != nil {
		return nil, err
	}
	r := fromRequestDTO(out)
	return &r, nil
}

func (c *Client) DeleteRequest(ctx context.Context, id schedule.RequestID) error {
	return c.do(ctx, http.MethodDelete, "/api/requests/"+url.PathEscape(string(id)), nil, nil)
}

func (c *Client) ListTimesheets(ctx context.Context, from, to schedule.Day) ([]schedule.TimesheetEntry, error) {
	q := url.Values{}
	q.Set("from", string(from))
	q.Set("to", string(to))

	var dtos []api.TimesheetEntryDTO
	if err := c.do(ctx, http.MethodGet, "/api/timesheets?"+q.Encode(), nil, &dtos); err != nil {
		return nil, err
	}
	entries := make([]schedule.TimesheetEntry, len(dtos))
	for i, dto := range dtos {
		hours, err := decimal.NewFromString(dto.Hours)
		if err != nil {
			return nil, fmt.Errorf("bad hours %q in entry %s: %w", dto.Hours, dto.ID, err)
		}
		entries[i] = schedule.TimesheetEntry{
			ID:     dto.ID,
			UserID: schedule.UserID(dto.UserID),
			Date:   schedule.Day(dto.Date),
			TaskID: dto.TaskID,
			Hours:  hours,
			Note:   dto.Note,
		}
	}
	return entries, nil
}

func (c *Client) IsWeekSubmitted(ctx context.Context, weekStart schedule.Day) (schedule.WeekCheck, error) {
	var dto api.WeekCheckDTO
	if err := c.do(ctx, http.MethodGet, "/api/weeks/"+string(weekStart)+"/submission", nil, &dto); err != nil {
		return schedule.WeekCheck{}, err
	}
	return schedule.WeekCheck{IsSubmitted: dto.IsSubmitted, Status: schedule.WeekStatus(dto.Status)}, nil
}

func (c *Client) ListMySubmissions(ctx context.Context) ([]schedule.WeekSubmission, error) {
	var dtos []api.WeekSubmissionDTO
	if err := c.do(ctx, http.MethodGet, "/api/submissions", nil, &dtos); err != nil {
		return nil, err
	}
	subs := make([]schedule.WeekSubmission, len(dtos))
	for i, dto := range dtos {
		subs[i] = fromSubmissionDTO(dto)
	}
	return subs, nil
}

// ListAbsenceTypes fetches the leave category catalog. Not part of
// schedule.RequestAPI; the engine never needs it, leave forms do.
func (c *Client) ListAbsenceTypes(ctx context.Context) ([]catalog.AbsenceType, error) {
	var dtos []api.AbsenceTypeDTO
	if err := c.do(ctx, http.MethodGet, "/api/absence-types", nil, &dtos); err != nil {
		return nil, err
	}
	types := make([]catalog.AbsenceType, len(dtos))
	for i, dto := range dtos {
		types[i] = catalog.AbsenceType{
			ID:                   dto.ID,
			Name:                 dto.Name,
			Paid:                 dto.Paid,
			RequiresNoteOverDays: dto.RequiresNoteOverDays,
			MaxDaysPerRequest:    dto.MaxDaysPerRequest,
		}
	}
	return types, nil
}

func (c *Client) SubmitWeek(ctx context.Context, weekStart schedule.Day) (*schedule.WeekSubmission, error) {
	var dto api.WeekSubmissionDTO
	if err := c.do(ctx, http.MethodPost, "/api/weeks/"+string(weekStart)+"/submit", nil, &dto); err != nil {
		return nil, err
	}
	sub := fromSubmissionDTO(dto)
	return &sub, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one API call with retry-on-unavailable and decodes the
// response into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	backoff := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Debug("retrying request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", schedule.ErrUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := c.doOnce(ctx, method, path, payload, out)
		if err == nil || !schedule.IsRetryable(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", string(c.userID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", schedule.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return c.classify(resp)
}

// classify maps an error response onto the engine's taxonomy.
func (c *Client) classify(resp *http.Response) error {
	var body api.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)

	c.logger.Debug("api error response",
		zap.Int("status", resp.StatusCode),
		zap.String("code", body.Code),
		zap.String("error", body.Error))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return schedule.ErrSessionExpired
	case resp.StatusCode == http.StatusNotFound:
		return schedule.ErrRequestNotFound
	case resp.StatusCode == http.StatusConflict:
		switch body.Code {
		case api.CodeOverlap:
			return schedule.ErrRequestOverlap
		case api.CodeNotEditable:
			return schedule.ErrNotEditable
		default:
			return schedule.ErrAlreadySubmitted
		}
	case resp.StatusCode == http.StatusBadRequest:
		verr := &schedule.ValidationError{}
		for _, f := range body.Fields {
			verr.Fields = append(verr.Fields, schedule.FieldError{Field: f.Field, Rule: f.Rule, Message: f.Message})
		}
		if len(verr.Fields) == 0 {
			verr.Fields = append(verr.Fields, schedule.FieldError{Field: "request", Rule: "invalid", Message: body.Error})
		}
		return verr
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: server returned %d", schedule.ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body.Error)
	}
}

// =============================================================================
// DTO MAPPING
// =============================================================================

func fromRequestDTO(dto api.RequestDTO) schedule.Request {
	createdAt, _ := time.Parse(time.RFC3339, dto.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, dto.UpdatedAt)
	return schedule.Request{
		ID:          schedule.RequestID(dto.ID),
		UserID:      schedule.UserID(dto.UserID),
		RequestType: schedule.RequestType(dto.RequestType),
		PeriodType:  schedule.PeriodType(dto.PeriodType),
		StartDate:   schedule.Day(dto.StartDate),
		EndDate:     schedule.Day(dto.EndDate),
		Status:      schedule.RequestStatus(dto.Status),
		TimeType:    schedule.TimeType(dto.TimeType),
		StartTime:   dto.StartTime,
		EndTime:     dto.EndTime,
		Reason:      dto.Reason,
		Note:        dto.Note,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}.Normalize()
}

func fromSubmissionDTO(dto api.WeekSubmissionDTO) schedule.WeekSubmission {
	submittedAt, _ := time.Parse(time.RFC3339, dto.SubmittedAt)
	sub := schedule.WeekSubmission{
		ID:          schedule.SubmissionID(dto.ID),
		UserID:      schedule.UserID(dto.UserID),
		WeekStart:   schedule.Day(dto.WeekStart),
		Status:      schedule.WeekStatus(dto.Status),
		SubmittedAt: submittedAt,
		DecidedBy:   dto.DecidedBy,
	}
	if dto.DecidedAt != nil {
		if t, err := time.Parse(time.RFC3339, *dto.DecidedAt); err == nil {
			sub.DecidedAt = &t
		}
	}
	return sub
}
