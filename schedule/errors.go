/*
errors.go - Typed error taxonomy for the scheduling engine

PURPOSE:
  All engine errors in one place. The pure components (interval, cell store,
  selection, router) only ever produce validation-class errors and surface
  them as return values, never across component boundaries as panics. The
  week coordinator and the API client map transport failures onto the
  remaining classes.

ERROR CLASSES:
  1. Validation  - a required-field or cross-field rule failed; local, retryable
  2. Conflict    - the server deems the action duplicate/overlapping; terminal
  3. Auth        - session invalid/expired; requires re-authentication
  4. Unavailable - transient network/server failure; retryable by transport

USAGE:
  if schedule.IsConflict(err) {
      // informational "already submitted", not a fatal error
  }
*/
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDay is returned when a day string is not a calendar day.
	ErrInvalidDay = errors.New("invalid calendar day")

	// ErrInvalidDayRange is returned when request day bounds are inverted or
	// a TIME request spans more than one day.
	ErrInvalidDayRange = errors.New("invalid day range")

	// ErrNoWorkflow is returned when no submission workflow is eligible for
	// the active request/period combination.
	ErrNoWorkflow = errors.New("no submission workflow eligible")

	// ErrValidation is the class sentinel wrapped by ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadySubmitted is returned when a week already has an approval
	// envelope. Terminal: surfaced as informational, never retried.
	ErrAlreadySubmitted = errors.New("week already submitted")

	// ErrRequestOverlap is returned when the server rejects a request as
	// overlapping an existing one on a covered day.
	ErrRequestOverlap = errors.New("request overlaps an existing request")

	// ErrRequestNotFound is returned when an edit/cancel targets an unknown request.
	ErrRequestNotFound = errors.New("request not found")

	// ErrNotEditable is returned when editing a request that is no longer pending.
	ErrNotEditable = errors.New("request is not pending")

	// ErrSessionExpired is returned when the session is invalid. Not locally
	// recoverable; callers force re-authentication. Optimistic state is still
	// rolled back before this surfaces.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnavailable is returned when the transport exhausted its retries
	// against a transient network or server failure.
	ErrUnavailable = errors.New("service unavailable")
)

// =============================================================================
// VALIDATION ERROR - Field-level detail for workflow forms
// =============================================================================

// FieldError pinpoints a single failed field rule so callers can surface the
// message inline next to the offending field.
type FieldError struct {
	Field   string
	Rule    string // e.g. "required", "min", "time_order"
	Message string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidationError aggregates every field failure of one form so the caller
// can render all of them in a single pass.
type ValidationError struct {
	Workflow WorkflowKind
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%s form invalid: %s", e.Workflow, strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// IsValidation reports a locally recoverable field/cross-field failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsConflict reports a business conflict the server will keep rejecting.
// Surfaced as informational, never retried.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted) || errors.Is(err, ErrRequestOverlap)
}

// IsAuth reports an authentication failure requiring a fresh session.
func IsAuth(err error) bool { return errors.Is(err, ErrSessionExpired) }

// IsRetryable reports a transient failure that might succeed on retry.
func IsRetryable(err error) bool { return errors.Is(err, ErrUnavailable) }
