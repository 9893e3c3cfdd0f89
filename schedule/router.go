/*
router.go - Workflow routing and request normalization

PURPOSE:
  Maps (activeRequestType, activePeriodType, lifecycle phase) to exactly one
  of four specialized submission workflows, each carrying its own
  required-field schema, and normalizes a validated form plus the current
  selection into the common CreateRequestDTO sent to the approval API.

ROUTING RULES (first match, mutually exclusive by construction):
  periodType == TIME                      -> Time workflow
  requestType == OFF  (period != TIME)    -> Off workflow
  requestType == REMOTE                   -> Remote workflow
  requestType == ONSITE                   -> Onsite workflow
  both unset                              -> no workflow (caller renders nothing)

FIELD SCHEMAS:
  Declared as go-playground/validator struct tags on the form types, plus one
  cross-field rule validator cannot express declaratively: a TIME form's
  EndTime must be strictly after StartTime on the same calendar day,
  regardless of TimeType. Violations are validation errors, never a silent
  swap of the two values.
*/
package schedule

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// =============================================================================
// WORKFLOW KIND - Tagged union resolved exactly once
// =============================================================================

type WorkflowKind string

const (
	WorkflowNone   WorkflowKind = ""
	WorkflowOff    WorkflowKind = "off"
	WorkflowRemote WorkflowKind = "remote"
	WorkflowOnsite WorkflowKind = "onsite"
	WorkflowTime   WorkflowKind = "time"
)

type LifecyclePhase string

const (
	PhaseCreate LifecyclePhase = "create"
	PhaseEdit   LifecyclePhase = "edit"
	PhaseView   LifecyclePhase = "view"
)

// RoutedWorkflow is the single eligible workflow for a completed selection.
type RoutedWorkflow struct {
	Kind     WorkflowKind
	Phase    LifecyclePhase
	Editable bool // view phase is read-only
}

// ResolveWorkflow picks the one eligible workflow. ErrNoWorkflow when both
// the request type and period type are unset; callers must not render a
// modal in that case.
func ResolveWorkflow(requestType RequestType, periodType PeriodType, phase LifecyclePhase) (RoutedWorkflow, error) {
	kind := WorkflowNone
	switch {
	case periodType == PeriodTime:
		kind = WorkflowTime
	case requestType == RequestOff || requestType == RequestTime:
		// RequestTime with a non-TIME period cannot happen through the UI;
		// routing it to the off workflow keeps normalized legacy data usable.
		kind = WorkflowOff
	case requestType == RequestRemote:
		kind = WorkflowRemote
	case requestType == RequestOnsite:
		kind = WorkflowOnsite
	}
	if kind == WorkflowNone {
		return RoutedWorkflow{}, ErrNoWorkflow
	}
	return RoutedWorkflow{Kind: kind, Phase: phase, Editable: phase != PhaseView}, nil
}

// =============================================================================
// WORKFLOW FORMS - Required-field schemas per workflow
// =============================================================================

var formValidator = validator.New()

// OffForm is the editable payload of the Off workflow.
type OffForm struct {
	AbsenceTypeID string `validate:"required"`
	Reason        string `validate:"required,min=5"`
	Note          string
}

// RemoteForm is the editable payload of the Remote workflow.
type RemoteForm struct {
	ProjectID string // optional
	Reason    string `validate:"required,min=5"`
	Note      string
}

// OnsiteForm is the editable payload of the Onsite workflow.
type OnsiteForm struct {
	ProjectID string `validate:"required"`
	Location  string `validate:"required,min=2"`
	Reason    string `validate:"required,min=5"`
	Note      string
}

// TimeForm is the editable payload of the Time workflow. StartTime and
// EndTime are wall-clock "15:04" values on the selected day.
type TimeForm struct {
	TimeType  TimeType `validate:"required,oneof=LATE_ARRIVAL EARLY_DEPARTURE"`
	StartTime string   `validate:"required,len=5"`
	EndTime   string   `validate:"required,len=5"`
	Reason    string   `validate:"required"`
	Note      string
}

func (f OffForm) Validate() error    { return validateForm(WorkflowOff, f, nil) }
func (f RemoteForm) Validate() error { return validateForm(WorkflowRemote, f, nil) }
func (f OnsiteForm) Validate() error { return validateForm(WorkflowOnsite, f, nil) }

func (f TimeForm) Validate() error {
	return validateForm(WorkflowTime, f, func(fields []FieldError) []FieldError {
		// Cross-field rule: EndTime strictly after StartTime, regardless of
		// TimeType. HH:MM strings compare chronologically as strings.
		if f.StartTime != "" && f.EndTime != "" && f.EndTime <= f.StartTime {
			fields = append(fields, FieldError{
				Field:   "EndTime",
				Rule:    "time_order",
				Message: "end time must be after start time",
			})
		}
		return fields
	})
}

func validateForm(kind WorkflowKind, form any, extra func([]FieldError) []FieldError) error {
	var fields []FieldError
	if err := formValidator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: fieldMessage(fe),
			})
		}
	}
	if extra != nil {
		fields = extra(fields)
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Workflow: kind, Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed rule " + fe.Tag()
	}
}

// =============================================================================
// TOTAL DAYS - Display-only
// =============================================================================

// TotalDays computes the displayed day count for a selection: the number of
// selected dates when more than one is held, otherwise 1 for a full day or
// single-day TIME adjustment and 0.5 for a morning or afternoon.
func TotalDays(sel *Selection, mode PeriodType) decimal.Decimal {
	if sel.Count() > 1 {
		return decimal.NewFromInt(int64(sel.Count()))
	}
	return mode.Days()
}

// =============================================================================
// CREATE REQUEST DTO - Common submission shape
// =============================================================================

// CreateRequestDTO is the normalized payload every workflow submits. Day
// bounds are the chronological min/max of the selection, not click order.
type CreateRequestDTO struct {
	RequestType RequestType `json:"requestType"`
	PeriodType  PeriodType  `json:"periodType"`
	StartDate   Day         `json:"startDate"`
	EndDate     Day         `json:"endDate"`
	Reason      string      `json:"reason"`
	Note        string      `json:"note,omitempty"`

	// Off workflow
	AbsenceTypeID string `json:"absenceTypeId,omitempty"`

	// Remote/Onsite workflows
	ProjectID string `json:"projectId,omitempty"`
	Location  string `json:"location,omitempty"`

	// Time workflow
	TimeType  TimeType `json:"timeType,omitempty"`
	StartTime string   `json:"startTime,omitempty"`
	EndTime   string   `json:"endTime,omitempty"`
}

// BuildOffRequest normalizes a validated Off form and the selection.
func BuildOffRequest(sel *Selection, mode PeriodType, form OffForm) (CreateRequestDTO, error) {
	if err := form.Validate(); err != nil {
		return CreateRequestDTO{}, err
	}
	dto, err := baseDTO(sel, RequestOff, mode)
	if err != nil {
		return CreateRequestDTO{}, err
	}
	dto.AbsenceTypeID = form.AbsenceTypeID
	dto.Reason = form.Reason
	dto.Note = form.Note
	return dto, nil
}

// BuildRemoteRequest normalizes a validated Remote form and the selection.
func BuildRemoteRequest(sel *Selection, mode PeriodType, form RemoteForm) (CreateRequestDTO, error) {
	if err := form.Validate(); err != nil {
		return CreateRequestDTO{}, err
	}
	dto, err := baseDTO(sel, RequestRemote, mode)
	if err != nil {
		return CreateRequestDTO{}, err
	}
	dto.ProjectID = form.ProjectID
	dto.Reason = form.Reason
	dto.Note = form.Note
	return dto, nil
}

// BuildOnsiteRequest normalizes a validated Onsite form and the selection.
func BuildOnsiteRequest(sel *Selection, mode PeriodType, form OnsiteForm) (CreateRequestDTO, error) {
	if err := form.Validate(); err != nil {
		return CreateRequestDTO{}, err
	}
	dto, err := baseDTO(sel, RequestOnsite, mode)
	if err != nil {
		return CreateRequestDTO{}, err
	}
	dto.ProjectID = form.ProjectID
	dto.Location = form.Location
	dto.Reason = form.Reason
	dto.Note = form.Note
	return dto, nil
}

// BuildTimeRequest normalizes a validated Time form for a single-day
// adjustment. TIME is an explicit request type here, not an OFF alias.
func BuildTimeRequest(date Day, form TimeForm) (CreateRequestDTO, error) {
	if err := form.Validate(); err != nil {
		return CreateRequestDTO{}, err
	}
	return CreateRequestDTO{
		RequestType: RequestTime,
		PeriodType:  PeriodTime,
		StartDate:   date,
		EndDate:     date,
		Reason:      form.Reason,
		Note:        form.Note,
		TimeType:    form.TimeType,
		StartTime:   form.StartTime,
		EndTime:     form.EndTime,
	}, nil
}

func baseDTO(sel *Selection, requestType RequestType, mode PeriodType) (CreateRequestDTO, error) {
	if sel.IsEmpty() {
		return CreateRequestDTO{}, ErrNoWorkflow
	}
	start, end := sel.Bounds()
	return CreateRequestDTO{
		RequestType: requestType,
		PeriodType:  mode,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// CheckInvariants validates the DTO's day bounds the same way Request does.
func (d CreateRequestDTO) CheckInvariants() error {
	r := Request{
		RequestType: d.RequestType,
		PeriodType:  d.PeriodType,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
	}
	return r.CheckInvariants()
}
