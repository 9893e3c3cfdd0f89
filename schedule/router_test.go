package schedule_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// ROUTING
// =============================================================================

func TestResolveWorkflow_ExactlyOneEligible(t *testing.T) {
	cases := []struct {
		name string
		rt   schedule.RequestType
		pt   schedule.PeriodType
		want schedule.WorkflowKind
	}{
		{"off full day", schedule.RequestOff, schedule.PeriodFullDay, schedule.WorkflowOff},
		{"off morning", schedule.RequestOff, schedule.PeriodMorning, schedule.WorkflowOff},
		{"remote", schedule.RequestRemote, schedule.PeriodFullDay, schedule.WorkflowRemote},
		{"onsite", schedule.RequestOnsite, schedule.PeriodAfternoon, schedule.WorkflowOnsite},
		{"time period wins over type", schedule.RequestOff, schedule.PeriodTime, schedule.WorkflowTime},
		{"explicit time type", schedule.RequestTime, schedule.PeriodTime, schedule.WorkflowTime},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			routed, err := schedule.ResolveWorkflow(tc.rt, tc.pt, schedule.PhaseCreate)
			require.NoError(t, err)
			assert.Equal(t, tc.want, routed.Kind)
			assert.True(t, routed.Editable)
		})
	}
}

func TestResolveWorkflow_BothUnsetYieldsNoModal(t *testing.T) {
	_, err := schedule.ResolveWorkflow("", "", schedule.PhaseCreate)
	assert.ErrorIs(t, err, schedule.ErrNoWorkflow)
}

func TestResolveWorkflow_ViewPhaseReadOnly(t *testing.T) {
	routed, err := schedule.ResolveWorkflow(schedule.RequestOff, schedule.PeriodFullDay, schedule.PhaseView)
	require.NoError(t, err)
	assert.False(t, routed.Editable)
}

// =============================================================================
// SCENARIO: OFF REQUEST, SINGLE DAY
// =============================================================================

func TestBuildOffRequest_SingleDay(t *testing.T) {
	// GIVEN: 2024-06-10 selected with type OFF, mode FULL_DAY
	engine, sel, cells := newEngine()
	engine.ToggleDate("2024-06-10", schedule.RequestOff)

	routed, err := schedule.ResolveWorkflow(sel.ActiveType(), cells.Mode("2024-06-10"), schedule.PhaseCreate)
	require.NoError(t, err)
	require.Equal(t, schedule.WorkflowOff, routed.Kind)

	// WHEN: Submitting with an absence type and reason
	dto, err := schedule.BuildOffRequest(sel, schedule.PeriodFullDay, schedule.OffForm{
		AbsenceTypeID: "vac-1",
		Reason:        "Family event",
	})
	require.NoError(t, err)

	// THEN: The normalized DTO carries the exact single-day shape
	assert.Equal(t, schedule.CreateRequestDTO{
		RequestType:   schedule.RequestOff,
		PeriodType:    schedule.PeriodFullDay,
		StartDate:     "2024-06-10",
		EndDate:       "2024-06-10",
		AbsenceTypeID: "vac-1",
		Reason:        "Family event",
	}, dto)
	require.NoError(t, dto.CheckInvariants())
}

// =============================================================================
// SCENARIO: MULTI-DAY REMOTE
// =============================================================================

func TestBuildRemoteRequest_ChronologicalBounds(t *testing.T) {
	// GIVEN: 2024-06-12 clicked before 2024-06-10, both REMOTE
	engine, sel, _ := newEngine()
	engine.ToggleDate("2024-06-12", schedule.RequestRemote)
	engine.ToggleDate("2024-06-10", schedule.RequestRemote)

	dto, err := schedule.BuildRemoteRequest(sel, schedule.PeriodFullDay, schedule.RemoteForm{
		Reason: "Focus sprint",
	})
	require.NoError(t, err)

	// THEN: Bounds are chronological, regardless of click order
	assert.Equal(t, schedule.Day("2024-06-10"), dto.StartDate)
	assert.Equal(t, schedule.Day("2024-06-12"), dto.EndDate)
	assert.Empty(t, dto.ProjectID) // optional for remote
}

// =============================================================================
// FIELD SCHEMAS
// =============================================================================

func TestOffForm_RequiresAbsenceTypeAndReason(t *testing.T) {
	err := schedule.OffForm{Reason: "abc"}.Validate()
	require.Error(t, err)
	assert.True(t, schedule.IsValidation(err))

	var verr *schedule.ValidationError
	require.True(t, errors.As(err, &verr))
	fields := make(map[string]string)
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, "required", fields["AbsenceTypeID"])
	assert.Equal(t, "min", fields["Reason"])
}

func TestOnsiteForm_RequiresProjectAndLocation(t *testing.T) {
	err := schedule.OnsiteForm{Reason: "Client visit"}.Validate()
	require.Error(t, err)

	var verr *schedule.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	ok := schedule.OnsiteForm{
		ProjectID: "prj-7",
		Location:  "HQ",
		Reason:    "Client visit",
	}.Validate()
	assert.NoError(t, ok)
}

func TestTimeForm_EndMustFollowStart(t *testing.T) {
	// GIVEN: A late arrival whose end precedes its start
	err := schedule.TimeForm{
		TimeType:  schedule.TimeLateArrival,
		StartTime: "09:30",
		EndTime:   "09:00",
		Reason:    "Dentist",
	}.Validate()

	// THEN: Validation fails, values are never silently swapped
	require.Error(t, err)
	var verr *schedule.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "time_order", verr.Fields[0].Rule)

	ok := schedule.TimeForm{
		TimeType:  schedule.TimeLateArrival,
		StartTime: "09:30",
		EndTime:   "17:00",
		Reason:    "Dentist",
	}.Validate()
	assert.NoError(t, ok)
}

func TestBuildTimeRequest_FirstClassTimeType(t *testing.T) {
	dto, err := schedule.BuildTimeRequest("2024-06-10", schedule.TimeForm{
		TimeType:  schedule.TimeEarlyDeparture,
		StartTime: "15:00",
		EndTime:   "17:30",
		Reason:    "School run",
	})
	require.NoError(t, err)

	assert.Equal(t, schedule.RequestTime, dto.RequestType)
	assert.Equal(t, schedule.PeriodTime, dto.PeriodType)
	assert.Equal(t, dto.StartDate, dto.EndDate)
	require.NoError(t, dto.CheckInvariants())
}

// =============================================================================
// TOTAL DAYS
// =============================================================================

func TestTotalDays(t *testing.T) {
	engine, sel, _ := newEngine()

	// Single full day counts 1.
	engine.ToggleDate("2024-06-10", schedule.RequestOff)
	assert.True(t, schedule.TotalDays(sel, schedule.PeriodFullDay).Equal(decimal.NewFromInt(1)))

	// Single half day counts 0.5.
	assert.True(t, schedule.TotalDays(sel, schedule.PeriodMorning).Equal(decimal.NewFromFloat(0.5)))

	// Multiple dates count the date total, mode notwithstanding.
	engine.ToggleDate("2024-06-11", schedule.RequestOff)
	engine.ToggleDate("2024-06-12", schedule.RequestOff)
	assert.True(t, schedule.TotalDays(sel, schedule.PeriodMorning).Equal(decimal.NewFromInt(3)))
}
