package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/schedule-engine/api"
	"github.com/warp/schedule-engine/apiclient"
	"github.com/warp/schedule-engine/catalog"
	"github.com/warp/schedule-engine/schedule"
	"github.com/warp/schedule-engine/store/memory"
)

// newClientAgainstAPI wires the HTTP client against the real router so the
// whole wire contract is exercised, not a hand-rolled stub of it.
func newClientAgainstAPI(t *testing.T, user schedule.UserID) *apiclient.Client {
	t.Helper()
	h := api.NewHandler(memory.New(), catalog.Default())
	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL, user, zap.NewNop())
}

func offDTO(day schedule.Day) schedule.CreateRequestDTO {
	return schedule.CreateRequestDTO{
		RequestType:   schedule.RequestOff,
		PeriodType:    schedule.PeriodFullDay,
		StartDate:     day,
		EndDate:       day,
		Reason:        "Family event",
		AbsenceTypeID: "vac-1",
	}
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestClient_CreateAndListRequests(t *testing.T) {
	// GIVEN a client for alice
	client := newClientAgainstAPI(t, "alice")
	ctx := context.Background()

	// WHEN she creates a leave request and lists June
	created, err := client.CreateRequest(ctx, offDTO("2024-06-10"))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, schedule.UserID("alice"), created.UserID)
	assert.Equal(t, schedule.StatusPending, created.Status)

	listed, err := client.ListMyRequests(ctx, schedule.RequestFilters{Year: 2024, Month: time.June})
	require.NoError(t, err)

	// THEN the created request comes back under her identity
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, schedule.Day("2024-06-10"), listed[0].StartDate)
}

func TestClient_DeleteRequest(t *testing.T) {
	// GIVEN a pending request
	client := newClientAgainstAPI(t, "alice")
	ctx := context.Background()
	created, err := client.CreateRequest(ctx, offDTO("2024-06-10"))
	require.NoError(t, err)

	// WHEN it is cancelled and cancelled again
	require.NoError(t, client.DeleteRequest(ctx, created.ID))
	err = client.DeleteRequest(ctx, created.ID)

	// THEN the second cancel reports the typed not-found error
	assert.ErrorIs(t, err, schedule.ErrRequestNotFound)
}

func TestClient_SubmitWeekAndCheck(t *testing.T) {
	// GIVEN a client
	client := newClientAgainstAPI(t, "alice")
	ctx := context.Background()
	const week = schedule.Day("2024-06-10")

	// WHEN the week is submitted
	sub, err := client.SubmitWeek(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, week, sub.WeekStart)
	assert.Equal(t, schedule.WeekSubmitted, sub.Status)

	// THEN both read paths report it
	check, err := client.IsWeekSubmitted(ctx, week)
	require.NoError(t, err)
	assert.True(t, check.IsSubmitted)
	assert.Equal(t, schedule.WeekSubmitted, check.Status)

	history, err := client.ListMySubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, week, history[0].WeekStart)
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func TestClient_DuplicateSubmitIsAlreadySubmitted(t *testing.T) {
	// GIVEN an already-submitted week
	client := newClientAgainstAPI(t, "alice")
	ctx := context.Background()
	_, err := client.SubmitWeek(ctx, "2024-06-10")
	require.NoError(t, err)

	// WHEN it is submitted again
	_, err = client.SubmitWeek(ctx, "2024-06-10")

	// THEN the 409 maps to the typed conflict, not a retryable failure
	assert.ErrorIs(t, err, schedule.ErrAlreadySubmitted)
	assert.True(t, schedule.IsConflict(err))
	assert.False(t, schedule.IsRetryable(err))
}

func TestClient_OverlapConflict(t *testing.T) {
	// GIVEN an existing full-day leave
	client := newClientAgainstAPI(t, "alice")
	ctx := context.Background()
	_, err := client.CreateRequest(ctx, offDTO("2024-06-10"))
	require.NoError(t, err)

	// WHEN a second full-day request covers the same day
	_, err = client.CreateRequest(ctx, schedule.CreateRequestDTO{
		RequestType: schedule.RequestRemote,
		PeriodType:  schedule.PeriodFullDay,
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-10",
		Reason:      "Focus sprint",
	})

	// THEN the 409 request_overlap code picks the right sentinel
	assert.ErrorIs(t, err, schedule.ErrRequestOverlap)
}

func TestClient_ValidationErrorCarriesFields(t *testing.T) {
	// GIVEN a payload that fails the workflow schema server-side
	client := newClientAgainstAPI(t, "alice")
	dto := offDTO("2024-06-10")
	dto.Reason = "no"
	dto.AbsenceTypeID = ""

	// WHEN it is created
	_, err := client.CreateRequest(context.Background(), dto)

	// THEN the 400 decodes back into a structured ValidationError
	require.True(t, schedule.IsValidation(err))
	var verr *schedule.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make(map[string]string)
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Contains(t, fields, "AbsenceTypeID")
	assert.Contains(t, fields, "Reason")
}

func TestClient_AuthFailure(t *testing.T) {
	// GIVEN a server that rejects the session
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, "alice", zap.NewNop())

	// WHEN any call is made
	_, err := client.ListMySubmissions(context.Background())

	// THEN the error is the auth sentinel and not retried
	assert.ErrorIs(t, err, schedule.ErrSessionExpired)
	assert.True(t, schedule.IsAuth(err))
}

// =============================================================================
// RETRY POLICY
// =============================================================================

func TestClient_RetriesTransientFailure(t *testing.T) {
	// GIVEN a server that fails twice before recovering
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]api.WeekSubmissionDTO{})
	}))
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, "alice", zap.NewNop(),
		apiclient.WithRetry(3, time.Millisecond))

	// WHEN the history is listed
	subs, err := client.ListMySubmissions(context.Background())

	// THEN the call succeeds on the third attempt
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ExhaustedRetriesReportUnavailable(t *testing.T) {
	// GIVEN a server that never recovers
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, "alice", zap.NewNop(),
		apiclient.WithRetry(2, time.Millisecond))

	// WHEN the history is listed
	_, err := client.ListMySubmissions(context.Background())

	// THEN every attempt was spent and the error stays retryable
	assert.ErrorIs(t, err, schedule.ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load()) // initial try + 2 retries
}

func TestClient_ConflictIsNotRetried(t *testing.T) {
	// GIVEN a server that always answers 409
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(api.ErrorResponse{Code: api.CodeAlreadySubmitted})
	}))
	t.Cleanup(srv.Close)
	client := apiclient.New(srv.URL, "alice", zap.NewNop(),
		apiclient.WithRetry(3, time.Millisecond))

	// WHEN the week is submitted
	_, err := client.SubmitWeek(context.Background(), "2024-06-10")

	// THEN exactly one attempt was made
	assert.ErrorIs(t, err, schedule.ErrAlreadySubmitted)
	assert.Equal(t, int32(1), calls.Load())
}
