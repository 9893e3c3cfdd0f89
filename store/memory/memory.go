// Package memory provides an in-memory store implementation (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu          sync.RWMutex
	requests    map[schedule.RequestID]schedule.Request
	submissions map[submissionKey]schedule.WeekSubmission
	entries     []schedule.TimesheetEntry
}

type submissionKey struct {
	UserID    schedule.UserID
	WeekStart schedule.Day
}

func New() *Store {
	return &Store{
		requests:    make(map[schedule.RequestID]schedule.Request),
		submissions: make(map[submissionKey]schedule.WeekSubmission),
	}
}

func (s *Store) Close() error { return nil }

// =============================================================================
// REQUESTS
// =============================================================================

func (s *Store) SaveRequest(_ context.Context, r schedule.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = r
	return nil
}

func (s *Store) GetRequest(_ context.Context, id schedule.RequestID) (schedule.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return schedule.Request{}, schedule.ErrRequestNotFound
	}
	return r, nil
}

func (s *Store) UpdateRequest(_ context.Context, r schedule.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; !ok {
		return schedule.ErrRequestNotFound
	}
	s.requests[r.ID] = r
	return nil
}

func (s *Store) DeleteRequest(_ context.Context, id schedule.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[id]; !ok {
		return schedule.ErrRequestNotFound
	}
	delete(s.requests, id)
	return nil
}

func (s *Store) ListRequests(_ context.Context, user schedule.UserID, year int, month time.Month, rt schedule.RequestType) ([]schedule.Request, error) {
	first := schedule.NewDay(year, month, 1)
	last := schedule.DayOf(first.Time().AddDate(0, 1, -1))

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schedule.Request
	for _, r := range s.requests {
		if r.UserID != user || r.StartDate > last || r.EndDate < first {
			continue
		}
		if rt != "" && r.RequestType != rt {
			continue
		}
		out = append(out, r)
	}
	sortRequests(out)
	return out, nil
}

func (s *Store) ListRequestsOverlapping(_ context.Context, user schedule.UserID, start, end schedule.Day) ([]schedule.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schedule.Request
	for _, r := range s.requests {
		if r.UserID == user && r.StartDate <= end && r.EndDate >= start {
			out = append(out, r)
		}
	}
	sortRequests(out)
	return out, nil
}

func sortRequests(requests []schedule.Request) {
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].StartDate != requests[j].StartDate {
			return requests[i].StartDate < requests[j].StartDate
		}
		return requests[i].ID < requests[j].ID
	})
}

// =============================================================================
// WEEK SUBMISSIONS
// =============================================================================

func (s *Store) CreateWeekSubmission(_ context.Context, sub schedule.WeekSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := submissionKey{UserID: sub.UserID, WeekStart: sub.WeekStart}
	if _, exists := s.submissions[k]; exists {
		return schedule.ErrAlreadySubmitted
	}
	s.submissions[k] = sub
	return nil
}

func (s *Store) GetWeekSubmission(_ context.Context, user schedule.UserID, weekStart schedule.Day) (*schedule.WeekSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[submissionKey{UserID: user, WeekStart: weekStart}]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *Store) ListWeekSubmissions(_ context.Context, user schedule.UserID) ([]schedule.WeekSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schedule.WeekSubmission
	for _, sub := range s.submissions {
		if sub.UserID == user {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart > out[j].WeekStart })
	return out, nil
}

func (s *Store) DecideWeekSubmission(_ context.Context, id schedule.SubmissionID, status schedule.WeekStatus, decidedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, sub := range s.submissions {
		if sub.ID == id {
			now := time.Now().UTC()
			sub.Status = status
			sub.DecidedAt = &now
			sub.DecidedBy = decidedBy
			s.submissions[k] = sub
			return nil
		}
	}
	return schedule.ErrRequestNotFound
}

// =============================================================================
// TIMESHEET ENTRIES
// =============================================================================

func (s *Store) SaveTimesheetEntry(_ context.Context, e schedule.TimesheetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *Store) ListTimesheetEntries(_ context.Context, user schedule.UserID, from, to schedule.Day) ([]schedule.TimesheetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []schedule.TimesheetEntry
	for _, e := range s.entries {
		if e.UserID == user && e.Date >= from && e.Date <= to {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
