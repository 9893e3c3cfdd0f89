/*
Package sqlite provides the SQLite-backed persistence for the approval API.

PURPOSE:
  Stores requests, week submissions and timesheet entries. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  requests:          Leave/remote/onsite/time requests with day bounds
  week_submissions:  One approval envelope per (user, week start)
  timesheet_entries: Day-level worked hours

IDEMPOTENCY:
  idx_unique_week_submission (UNIQUE on user_id, week_start) makes a second
  submission of the same week fail at the database level; the handler maps
  that violation to the 409 "already submitted" response. Two racing submits
  can never create two envelopes.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/schedule.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - store/memory: In-memory implementation for testing/dev
  - api/handlers.go: The consuming interface
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/schedule-engine/schedule"
)

// Store implements the api.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_type TEXT NOT NULL,
		period_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL,
		time_type TEXT,
		start_time TEXT,
		end_time TEXT,
		reason TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user_dates
		ON requests(user_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS week_submissions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		status TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		decided_at TEXT,
		decided_by TEXT
	);

	-- One envelope per user per week; the server half of submit idempotency.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_week_submission
		ON week_submissions(user_id, week_start);

	CREATE TABLE IF NOT EXISTS timesheet_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		task_id TEXT NOT NULL,
		hours TEXT NOT NULL,
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_timesheet_user_date
		ON timesheet_entries(user_id, entry_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REQUESTS
// =============================================================================

// SaveRequest inserts a new request.
func (s *Store) SaveRequest(ctx context.Context, r schedule.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests
			(id, user_id, request_type, period_type, start_date, end_date,
			 status, time_type, start_time, end_time, reason, note,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(r.ID), string(r.UserID), string(r.RequestType), string(r.PeriodType),
		string(r.StartDate), string(r.EndDate), string(r.Status),
		string(r.TimeType), r.StartTime, r.EndTime, r.Reason, r.Note,
		r.CreatedAt.UTC().Format(time.RFC3339), r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

// GetRequest fetches one request by id.
func (s *Store) GetRequest(ctx context.Context, id schedule.RequestID) (schedule.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, request_type, period_type, start_date, end_date,
		       status, time_type, start_time, end_time, reason, note,
		       created_at, updated_at
		FROM requests WHERE id = ?`, string(id))

	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Request{}, schedule.ErrRequestNotFound
	}
	return r, err
}

// UpdateRequest rewrites an existing request's editable fields.
func (s *Store) UpdateRequest(ctx context.Context, r schedule.Request) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE requests SET
			request_type = ?, period_type = ?, start_date = ?, end_date = ?,
			status = ?, time_type = ?, start_time = ?, end_time = ?,
			reason = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		string(r.RequestType), string(r.PeriodType), string(r.StartDate), string(r.EndDate),
		string(r.Status), string(r.TimeType), r.StartTime, r.EndTime,
		r.Reason, r.Note, r.UpdatedAt.UTC().Format(time.RFC3339),
		string(r.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return schedule.ErrRequestNotFound
	}
	return nil
}

// DeleteRequest removes a request.
func (s *Store) DeleteRequest(ctx context.Context, id schedule.RequestID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return schedule.ErrRequestNotFound
	}
	return nil
}

// ListRequests returns a user's requests intersecting the given month,
// optionally narrowed by request type.
func (s *Store) ListRequests(ctx context.Context, user schedule.UserID, year int, month time.Month, rt schedule.RequestType) ([]schedule.Request, error) {
	first := schedule.NewDay(year, month, 1)
	last := schedule.DayOf(first.Time().AddDate(0, 1, -1))

	query := `
		SELECT id, user_id, request_type, period_type, start_date, end_date,
		       status, time_type, start_time, end_time, reason, note,
		       created_at, updated_at
		FROM requests
		WHERE user_id = ? AND start_date <= ? AND end_date >= ?`
	args := []any{string(user), string(last), string(first)}
	if rt != "" {
		query += ` AND request_type = ?`
		args = append(args, string(rt))
	}
	query += ` ORDER BY start_date, id`

	return s.queryRequests(ctx, query, args...)
}

// ListRequestsOverlapping returns a user's requests whose day range
// intersects [start, end]; used for server-side conflict checks.
func (s *Store) ListRequestsOverlapping(ctx context.Context, user schedule.UserID, start, end schedule.Day) ([]schedule.Request, error) {
	return s.queryRequests(ctx, `
		SELECT id, user_id, request_type, period_type, start_date, end_date,
		       status, time_type, start_time, end_time, reason, note,
		       created_at, updated_at
		FROM requests
		WHERE user_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date, id`,
		string(user), string(end), string(start))
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]schedule.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []schedule.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (schedule.Request, error) {
	var r schedule.Request
	var id, userID, requestType, periodType, startDate, endDate, status string
	var timeType, startTime, endTime, note sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&id, &userID, &requestType, &periodType, &startDate, &endDate,
		&status, &timeType, &startTime, &endTime, &r.Reason, &note,
		&createdAt, &updatedAt)
	if err != nil {
		return schedule.Request{}, err
	}

	r.ID = schedule.RequestID(id)
	r.UserID = schedule.UserID(userID)
	r.RequestType = schedule.RequestType(requestType)
	r.PeriodType = schedule.PeriodType(periodType)
	r.StartDate = schedule.Day(startDate)
	r.EndDate = schedule.Day(endDate)
	r.Status = schedule.RequestStatus(status)
	r.TimeType = schedule.TimeType(timeType.String)
	r.StartTime = startTime.String
	r.EndTime = endTime.String
	r.Note = note.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// WEEK SUBMISSIONS
// =============================================================================

// CreateWeekSubmission inserts the week's approval envelope. A duplicate
// (user, week) maps to schedule.ErrAlreadySubmitted via the unique index.
func (s *Store) CreateWeekSubmission(ctx context.Context, sub schedule.WeekSubmission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO week_submissions (id, user_id, week_start, status, submitted_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(sub.ID), string(sub.UserID), string(sub.WeekStart),
		string(sub.Status), sub.SubmittedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return schedule.ErrAlreadySubmitted
		}
		return fmt.Errorf("failed to create week submission: %w", err)
	}
	return nil
}

// GetWeekSubmission fetches a user's envelope for a week; nil when absent.
func (s *Store) GetWeekSubmission(ctx context.Context, user schedule.UserID, weekStart schedule.Day) (*schedule.WeekSubmission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, week_start, status, submitted_at, decided_at, decided_by
		FROM week_submissions WHERE user_id = ? AND week_start = ?`,
		string(user), string(weekStart))

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListWeekSubmissions returns a user's full submission history, newest week first.
func (s *Store) ListWeekSubmissions(ctx context.Context, user schedule.UserID) ([]schedule.WeekSubmission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, week_start, status, submitted_at, decided_at, decided_by
		FROM week_submissions WHERE user_id = ?
		ORDER BY week_start DESC`, string(user))
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []schedule.WeekSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DecideWeekSubmission records an approve/reject decision. Administrative
// path; requesters only ever observe the status change.
func (s *Store) DecideWeekSubmission(ctx context.Context, id schedule.SubmissionID, status schedule.WeekStatus, decidedBy string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE week_submissions SET status = ?, decided_at = ?, decided_by = ?
		WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), decidedBy, string(id))
	if err != nil {
		return fmt.Errorf("failed to decide submission: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return schedule.ErrRequestNotFound
	}
	return nil
}

func scanSubmission(row rowScanner) (schedule.WeekSubmission, error) {
	var sub schedule.WeekSubmission
	var id, userID, weekStart, status, submittedAt string
	var decidedAt, decidedBy sql.NullString

	err := row.Scan(&id, &userID, &weekStart, &status, &submittedAt, &decidedAt, &decidedBy)
	if err != nil {
		return schedule.WeekSubmission{}, err
	}

	sub.ID = schedule.SubmissionID(id)
	sub.UserID = schedule.UserID(userID)
	sub.WeekStart = schedule.Day(weekStart)
	sub.Status = schedule.WeekStatus(status)
	sub.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
	if decidedAt.Valid {
		t, err := time.Parse(time.RFC3339, decidedAt.String)
		if err == nil {
			sub.DecidedAt = &t
		}
	}
	sub.DecidedBy = decidedBy.String
	return sub, nil
}

// =============================================================================
// TIMESHEET ENTRIES
// =============================================================================

// SaveTimesheetEntry inserts one day entry.
func (s *Store) SaveTimesheetEntry(ctx context.Context, e schedule.TimesheetEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timesheet_entries (id, user_id, entry_date, task_id, hours, note)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.UserID), string(e.Date), e.TaskID, e.Hours.String(), e.Note)
	if err != nil {
		return fmt.Errorf("failed to save timesheet entry: %w", err)
	}
	return nil
}

// ListTimesheetEntries returns day entries in the inclusive day range.
func (s *Store) ListTimesheetEntries(ctx context.Context, user schedule.UserID, from, to schedule.Day) ([]schedule.TimesheetEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entry_date, task_id, hours, note
		FROM timesheet_entries
		WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date, id`,
		string(user), string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []schedule.TimesheetEntry
	for rows.Next() {
		var e schedule.TimesheetEntry
		var userID, date, hours string
		var note sql.NullString
		if err := rows.Scan(&e.ID, &userID, &date, &e.TaskID, &hours, &note); err != nil {
			return nil, err
		}
		e.UserID = schedule.UserID(userID)
		e.Date = schedule.Day(date)
		e.Note = note.String
		e.Hours, err = decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("corrupt hours value %q: %w", hours, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isUniqueViolation detects a UNIQUE constraint failure without depending on
// driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
