package schedule

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar day as a comparable YYYY-MM-DD string
// =============================================================================
// A Day compares with plain string operators. Because the format is
// zero-padded ISO-8601, lexicographic order is chronological order, and no
// timezone can shift a comparison result.

type Day string

const dayLayout = "2006-01-02"

// NewDay builds a Day from calendar components.
func NewDay(year int, month time.Month, day int) Day {
	return Day(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dayLayout))
}

// ParseDay validates and canonicalizes a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return Day(t.Format(dayLayout)), nil
}

// DayOf truncates a timestamp to its calendar day in UTC.
func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(dayLayout))
}

// Time returns midnight UTC of the day. Zero time for a malformed Day.
func (d Day) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Day) IsZero() bool { return d == "" }

func (d Day) Weekday() time.Weekday { return d.Time().Weekday() }

// AddDays returns the day n calendar days later (earlier for negative n).
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d Day) Year() int         { return d.Time().Year() }
func (d Day) Month() time.Month { return d.Time().Month() }

// MinDay and MaxDay return chronological bounds of a non-empty day set.
func MinDay(days []Day) Day {
	min := days[0]
	for _, d := range days[1:] {
		if d < min {
			min = d
		}
	}
	return min
}

func MaxDay(days []Day) Day {
	max := days[0]
	for _, d := range days[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// =============================================================================
// WEEKS - Monday-based work weeks
// =============================================================================

// WeekStart returns the Monday of the week containing d.
func WeekStart(d Day) Day {
	wd := d.Weekday()
	if wd == time.Sunday {
		return d.AddDays(-6)
	}
	return d.AddDays(-(int(wd) - int(time.Monday)))
}

// IsWeekStart reports whether d is a Monday.
func IsWeekStart(d Day) bool { return d.Weekday() == time.Monday }

// WeekDays returns the seven days of the week starting at weekStart.
func WeekDays(weekStart Day) []Day {
	days := make([]Day, 7)
	for i := range days {
		days[i] = weekStart.AddDays(i)
	}
	return days
}

// DaySpan returns the number of days in the inclusive [start, end] range.
// Zero when end precedes start.
func DaySpan(start, end Day) int {
	if end < start {
		return 0
	}
	return int(end.Time().Sub(start.Time()).Hours()/24) + 1
}

// =============================================================================
// MONTH GRID - Calendar-month range padded to full weeks
// =============================================================================

// MonthGrid returns every day of the month-view grid for (year, month):
// the first Monday on or before the 1st through the Sunday on or after the
// last day. Length is always a multiple of 7.
func MonthGrid(year int, month time.Month) []Day {
	first := NewDay(year, month, 1)
	last := DayOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))

	cur := WeekStart(first)
	end := WeekStart(last).AddDays(6)

	var grid []Day
	for cur <= end {
		grid = append(grid, cur)
		cur = cur.AddDays(1)
	}
	return grid
}

// InMonth reports whether d falls inside (year, month), as opposed to being
// part of the grid's leading or trailing padding.
func (d Day) InMonth(year int, month time.Month) bool {
	t := d.Time()
	return t.Year() == year && t.Month() == month
}
