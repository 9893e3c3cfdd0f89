package schedule_test

import (
	"testing"
	"time"

	"github.com/warp/schedule-engine/schedule"
)

func TestParseDay_Canonicalizes(t *testing.T) {
	d, err := schedule.ParseDay("2024-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != schedule.Day("2024-06-10") {
		t.Errorf("expected 2024-06-10, got %s", d)
	}
}

func TestParseDay_RejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "2024-13-01", "2024-06-32", "06/10/2024", "2024-6-1"} {
		if _, err := schedule.ParseDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDay_OrderIsChronological(t *testing.T) {
	// String comparison on zero-padded ISO days must match time comparison.
	a := schedule.NewDay(2024, time.June, 9)
	b := schedule.NewDay(2024, time.June, 10)
	c := schedule.NewDay(2024, time.December, 2)

	if !(a < b && b < c) {
		t.Errorf("expected %s < %s < %s", a, b, c)
	}
}

func TestWeekStart_AlwaysMonday(t *testing.T) {
	// 2024-06-10 is a Monday.
	monday := schedule.NewDay(2024, time.June, 10)
	for i := 0; i < 7; i++ {
		d := monday.AddDays(i)
		if got := schedule.WeekStart(d); got != monday {
			t.Errorf("WeekStart(%s) = %s, expected %s", d, got, monday)
		}
	}
}

func TestMonthGrid_PaddedToFullWeeks(t *testing.T) {
	// GIVEN: June 2024 (starts Saturday, ends Sunday)
	// THEN: Grid runs Monday 2024-05-27 through Sunday 2024-06-30
	grid := schedule.MonthGrid(2024, time.June)

	if len(grid)%7 != 0 {
		t.Fatalf("grid length %d not a multiple of 7", len(grid))
	}
	if grid[0] != schedule.Day("2024-05-27") {
		t.Errorf("grid starts at %s, expected 2024-05-27", grid[0])
	}
	if grid[len(grid)-1] != schedule.Day("2024-06-30") {
		t.Errorf("grid ends at %s, expected 2024-06-30", grid[len(grid)-1])
	}
	if grid[0].Weekday() != time.Monday {
		t.Errorf("grid starts on %s, expected Monday", grid[0].Weekday())
	}
	if grid[0].InMonth(2024, time.June) {
		t.Errorf("%s is padding, not part of June", grid[0])
	}
	if !grid[5].InMonth(2024, time.June) {
		t.Errorf("%s should be part of June", grid[5])
	}
}

func TestWeekDays_SevenConsecutive(t *testing.T) {
	days := schedule.WeekDays(schedule.Day("2024-06-10"))
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[6] != schedule.Day("2024-06-16") {
		t.Errorf("expected week to end 2024-06-16, got %s", days[6])
	}
}

func TestMinMaxDay(t *testing.T) {
	days := []schedule.Day{"2024-06-12", "2024-06-10", "2024-06-11"}
	if schedule.MinDay(days) != "2024-06-10" {
		t.Errorf("MinDay wrong: %s", schedule.MinDay(days))
	}
	if schedule.MaxDay(days) != "2024-06-12" {
		t.Errorf("MaxDay wrong: %s", schedule.MaxDay(days))
	}
}

func TestDaySpan(t *testing.T) {
	cases := []struct {
		start, end schedule.Day
		want       int
	}{
		{"2024-06-10", "2024-06-10", 1},
		{"2024-06-10", "2024-06-12", 3},
		{"2024-05-30", "2024-06-02", 4},
		{"2024-06-12", "2024-06-10", 0},
	}
	for _, tc := range cases {
		if got := schedule.DaySpan(tc.start, tc.end); got != tc.want {
			t.Errorf("DaySpan(%s, %s) = %d, want %d", tc.start, tc.end, got, tc.want)
		}
	}
}
