package schedule_test

import (
	"testing"
	"time"

	"github.com/warp/schedule-engine/schedule"
)

func TestCellState_ConflictScenarios(t *testing.T) {
	// GIVEN: Two OFF MORNING requests covering 2024-06-10
	// THEN: The cell is conflict-flagged
	sel := schedule.NewSelection()
	cells := schedule.NewCellStore(sel)
	d := schedule.Day("2024-06-10")

	cells.SetRequests([]schedule.Request{
		singleDay("m1", schedule.RequestOff, schedule.PeriodMorning, d),
		singleDay("m2", schedule.RequestOff, schedule.PeriodMorning, d),
	})
	if !cells.CellState(d).HasConflict {
		t.Error("two same-period requests on one day must conflict")
	}

	// WHEN: The set becomes one MORNING + one AFTERNOON
	// THEN: No conflict
	cells.SetRequests([]schedule.Request{
		singleDay("m1", schedule.RequestOff, schedule.PeriodMorning, d),
		singleDay("a1", schedule.RequestOff, schedule.PeriodAfternoon, d),
	})
	state := cells.CellState(d)
	if state.HasConflict {
		t.Error("morning + afternoon must not conflict")
	}
	if len(state.CoveringRequests) != 2 {
		t.Errorf("expected 2 covering requests, got %d", len(state.CoveringRequests))
	}
}

func TestCellState_TracksSelection(t *testing.T) {
	sel := schedule.NewSelection()
	cells := schedule.NewCellStore(sel)
	engine := schedule.NewSelectionEngine(sel, cells)
	d := schedule.Day("2024-06-10")

	if cells.CellState(d).IsSelected {
		t.Fatal("nothing selected yet")
	}

	// Cached state must refresh when the selection changes.
	engine.ToggleDate(d, schedule.RequestOff)
	if !cells.CellState(d).IsSelected {
		t.Error("cell should be selected after toggle")
	}

	engine.Clear()
	if cells.CellState(d).IsSelected {
		t.Error("cell should be deselected after Clear")
	}
}

func TestCellState_NormalizesLegacyTimeEncoding(t *testing.T) {
	// An upstream OFF + periodType TIME request surfaces as the explicit
	// TIME request type.
	sel := schedule.NewSelection()
	cells := schedule.NewCellStore(sel)
	d := schedule.Day("2024-06-10")

	cells.SetRequests([]schedule.Request{
		singleDay("t1", schedule.RequestOff, schedule.PeriodTime, d),
	})

	got := cells.CellState(d).CoveringRequests
	if len(got) != 1 || got[0].RequestType != schedule.RequestTime {
		t.Errorf("expected normalized TIME request, got %+v", got)
	}
}

func TestCellStore_StaleLoadDropped(t *testing.T) {
	// GIVEN: Two in-flight month reads, the second issued after the first
	// WHEN: The first one's result lands last
	// THEN: It is dropped; the newer result stays applied
	sel := schedule.NewSelection()
	cells := schedule.NewCellStore(sel)
	d := schedule.Day("2024-06-10")

	older := cells.BeginLoad(2024, time.June)
	newer := cells.BeginLoad(2024, time.June)

	if !cells.ApplyLoad(newer, []schedule.Request{
		singleDay("new", schedule.RequestRemote, schedule.PeriodFullDay, d),
	}) {
		t.Fatal("newest load must apply")
	}
	if cells.ApplyLoad(older, []schedule.Request{
		singleDay("old", schedule.RequestOff, schedule.PeriodFullDay, d),
	}) {
		t.Fatal("superseded load must be dropped")
	}

	got := cells.CellState(d).CoveringRequests
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("expected the newer request set to win, got %+v", got)
	}
}

func TestGridStates_CoversWholeGrid(t *testing.T) {
	sel := schedule.NewSelection()
	cells := schedule.NewCellStore(sel)

	states := cells.GridStates(2024, time.June)
	if len(states) != len(schedule.MonthGrid(2024, time.June)) {
		t.Fatalf("state count mismatch")
	}
	for _, s := range states {
		if s.Mode != schedule.PeriodFullDay {
			t.Errorf("fresh cell %s should default to FULL_DAY", s.Date)
		}
	}
}
