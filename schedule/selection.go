/*
selection.go - Day-selection state machine

PURPOSE:
  Owns the set of currently highlighted calendar days and the single request
  type that constrains further additions.

STATES:
  Empty                      no dates, no active type
  SingleType(type, dates)    one or more dates, all added under one type

TRANSITIONS (ToggleDate):
  Empty        --select(d, t)-->         SingleType(t, {d})
  SingleType   --select(d in dates)-->   remove d; Empty when last one goes
  SingleType   --select(d, same t)-->    add d (range mode once |dates| > 1)
  SingleType   --select(d, other t)-->   replace with SingleType(other, {d})

The replace transition models "one request type per batched selection":
picking a different type starts a fresh selection atomically.

Insertion order of dates is the user's click order; chronological bounds are
computed only at submission time (router.go).
*/
package schedule

// =============================================================================
// SELECTION - Transient, client-only state
// =============================================================================

type SelectionMode string

const (
	SelectionSingle SelectionMode = "single"
	SelectionRange  SelectionMode = "range"
)

// Selection is the explicit state object shared by the selection engine and
// the cell store. Consumers mutate it through engine methods only.
type Selection struct {
	dates      []Day // click order, all distinct
	activeType RequestType

	// version increments on every mutation; memoized consumers compare it
	// to detect staleness.
	version uint64
}

func NewSelection() *Selection { return &Selection{} }

func (s *Selection) Dates() []Day {
	out := make([]Day, len(s.dates))
	copy(out, s.dates)
	return out
}

func (s *Selection) ActiveType() RequestType { return s.activeType }

func (s *Selection) IsEmpty() bool { return len(s.dates) == 0 }

func (s *Selection) Count() int { return len(s.dates) }

func (s *Selection) Contains(d Day) bool {
	for _, sd := range s.dates {
		if sd == d {
			return true
		}
	}
	return false
}

// Mode is informational: range means more than one date is held for one
// batched submission.
func (s *Selection) Mode() SelectionMode {
	if len(s.dates) > 1 {
		return SelectionRange
	}
	return SelectionSingle
}

// Bounds returns the chronological min/max of the selected dates, not the
// insertion order. Zero days when empty.
func (s *Selection) Bounds() (start, end Day) {
	if len(s.dates) == 0 {
		return "", ""
	}
	return MinDay(s.dates), MaxDay(s.dates)
}

func (s *Selection) Version() uint64 { return s.version }

// =============================================================================
// SELECTION ENGINE
// =============================================================================

// SelectionEngine drives a Selection and the per-date period modes of a
// CellStore. It never calls the network.
type SelectionEngine struct {
	sel   *Selection
	cells *CellStore
}

func NewSelectionEngine(sel *Selection, cells *CellStore) *SelectionEngine {
	return &SelectionEngine{sel: sel, cells: cells}
}

func (e *SelectionEngine) Selection() *Selection { return e.sel }

// ToggleDate applies one click on a calendar day with the clicked cell's
// request-type context. An unset requestType on a non-member date starts a
// fresh typeless singleton, same as a type change.
func (e *SelectionEngine) ToggleDate(d Day, requestType RequestType) {
	s := e.sel
	defer func() { s.version++ }()

	// Already selected: remove, regardless of type context.
	if s.Contains(d) {
		kept := s.dates[:0]
		for _, sd := range s.dates {
			if sd != d {
				kept = append(kept, sd)
			}
		}
		s.dates = kept
		if len(s.dates) == 0 {
			s.activeType = ""
		}
		return
	}

	// Different (or unset) type replaces the whole selection atomically.
	if s.IsEmpty() || requestType != s.activeType {
		s.dates = []Day{d}
		s.activeType = requestType
		return
	}

	s.dates = append(s.dates, d)
}

// ToggleMode advances d's cycling period mode without touching selection
// membership. It reports openSubmission when the cycle reaches TIME: a TIME
// request is always single-day with no further period refinement, so the
// caller opens the submission workflow immediately instead of waiting for
// another interaction.
func (e *SelectionEngine) ToggleMode(d Day) (mode PeriodType, openSubmission bool) {
	mode = e.cells.CycleMode(d)
	return mode, mode == PeriodTime
}

// Clear resets to the empty selection unconditionally.
func (e *SelectionEngine) Clear() {
	e.sel.dates = nil
	e.sel.activeType = ""
	e.sel.version++
}
