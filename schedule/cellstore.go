/*
cellstore.go - Derived per-date calendar cell state

PURPOSE:
  Materializes CellState for every date of a visible month grid. The state
  is a memoized pure function of (date, Selection, Request set): covering
  requests and the conflict flag are always recomputed from inputs, never
  set directly, so they can never go stale relative to the request set.

ASYNC LOADS:
  Month request lists arrive from the network out of order when the user
  re-filters quickly. BeginLoad/ApplyLoad implement last-write-wins keyed by
  the load parameters: a result whose token was superseded is dropped, not
  applied. There is no transport-level cancellation.

FAILURE SEMANTICS:
  None. The store has no I/O; malformed days are rejected by callers before
  reaching this layer.
*/
package schedule

import "time"

// =============================================================================
// CELL STATE
// =============================================================================

// CellState is the derived view model for one calendar day. Never
// authoritative, never persisted.
type CellState struct {
	Date             Day
	Mode             PeriodType // current cycling period, independent per date
	CoveringRequests []Request
	IsSelected       bool
	HasConflict      bool
}

// =============================================================================
// CELL STORE
// =============================================================================

type cellEntry struct {
	state      CellState
	selVersion uint64
	loadGen    uint64
}

// LoadToken identifies one in-flight month read. Apply a result only through
// the token that started it.
type LoadToken struct {
	Year  int
	Month time.Month
	gen   uint64
}

type CellStore struct {
	sel      *Selection
	requests []Request
	modes    map[Day]PeriodType
	cache    map[Day]cellEntry
	loadGen  uint64 // generation of the applied request set
	issueGen uint64 // generation of the newest issued load
}

func NewCellStore(sel *Selection) *CellStore {
	return &CellStore{
		sel:   sel,
		modes: make(map[Day]PeriodType),
		cache: make(map[Day]cellEntry),
	}
}

// SetRequests replaces the request set synchronously (tests, initial load).
func (c *CellStore) SetRequests(requests []Request) {
	c.issueGen++
	c.applyRequests(requests, c.issueGen)
}

// BeginLoad registers an in-flight read for (year, month) and returns its
// token. A later BeginLoad supersedes every earlier one.
func (c *CellStore) BeginLoad(year int, month time.Month) LoadToken {
	c.issueGen++
	return LoadToken{Year: year, Month: month, gen: c.issueGen}
}

// ApplyLoad installs the result of a read if its token is still current.
// It reports whether the result was applied or dropped as stale.
func (c *CellStore) ApplyLoad(token LoadToken, requests []Request) bool {
	if token.gen < c.issueGen {
		return false
	}
	c.applyRequests(requests, token.gen)
	return true
}

func (c *CellStore) applyRequests(requests []Request, gen uint64) {
	normalized := make([]Request, len(requests))
	for i, r := range requests {
		normalized[i] = r.Normalize()
	}
	c.requests = normalized
	c.loadGen = gen
}

// Requests returns the currently applied request set.
func (c *CellStore) Requests() []Request {
	out := make([]Request, len(c.requests))
	copy(out, c.requests)
	return out
}

// CellState computes the derived state for d, cached until the Selection or
// the request set changes.
func (c *CellStore) CellState(d Day) CellState {
	if e, ok := c.cache[d]; ok && e.selVersion == c.sel.Version() && e.loadGen == c.loadGen {
		return e.state
	}

	covering := CoveringRequests(d, c.requests)
	state := CellState{
		Date:             d,
		Mode:             c.mode(d),
		CoveringRequests: covering,
		IsSelected:       c.sel.Contains(d),
		HasConflict:      HasConflict(covering),
	}
	c.cache[d] = cellEntry{state: state, selVersion: c.sel.Version(), loadGen: c.loadGen}
	return state
}

// GridStates computes cell state for every day of the month-view grid.
func (c *CellStore) GridStates(year int, month time.Month) []CellState {
	grid := MonthGrid(year, month)
	states := make([]CellState, len(grid))
	for i, d := range grid {
		states[i] = c.CellState(d)
	}
	return states
}

// CycleMode advances d's period mode one step and returns the new mode.
// This is the only externally writable piece of cell state; covering and
// conflict data stay derived.
func (c *CellStore) CycleMode(d Day) PeriodType {
	next := c.mode(d).Next()
	c.modes[d] = next
	delete(c.cache, d)
	return next
}

// Mode returns d's current cycling mode without advancing it.
func (c *CellStore) Mode(d Day) PeriodType { return c.mode(d) }

// ResetModes drops every per-date mode back to FULL_DAY.
func (c *CellStore) ResetModes() {
	c.modes = make(map[Day]PeriodType)
	c.cache = make(map[Day]cellEntry)
}

func (c *CellStore) mode(d Day) PeriodType {
	if m, ok := c.modes[d]; ok {
		return m
	}
	return PeriodFullDay
}
