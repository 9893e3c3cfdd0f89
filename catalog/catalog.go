/*
Package catalog defines the absence types a leave request can reference.

PURPOSE:
  A leave request names its absence type by id (annual leave, sick, ...).
  The catalog is the authority on which ids exist and what constraints each
  type imposes on a request: whether a note is mandatory and how many
  consecutive days a single request may cover.

CONFIGURATION:
  Deployments ship the built-in presets (Default) or load their own types
  from JSON (Parse/LoadFile) so HR can adjust the catalog without a code
  change.

EXAMPLE:
  cat := catalog.Default()
  if err := cat.CheckRequest("sick-1", "", 3); err != nil {
      // sick leave over 2 days requires a note
  }

SEE ALSO:
  - api/handlers.go: Enforces the catalog on request create/update
*/
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/warp/schedule-engine/schedule"
)

// =============================================================================
// TYPES
// =============================================================================

// AbsenceType is one selectable leave category.
type AbsenceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Paid bool   `json:"paid"`

	// RequiresNoteOverDays forces a note once a request spans strictly more
	// than this many days. Negative disables the rule.
	RequiresNoteOverDays int `json:"requiresNoteOverDays"`

	// MaxDaysPerRequest caps the consecutive days one request may cover.
	// Zero means uncapped.
	MaxDaysPerRequest int `json:"maxDaysPerRequest"`
}

// Catalog is an immutable, id-addressable set of absence types.
type Catalog struct {
	types []AbsenceType
	byID  map[string]AbsenceType
}

func New(types []AbsenceType) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]AbsenceType, len(types))}
	for _, t := range types {
		if t.ID == "" || t.Name == "" {
			return nil, fmt.Errorf("absence type needs id and name, got %+v", t)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate absence type id %q", t.ID)
		}
		c.byID[t.ID] = t
		c.types = append(c.types, t)
	}
	return c, nil
}

// Types returns every absence type in declaration order.
func (c *Catalog) Types() []AbsenceType { return c.types }

// Get looks an absence type up by id.
func (c *Catalog) Get(id string) (AbsenceType, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// =============================================================================
// REQUEST CHECK
// =============================================================================

// CheckRequest validates a leave request's absence type reference: the id
// must exist, the span must respect the type's cap, and long requests of
// note-requiring types must carry a note. Failures come back as a
// schedule.ValidationError so they merge with the workflow schema errors.
func (c *Catalog) CheckRequest(absenceTypeID, note string, days int) error {
	t, ok := c.Get(absenceTypeID)
	if !ok {
		return &schedule.ValidationError{Workflow: schedule.WorkflowOff, Fields: []schedule.FieldError{{
			Field:   "AbsenceTypeID",
			Rule:    "known_type",
			Message: fmt.Sprintf("unknown absence type %q", absenceTypeID),
		}}}
	}

	var fields []schedule.FieldError
	if t.MaxDaysPerRequest > 0 && days > t.MaxDaysPerRequest {
		fields = append(fields, schedule.FieldError{
			Field:   "EndDate",
			Rule:    "max_days",
			Message: fmt.Sprintf("%s requests may cover at most %d days", t.Name, t.MaxDaysPerRequest),
		})
	}
	if t.RequiresNoteOverDays >= 0 && days > t.RequiresNoteOverDays && note == "" {
		fields = append(fields, schedule.FieldError{
			Field:   "Note",
			Rule:    "note_required",
			Message: fmt.Sprintf("%s requests over %d days require a note", t.Name, t.RequiresNoteOverDays),
		})
	}
	if len(fields) == 0 {
		return nil
	}
	return &schedule.ValidationError{Workflow: schedule.WorkflowOff, Fields: fields}
}

// =============================================================================
// JSON LOADING
// =============================================================================

// Parse builds a catalog from a JSON array of absence types.
func Parse(data []byte) (*Catalog, error) {
	var types []AbsenceType
	if err := json.Unmarshal(data, &types); err != nil {
		return nil, fmt.Errorf("failed to parse absence type catalog: %w", err)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("absence type catalog is empty")
	}
	return New(types)
}

// LoadFile reads a JSON catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// =============================================================================
// PRESETS
// =============================================================================

// Default returns the built-in absence types.
func Default() *Catalog {
	c, err := New([]AbsenceType{
		{ID: "vac-1", Name: "Annual Leave", Paid: true, RequiresNoteOverDays: -1},
		{ID: "sick-1", Name: "Sick Leave", Paid: true, RequiresNoteOverDays: 2},
		{ID: "pers-1", Name: "Personal Day", Paid: true, RequiresNoteOverDays: -1, MaxDaysPerRequest: 1},
		{ID: "par-1", Name: "Parental Leave", Paid: true, RequiresNoteOverDays: -1},
		{ID: "ber-1", Name: "Bereavement", Paid: true, RequiresNoteOverDays: -1, MaxDaysPerRequest: 5},
		{ID: "unp-1", Name: "Unpaid Leave", Paid: false, RequiresNoteOverDays: 0},
	})
	if err != nil {
		panic(err) // presets are static
	}
	return c
}
