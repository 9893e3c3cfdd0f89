package schedule

// =============================================================================
// INTERVAL PREDICATES - Pure functions over (day, requests)
// =============================================================================
// No state, no side effects; safe to call on every recompute.

// CoveringRequests returns the requests whose inclusive [StartDate, EndDate]
// range contains d, preserving input order.
func CoveringRequests(d Day, requests []Request) []Request {
	var covering []Request
	for _, r := range requests {
		if r.Covers(d) {
			covering = append(covering, r)
		}
	}
	return covering
}

// Conflicts reports whether two requests covering the same day cannot
// coexist:
//   - a full-day request conflicts with anything
//   - identical period types conflict (two mornings, two afternoons, two
//     TIME adjustments - deliberately conservative for TIME vs TIME: clock
//     ranges are not inspected, so a late arrival and an early departure on
//     one day still count as conflicting)
//   - anything else (morning + afternoon) coexists
//
// Symmetric by construction.
func Conflicts(a, b Request) bool {
	if a.PeriodType == PeriodFullDay || b.PeriodType == PeriodFullDay {
		return true
	}
	return a.PeriodType == b.PeriodType
}

// HasConflict reports whether any two requests in the set pairwise conflict.
func HasConflict(requests []Request) bool {
	for i := 0; i < len(requests); i++ {
		for j := i + 1; j < len(requests); j++ {
			if Conflicts(requests[i], requests[j]) {
				return true
			}
		}
	}
	return false
}
