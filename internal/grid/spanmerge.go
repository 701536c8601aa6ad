package grid

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// Span is a contiguous date range rendered as one visual block. It is
// derived for display only and never persisted; every mutation
// recomputes spans fresh from the per-record bounds.
type Span struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive day count of the span.
func (s *Span) Days() int {
	return dateutil.InclusiveDays(s.Start, s.End)
}

// MergedSpan computes the display span for allocation a within its lane
// group. Adjacent (zero-gap) and overlapping allocations of the same
// lane render as one block.
//
// Returns (nil, true) when nothing merges with a: the allocation
// renders using its own bounds. Returns (span, true) when a is the
// earliest-starting member of a merged group: a renders the whole
// merged block. Returns (nil, false) for every other member of the
// group, which must not render at all.
func MergedSpan(a *plan.Allocation, group []*plan.Allocation) (*Span, bool) {
	if a == nil {
		return nil, false
	}
	if len(group) <= 1 {
		return nil, true
	}

	mergedStart := a.StartDate
	mergedEnd := a.EndDate
	absorbed := map[int64]bool{a.ID: true}

	// Fixed-point iteration: absorbing one allocation can newly make a
	// third adjacent to the merged range, so a single pass is not enough.
	for {
		changed := false
		for _, other := range group {
			if absorbed[other.ID] {
				continue
			}
			if !touches(mergedStart, mergedEnd, other) {
				continue
			}
			if other.StartDate.Before(mergedStart) {
				mergedStart = other.StartDate
			}
			if other.EndDate.After(mergedEnd) {
				mergedEnd = other.EndDate
			}
			absorbed[other.ID] = true
			changed = true
		}
		if !changed {
			break
		}
	}

	if len(absorbed) == 1 {
		return nil, true
	}

	// Only the earliest-starting member renders the merged block; ties
	// on start date break toward the lowest id.
	if !a.StartDate.Equal(mergedStart) {
		return nil, false
	}
	for _, other := range group {
		if other.ID == a.ID || !absorbed[other.ID] {
			continue
		}
		if other.StartDate.Equal(mergedStart) && other.ID < a.ID {
			return nil, false
		}
	}

	return &Span{Start: mergedStart, End: mergedEnd}, true
}

// touches returns true if the allocation overlaps [start, end] or is
// exactly adjacent to it (its end + 1 day == start, or its start ==
// end + 1 day).
func touches(start, end time.Time, a *plan.Allocation) bool {
	if a.OverlapsRange(start, end) {
		return true
	}
	return dateutil.AddDays(a.EndDate, 1).Equal(start) ||
		dateutil.AddDays(end, 1).Equal(a.StartDate)
}
