package grid

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// FindFreeRange returns the start of the first run of `days` free days
// in the lane at or after `from`, scanning to the end of the window.
// Used by the assignment menu to place a default block without
// overlapping existing coverage. ok is false when no gap fits.
func FindFreeRange(ix *EntityIndex, w *DateWindow, lane plan.Lane, from time.Time, days int) (start time.Time, ok bool) {
	if days < 1 {
		days = 1
	}
	day := w.DayIndexOf(from)
	if day < 0 {
		day = 0
	}

	run := 0
	for ; day < w.Days(); day++ {
		d := w.DateAt(day)
		if ix.HasAllocation(lane, d) {
			run = 0
			continue
		}
		run++
		if run == days {
			return w.DateAt(day - days + 1), true
		}
	}
	return time.Time{}, false
}

// FreeDays counts the days in [start, end] with no coverage in the
// lane. Used by the utilization summary.
func FreeDays(ix *EntityIndex, lane plan.Lane, start, end time.Time) int {
	free := 0
	for d := dateutil.TruncateToDay(start); !d.After(end); d = dateutil.AddDays(d, 1) {
		if !ix.HasAllocation(lane, d) {
			free++
		}
	}
	return free
}
