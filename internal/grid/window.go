// Package grid implements the scheduling grid engine: the loaded date
// window, entity indexing, display-span merging, the drag interaction
// state machine, the optimistic mutation overlay, and horizontal
// pagination. It is independent of any rendering technology; the TUI
// layer is a thin adapter over it.
package grid

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
)

const (
	// DefaultColumnWidth is the default width of one day column in
	// display units.
	DefaultColumnWidth = 4
)

// DateWindow is the contiguous, inclusive date range currently loaded
// behind the grid. It maps day indices and horizontal offsets to dates
// and back. The window only grows, by whole-month steps at either edge.
type DateWindow struct {
	start    time.Time
	end      time.Time
	colWidth int
}

// NewDateWindow creates a window covering [start, end] inclusive.
// Inputs are truncated to midnight; an end before start collapses to a
// single day.
func NewDateWindow(start, end time.Time, colWidth int) *DateWindow {
	start = dateutil.TruncateToDay(start)
	end = dateutil.TruncateToDay(end)
	if end.Before(start) {
		end = start
	}
	if colWidth <= 0 {
		colWidth = DefaultColumnWidth
	}
	return &DateWindow{start: start, end: end, colWidth: colWidth}
}

// NewMonthWindow creates a window spanning whole months around the
// given date: monthsBefore months back to monthsAfter months forward.
func NewMonthWindow(around time.Time, monthsBefore, monthsAfter, colWidth int) *DateWindow {
	start := dateutil.StartOfMonth(dateutil.AddMonths(around, -monthsBefore))
	end := dateutil.EndOfMonth(dateutil.AddMonths(around, monthsAfter))
	return NewDateWindow(start, end, colWidth)
}

// Start returns the first loaded date.
func (w *DateWindow) Start() time.Time { return w.start }

// End returns the last loaded date.
func (w *DateWindow) End() time.Time { return w.end }

// Days returns the number of days in the window.
func (w *DateWindow) Days() int {
	return dateutil.InclusiveDays(w.start, w.end)
}

// ColumnWidth returns the width of one day column.
func (w *DateWindow) ColumnWidth() int { return w.colWidth }

// Width returns the total content width of the window.
func (w *DateWindow) Width() int {
	return w.Days() * w.colWidth
}

// DateAt returns the date at the given day index, clamped to the
// window bounds.
func (w *DateWindow) DateAt(dayIndex int) time.Time {
	if dayIndex < 0 {
		dayIndex = 0
	}
	if max := w.Days() - 1; dayIndex > max {
		dayIndex = max
	}
	return dateutil.AddDays(w.start, dayIndex)
}

// DayIndexOf returns the day index of the given date, or -1 when the
// date falls outside the window.
func (w *DateWindow) DayIndexOf(date time.Time) int {
	d := dateutil.DaysBetween(w.start, date)
	if d < 0 || d >= w.Days() {
		return -1
	}
	return d
}

// Contains returns true if the date is inside the window.
func (w *DateWindow) Contains(date time.Time) bool {
	return w.DayIndexOf(date) >= 0
}

// DayAtOffset maps a horizontal offset (relative to the grid origin) to
// a day index. Returns -1 for offsets outside the content.
func (w *DateWindow) DayAtOffset(x int) int {
	if x < 0 {
		return -1
	}
	day := x / w.colWidth
	if day >= w.Days() {
		return -1
	}
	return day
}

// OffsetOfDay returns the horizontal offset of the left edge of the
// given day column.
func (w *DateWindow) OffsetOfDay(dayIndex int) int {
	return dayIndex * w.colWidth
}

// ExtendPast grows the window backward by one whole calendar month and
// returns the number of days added at the front.
// The new start is the first day of the month before the current start,
// so a mid-month start first snaps back to cover its own month.
func (w *DateWindow) ExtendPast() int {
	newStart := dateutil.StartOfMonth(dateutil.AddDays(w.start, -1))
	added := dateutil.DaysBetween(newStart, w.start)
	w.start = newStart
	return added
}

// ExtendFuture grows the window forward by one whole calendar month and
// returns the number of days added at the back.
func (w *DateWindow) ExtendFuture() int {
	newEnd := dateutil.EndOfMonth(dateutil.AddDays(w.end, 1))
	added := dateutil.DaysBetween(w.end, newEnd)
	w.end = newEnd
	return added
}
