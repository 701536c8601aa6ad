package grid

import (
	"sort"
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// EntityIndex answers per-cell queries over the loaded allocations,
// leave entries, and markers: which entries touch a given subject and
// date, and whether a lane already has coverage on a date. It is a pure
// function of its inputs; callers rebuild it whenever the underlying
// collections change rather than on every render.
type EntityIndex struct {
	byLane         map[plan.Lane][]*plan.Allocation
	leaveBySubject map[int64][]*plan.LeaveEntry
	markersByDay   map[string][]*plan.Marker
	allocByID      map[int64]*plan.Allocation
	leaveByID      map[int64]*plan.LeaveEntry
}

// NewEntityIndex builds an index over the given collections.
func NewEntityIndex(allocations []*plan.Allocation, leave []*plan.LeaveEntry, markers []*plan.Marker) *EntityIndex {
	ix := &EntityIndex{
		byLane:         make(map[plan.Lane][]*plan.Allocation),
		leaveBySubject: make(map[int64][]*plan.LeaveEntry),
		markersByDay:   make(map[string][]*plan.Marker),
		allocByID:      make(map[int64]*plan.Allocation, len(allocations)),
		leaveByID:      make(map[int64]*plan.LeaveEntry, len(leave)),
	}

	for _, a := range allocations {
		lane := a.Lane()
		ix.byLane[lane] = append(ix.byLane[lane], a)
		ix.allocByID[a.ID] = a
	}
	for _, group := range ix.byLane {
		sort.Slice(group, func(i, j int) bool {
			if !group[i].StartDate.Equal(group[j].StartDate) {
				return group[i].StartDate.Before(group[j].StartDate)
			}
			return group[i].ID < group[j].ID
		})
	}

	for _, l := range leave {
		ix.leaveBySubject[l.SubjectID] = append(ix.leaveBySubject[l.SubjectID], l)
		ix.leaveByID[l.ID] = l
	}
	for _, entries := range ix.leaveBySubject {
		sort.Slice(entries, func(i, j int) bool {
			if !entries[i].StartDate.Equal(entries[j].StartDate) {
				return entries[i].StartDate.Before(entries[j].StartDate)
			}
			return entries[i].ID < entries[j].ID
		})
	}

	for _, m := range markers {
		key := dateutil.FormatDate(m.Date)
		ix.markersByDay[key] = append(ix.markersByDay[key], m)
	}

	return ix
}

// Lane returns the allocations in a lane, ordered by start date.
func (ix *EntityIndex) Lane(lane plan.Lane) []*plan.Allocation {
	return ix.byLane[lane]
}

// LeaveFor returns a subject's leave entries, ordered by start date.
func (ix *EntityIndex) LeaveFor(subjectID int64) []*plan.LeaveEntry {
	return ix.leaveBySubject[subjectID]
}

// EntriesOn returns the allocations and leave for a subject that touch
// the given date, allocations first.
func (ix *EntityIndex) EntriesOn(subjectID int64, d time.Time) ([]*plan.Allocation, []*plan.LeaveEntry) {
	var allocs []*plan.Allocation
	for lane, group := range ix.byLane {
		if lane.SubjectID != subjectID {
			continue
		}
		for _, a := range group {
			if a.Covers(d) {
				allocs = append(allocs, a)
			}
		}
	}
	sort.Slice(allocs, func(i, j int) bool { return allocs[i].ID < allocs[j].ID })

	var leave []*plan.LeaveEntry
	for _, l := range ix.leaveBySubject[subjectID] {
		if l.Covers(d) {
			leave = append(leave, l)
		}
	}
	return allocs, leave
}

// HasAllocation returns true if the lane already has coverage on the
// given date. For the time-off lane this checks leave entries.
// Drag-create and move targets must avoid occupied cells in the target
// lane; other lanes of the same subject do not block.
func (ix *EntityIndex) HasAllocation(lane plan.Lane, d time.Time) bool {
	if lane.TimeOff {
		for _, l := range ix.leaveBySubject[lane.SubjectID] {
			if l.Covers(d) {
				return true
			}
		}
		return false
	}
	for _, a := range ix.byLane[lane] {
		if a.Covers(d) {
			return true
		}
	}
	return false
}

// RangeOccupied returns true if any entry in the lane overlaps the
// inclusive range [start, end], ignoring the record with excludeID.
// Used to validate move and resize targets.
func (ix *EntityIndex) RangeOccupied(lane plan.Lane, start, end time.Time, excludeID int64) bool {
	if lane.TimeOff {
		for _, l := range ix.leaveBySubject[lane.SubjectID] {
			if l.ID != excludeID && l.OverlapsRange(start, end) {
				return true
			}
		}
		return false
	}
	for _, a := range ix.byLane[lane] {
		if a.ID != excludeID && a.OverlapsRange(start, end) {
			return true
		}
	}
	return false
}

// AllocationAt returns the allocation covering the date in a lane, or
// nil when the cell is empty.
func (ix *EntityIndex) AllocationAt(lane plan.Lane, d time.Time) *plan.Allocation {
	for _, a := range ix.byLane[lane] {
		if a.Covers(d) {
			return a
		}
	}
	return nil
}

// LeaveAt returns the leave entry covering the date for a subject, or
// nil when there is none.
func (ix *EntityIndex) LeaveAt(subjectID int64, d time.Time) *plan.LeaveEntry {
	for _, l := range ix.leaveBySubject[subjectID] {
		if l.Covers(d) {
			return l
		}
	}
	return nil
}

// MarkersOn returns the markers visible on a subject's row for the
// given date: the subject's own markers plus global ones. A zero
// subjectID returns only global markers.
func (ix *EntityIndex) MarkersOn(subjectID int64, d time.Time) []*plan.Marker {
	var result []*plan.Marker
	for _, m := range ix.markersByDay[dateutil.FormatDate(d)] {
		if m.Global() || m.SubjectID == subjectID {
			result = append(result, m)
		}
	}
	return result
}

// AllocationByID looks up an allocation by id.
func (ix *EntityIndex) AllocationByID(id int64) *plan.Allocation {
	return ix.allocByID[id]
}

// LeaveByID looks up a leave entry by id.
func (ix *EntityIndex) LeaveByID(id int64) *plan.LeaveEntry {
	return ix.leaveByID[id]
}
