package grid

import (
	"time"

	"github.com/mvilla/crewcal/internal/plan"
)

// Dataset is the read-mostly snapshot behind one render cycle: the
// server data plus the optimistic overlay. Mutations never edit the
// server slices in place.
type Dataset struct {
	Subjects    []*plan.Subject
	Projects    []*plan.Project
	Allocations []*plan.Allocation
	Leave       []*plan.LeaveEntry
	Markers     []*plan.Marker
}

// WithOverlay returns a copy of the dataset with the optimistic shadow
// records appended.
func (d Dataset) WithOverlay(o *OptimisticStore) Dataset {
	if o == nil || o.Len() == 0 {
		return d
	}
	out := d
	out.Allocations = append(append([]*plan.Allocation(nil), d.Allocations...), o.Allocations()...)
	out.Leave = append(append([]*plan.LeaveEntry(nil), d.Leave...), o.Leave()...)
	return out
}

// Index builds an EntityIndex over the dataset.
func (d Dataset) Index() *EntityIndex {
	return NewEntityIndex(d.Allocations, d.Leave, d.Markers)
}

// Block is a grid entry under the pointer: exactly one of Allocation or
// Leave is set.
type Block struct {
	Allocation *plan.Allocation
	Leave      *plan.LeaveEntry
}

// IsLeave returns true when the block wraps a leave entry.
func (b Block) IsLeave() bool { return b.Leave != nil }

// Zero returns true when the block wraps nothing.
func (b Block) Zero() bool { return b.Allocation == nil && b.Leave == nil }

// ID returns the wrapped record's id.
func (b Block) ID() int64 {
	if b.Leave != nil {
		return b.Leave.ID
	}
	if b.Allocation != nil {
		return b.Allocation.ID
	}
	return 0
}

// Start returns the wrapped record's start date.
func (b Block) Start() time.Time {
	if b.Leave != nil {
		return b.Leave.StartDate
	}
	return b.Allocation.StartDate
}

// End returns the wrapped record's end date.
func (b Block) End() time.Time {
	if b.Leave != nil {
		return b.Leave.EndDate
	}
	return b.Allocation.EndDate
}

// Lane returns the lane the wrapped record occupies.
func (b Block) Lane() plan.Lane {
	if b.Leave != nil {
		return b.Leave.Lane()
	}
	return b.Allocation.Lane()
}
