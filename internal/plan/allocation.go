package plan

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
)

// AllocationKind classifies an allocation block.
type AllocationKind string

const (
	AllocationProject AllocationKind = "project"
	AllocationSLA     AllocationKind = "sla"
	AllocationMisc    AllocationKind = "misc"
)

// Valid returns true if the kind is a known value.
func (k AllocationKind) Valid() bool {
	switch k {
	case AllocationProject, AllocationSLA, AllocationMisc:
		return true
	default:
		return false
	}
}

// Allocation is a block of capacity assigned to a subject over an
// inclusive date range. Only move/resize operations rewrite the dates;
// everything else about an allocation is edited through the form.
type Allocation struct {
	ID          int64
	SubjectID   int64
	ProjectID   int64 // 0 when the kind does not reference a project
	Kind        AllocationKind
	Title       string // required for sla/misc, unused for project
	StartDate   time.Time
	EndDate     time.Time
	DaysPerWeek float64
	Notes       string
}

// NewAllocation builds an allocation with validation.
func NewAllocation(subjectID, projectID int64, kind AllocationKind, title string, start, end time.Time, daysPerWeek float64) (*Allocation, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if kind == AllocationProject && projectID == 0 {
		return nil, ErrProjectRequired
	}
	if kind != AllocationProject && title == "" {
		return nil, ErrTitleRequired
	}
	start = dateutil.TruncateToDay(start)
	end = dateutil.TruncateToDay(end)
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}
	if daysPerWeek < 0 || daysPerWeek > 7 {
		return nil, ErrInvalidDaysPerWeek
	}

	return &Allocation{
		SubjectID:   subjectID,
		ProjectID:   projectID,
		Kind:        kind,
		Title:       title,
		StartDate:   start,
		EndDate:     end,
		DaysPerWeek: daysPerWeek,
	}, nil
}

// Days returns the inclusive duration in days.
func (a *Allocation) Days() int {
	return dateutil.InclusiveDays(a.StartDate, a.EndDate)
}

// Covers returns true if the allocation touches the given date.
func (a *Allocation) Covers(d time.Time) bool {
	return dateutil.WithinRange(d, a.StartDate, a.EndDate)
}

// OverlapsRange returns true if the allocation shares at least one day
// with the inclusive range [start, end].
func (a *Allocation) OverlapsRange(start, end time.Time) bool {
	return dateutil.RangesOverlap(a.StartDate, a.EndDate, start, end)
}

// AdjacentTo returns true if other starts the day after this allocation
// ends, or ends the day before this allocation starts (gap of zero days).
func (a *Allocation) AdjacentTo(other *Allocation) bool {
	if other == nil {
		return false
	}
	return dateutil.AddDays(a.EndDate, 1).Equal(dateutil.TruncateToDay(other.StartDate)) ||
		dateutil.AddDays(other.EndDate, 1).Equal(dateutil.TruncateToDay(a.StartDate))
}

// Lane returns the independently stacked track this allocation occupies
// within its subject's row.
func (a *Allocation) Lane() Lane {
	return Lane{SubjectID: a.SubjectID, ProjectID: a.ProjectID, Kind: a.Kind}
}
