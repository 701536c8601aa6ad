package plan

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
)

// LeaveStatus represents the approval state of a leave entry.
type LeaveStatus string

const (
	LeaveRequested LeaveStatus = "requested"
	LeaveApproved  LeaveStatus = "approved"
)

// LeaveEntry is annual leave for a subject: semantically an allocation
// restricted to the time-off lane.
type LeaveEntry struct {
	ID        int64
	SubjectID int64
	StartDate time.Time
	EndDate   time.Time
	DaysCount int
	Status    LeaveStatus
}

// NewLeaveEntry builds a leave entry for the inclusive range [start, end].
// DaysCount defaults to the inclusive day count of the range.
func NewLeaveEntry(subjectID int64, start, end time.Time) (*LeaveEntry, error) {
	start = dateutil.TruncateToDay(start)
	end = dateutil.TruncateToDay(end)
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}
	return &LeaveEntry{
		SubjectID: subjectID,
		StartDate: start,
		EndDate:   end,
		DaysCount: dateutil.InclusiveDays(start, end),
		Status:    LeaveRequested,
	}, nil
}

// Covers returns true if the leave touches the given date.
func (l *LeaveEntry) Covers(d time.Time) bool {
	return dateutil.WithinRange(d, l.StartDate, l.EndDate)
}

// OverlapsRange returns true if the leave shares at least one day with
// the inclusive range [start, end].
func (l *LeaveEntry) OverlapsRange(start, end time.Time) bool {
	return dateutil.RangesOverlap(l.StartDate, l.EndDate, start, end)
}

// SameRange returns true if other covers exactly the same subject and
// dates. Used to match optimistic records against refreshed server data.
func (l *LeaveEntry) SameRange(other *LeaveEntry) bool {
	if other == nil {
		return false
	}
	return l.SubjectID == other.SubjectID &&
		l.StartDate.Equal(other.StartDate) &&
		l.EndDate.Equal(other.EndDate)
}

// Lane returns the subject's time-off lane.
func (l *LeaveEntry) Lane() Lane {
	return TimeOffLane(l.SubjectID)
}
