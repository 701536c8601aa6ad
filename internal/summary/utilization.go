// Package summary provides shared utilization summary utilities.
package summary

import (
	"sort"
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
)

// SubjectUtilization aggregates one subject's load over a date range.
type SubjectUtilization struct {
	Subject        *plan.Subject
	AllocatedDays  int // allocation-days, summed across overlapping lanes
	LeaveDays      int
	FreeDays       int // days with neither allocation nor leave
	ProjectCount   int // distinct projects touched in the range
	UtilizationPct float64
}

// RangeSummary is the utilization report for the visible window.
type RangeSummary struct {
	Start    time.Time
	End      time.Time
	Days     int
	Subjects []SubjectUtilization
}

// Summarize builds the utilization report for every person subject in
// the dataset over the inclusive range [start, end]. Allocation days
// are clipped to the range; a day under two overlapping lanes counts
// twice, which is exactly the overcommitment the report exists to show.
func Summarize(data grid.Dataset, start, end time.Time) *RangeSummary {
	start = dateutil.TruncateToDay(start)
	end = dateutil.TruncateToDay(end)
	days := dateutil.InclusiveDays(start, end)

	s := &RangeSummary{Start: start, End: end, Days: days}
	for _, sub := range data.Subjects {
		if sub.Kind != plan.SubjectPerson {
			continue
		}
		s.Subjects = append(s.Subjects, summarizeSubject(data, sub, start, end, days))
	}
	sort.Slice(s.Subjects, func(i, j int) bool {
		return s.Subjects[i].Subject.Name < s.Subjects[j].Subject.Name
	})
	return s
}

func summarizeSubject(data grid.Dataset, sub *plan.Subject, start, end time.Time, days int) SubjectUtilization {
	u := SubjectUtilization{Subject: sub}
	projects := map[int64]struct{}{}

	busy := make(map[string]bool, days)
	for _, a := range data.Allocations {
		if a.SubjectID != sub.ID || !a.OverlapsRange(start, end) {
			continue
		}
		if a.ProjectID != 0 {
			projects[a.ProjectID] = struct{}{}
		}
		from, to := clip(a.StartDate, a.EndDate, start, end)
		u.AllocatedDays += dateutil.InclusiveDays(from, to)
		for d := from; !d.After(to); d = dateutil.AddDays(d, 1) {
			busy[dateutil.FormatDate(d)] = true
		}
	}
	for _, l := range data.Leave {
		if l.SubjectID != sub.ID || !l.OverlapsRange(start, end) {
			continue
		}
		from, to := clip(l.StartDate, l.EndDate, start, end)
		u.LeaveDays += dateutil.InclusiveDays(from, to)
		for d := from; !d.After(to); d = dateutil.AddDays(d, 1) {
			busy[dateutil.FormatDate(d)] = true
		}
	}

	u.FreeDays = days - len(busy)
	u.ProjectCount = len(projects)
	if days > 0 {
		u.UtilizationPct = float64(u.AllocatedDays) / float64(days) * 100
	}
	return u
}

// clip bounds [from, to] to [start, end].
func clip(from, to, start, end time.Time) (time.Time, time.Time) {
	if from.Before(start) {
		from = start
	}
	if to.After(end) {
		to = end
	}
	return from, to
}
