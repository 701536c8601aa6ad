package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// Seed populates an empty store with a demo team planned around the
// given date, so the TUI has something to show out of the box. Seeding
// a non-empty store is a no-op.
func (s *Store) Seed(ctx context.Context, around time.Time) error {
	existing, err := s.Subjects(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	subjects := []*plan.Subject{
		{Name: "Ana Ruiz", Color: "#e06c75", Kind: plan.SubjectPerson},
		{Name: "Ben Okafor", Color: "#61afef", Kind: plan.SubjectPerson},
		{Name: "Chiara Ferrari", Color: "#98c379", Kind: plan.SubjectPerson},
		{Name: "Dmitri Volkov", Color: "#c678dd", Kind: plan.SubjectPerson},
	}
	for _, sub := range subjects {
		if err := s.CreateSubject(ctx, sub); err != nil {
			return fmt.Errorf("seeding subjects: %w", err)
		}
	}

	projects := []*plan.Project{
		{Name: "Atlas Migration", Color: "#d19a66", Status: plan.ProjectActive},
		{Name: "Billing Rewrite", Color: "#56b6c2", Status: plan.ProjectActive},
		{Name: "Mobile Refresh", Color: "#abb2bf", Status: plan.ProjectPipeline},
	}
	for _, p := range projects {
		if err := s.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("seeding projects: %w", err)
		}
	}

	monday := dateutil.TruncateToDay(around)
	for monday.Weekday() != time.Monday {
		monday = dateutil.AddDays(monday, -1)
	}
	week := func(offset, days int) (time.Time, time.Time) {
		start := dateutil.AddDays(monday, offset*7)
		return start, dateutil.AddDays(start, days-1)
	}

	type seedAlloc struct {
		subject     *plan.Subject
		project     *plan.Project
		kind        plan.AllocationKind
		title       string
		week        int
		days        int
		daysPerWeek float64
	}
	seedAllocs := []seedAlloc{
		{subject: subjects[0], project: projects[0], kind: plan.AllocationProject, week: -1, days: 12, daysPerWeek: 5},
		{subject: subjects[1], project: projects[0], kind: plan.AllocationProject, week: 0, days: 5, daysPerWeek: 3},
		{subject: subjects[1], project: projects[1], kind: plan.AllocationProject, week: 1, days: 10, daysPerWeek: 5},
		{subject: subjects[2], project: projects[1], kind: plan.AllocationProject, week: 0, days: 19, daysPerWeek: 4},
		{subject: subjects[2], kind: plan.AllocationSLA, title: "Support rotation", week: -2, days: 5, daysPerWeek: 5},
		{subject: subjects[3], kind: plan.AllocationMisc, title: "Onboarding buddy", week: 0, days: 3, daysPerWeek: 2},
		{subject: subjects[3], project: projects[2], kind: plan.AllocationProject, week: 2, days: 12, daysPerWeek: 5},
	}
	for _, sa := range seedAllocs {
		start, end := week(sa.week, sa.days)
		var projectID int64
		if sa.project != nil {
			projectID = sa.project.ID
		}
		a, err := plan.NewAllocation(sa.subject.ID, projectID, sa.kind, sa.title, start, end, sa.daysPerWeek)
		if err != nil {
			return fmt.Errorf("seeding allocations: %w", err)
		}
		if err := s.CreateAllocation(ctx, a); err != nil {
			return fmt.Errorf("seeding allocations: %w", err)
		}
	}

	leaveStart, leaveEnd := week(1, 5)
	l, err := plan.NewLeaveEntry(subjects[0].ID, leaveStart, leaveEnd)
	if err != nil {
		return fmt.Errorf("seeding leave: %w", err)
	}
	l.Status = plan.LeaveApproved
	if err := s.CreateLeave(ctx, l); err != nil {
		return fmt.Errorf("seeding leave: %w", err)
	}

	requested, requestedEnd := week(3, 2)
	l2, err := plan.NewLeaveEntry(subjects[3].ID, requested, requestedEnd)
	if err != nil {
		return fmt.Errorf("seeding leave: %w", err)
	}
	if err := s.CreateLeave(ctx, l2); err != nil {
		return fmt.Errorf("seeding leave: %w", err)
	}

	release, _ := week(2, 1)
	markers := []*plan.Marker{
		{Date: release, Title: "Atlas cutover", Kind: plan.MarkerDeadline, Color: "#e5c07b"},
		{Date: dateutil.AddDays(monday, 4), Title: "Demo day", Kind: plan.MarkerMilestone},
		{SubjectID: subjects[2].ID, Date: dateutil.AddDays(monday, 9), Title: "Conference talk", Kind: plan.MarkerNote},
	}
	for _, m := range markers {
		if err := s.CreateMarker(ctx, m); err != nil {
			return fmt.Errorf("seeding markers: %w", err)
		}
	}

	return nil
}
