// Package api is the REST client for the planning backend. It maps the
// wire contract (snake_case JSON, date-only strings, 422 field error
// maps, non-blocking warnings on successful writes) onto the plan
// domain types, and keeps authentication header injection pluggable so
// the anti-forgery token source stays a caller concern.
package api

import (
	"time"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// AllocationParams is the body of allocation create and update calls.
type AllocationParams struct {
	SubjectID   int64   `json:"subject_id"`
	ProjectID   int64   `json:"project_id,omitempty"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	DaysPerWeek float64 `json:"days_per_week"`
	Notes       string  `json:"notes,omitempty"`
}

// AllocationParamsFrom builds request params from a domain record.
func AllocationParamsFrom(a *plan.Allocation) AllocationParams {
	return AllocationParams{
		SubjectID:   a.SubjectID,
		ProjectID:   a.ProjectID,
		Kind:        string(a.Kind),
		Title:       a.Title,
		StartDate:   dateutil.FormatDate(a.StartDate),
		EndDate:     dateutil.FormatDate(a.EndDate),
		DaysPerWeek: a.DaysPerWeek,
		Notes:       a.Notes,
	}
}

// LeaveParams is the body of leave create and update calls.
type LeaveParams struct {
	SubjectID int64  `json:"subject_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DaysCount int    `json:"days_count"`
	Status    string `json:"status,omitempty"`
}

// LeaveParamsFrom builds request params from a domain record.
func LeaveParamsFrom(l *plan.LeaveEntry) LeaveParams {
	return LeaveParams{
		SubjectID: l.SubjectID,
		StartDate: dateutil.FormatDate(l.StartDate),
		EndDate:   dateutil.FormatDate(l.EndDate),
		DaysCount: l.DaysCount,
		Status:    string(l.Status),
	}
}

// MarkerParams is the body of marker create and update calls.
type MarkerParams struct {
	SubjectID   int64  `json:"subject_id,omitempty"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// MarkerParamsFrom builds request params from a domain record.
func MarkerParamsFrom(m *plan.Marker) MarkerParams {
	return MarkerParams{
		SubjectID:   m.SubjectID,
		Date:        dateutil.FormatDate(m.Date),
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
		Kind:        string(m.Kind),
	}
}

// RangeQuery filters list calls to records overlapping [Start, End].
type RangeQuery struct {
	Start     time.Time
	End       time.Time
	SubjectID int64 // 0 = all subjects
	ProjectID int64 // 0 = all projects
}

type subjectDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Kind  string `json:"kind"`
}

type projectDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Status string `json:"status"`
}

type allocationDTO struct {
	ID          int64   `json:"id"`
	SubjectID   int64   `json:"subject_id"`
	ProjectID   int64   `json:"project_id,omitempty"`
	Kind        string  `json:"kind"`
	Title       string  `json:"title,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	DaysPerWeek float64 `json:"days_per_week"`
	Notes       string  `json:"notes,omitempty"`
}

type leaveDTO struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subject_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	DaysCount int    `json:"days_count"`
	Status    string `json:"status"`
}

type markerDTO struct {
	ID          int64  `json:"id"`
	SubjectID   int64  `json:"subject_id,omitempty"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

// Mutation responses carry the written record plus any non-blocking
// advisories (an allocation overlapping approved leave, for example).
type allocationResponse struct {
	allocationDTO
	Warnings []string `json:"warnings,omitempty"`
}

type leaveResponse struct {
	leaveDTO
	Warnings []string `json:"warnings,omitempty"`
}

type errorPayload struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (d subjectDTO) toDomain() *plan.Subject {
	return &plan.Subject{ID: d.ID, Name: d.Name, Color: d.Color, Kind: plan.SubjectKind(d.Kind)}
}

func (d projectDTO) toDomain() *plan.Project {
	return &plan.Project{ID: d.ID, Name: d.Name, Color: d.Color, Status: plan.ProjectStatus(d.Status)}
}

func (d allocationDTO) toDomain() (*plan.Allocation, error) {
	start, err := dateutil.ParseDate(d.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := dateutil.ParseDate(d.EndDate)
	if err != nil {
		return nil, err
	}
	return &plan.Allocation{
		ID:          d.ID,
		SubjectID:   d.SubjectID,
		ProjectID:   d.ProjectID,
		Kind:        plan.AllocationKind(d.Kind),
		Title:       d.Title,
		StartDate:   start,
		EndDate:     end,
		DaysPerWeek: d.DaysPerWeek,
		Notes:       d.Notes,
	}, nil
}

func (d leaveDTO) toDomain() (*plan.LeaveEntry, error) {
	start, err := dateutil.ParseDate(d.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := dateutil.ParseDate(d.EndDate)
	if err != nil {
		return nil, err
	}
	return &plan.LeaveEntry{
		ID:        d.ID,
		SubjectID: d.SubjectID,
		StartDate: start,
		EndDate:   end,
		DaysCount: d.DaysCount,
		Status:    plan.LeaveStatus(d.Status),
	}, nil
}

func (d markerDTO) toDomain() (*plan.Marker, error) {
	date, err := dateutil.ParseDate(d.Date)
	if err != nil {
		return nil, err
	}
	return &plan.Marker{
		ID:          d.ID,
		SubjectID:   d.SubjectID,
		Date:        date,
		Title:       d.Title,
		Description: d.Description,
		Color:       d.Color,
		Kind:        plan.MarkerKind(d.Kind),
	}, nil
}
