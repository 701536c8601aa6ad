// Package plan defines the core domain types for crewcal.
package plan

import "errors"

// Domain errors shared across entity types.
var (
	ErrEmptyName          = errors.New("name cannot be empty")
	ErrEndBeforeStart     = errors.New("end date must be on or after start date")
	ErrInvalidKind        = errors.New("unknown allocation kind")
	ErrProjectRequired    = errors.New("project allocations require a project")
	ErrTitleRequired      = errors.New("sla and misc allocations require a title")
	ErrInvalidDaysPerWeek = errors.New("days per week must be between 0 and 7")
	ErrNotFound           = errors.New("record not found")
)

// SubjectKind distinguishes the two row types of the grid.
type SubjectKind string

const (
	SubjectPerson  SubjectKind = "person"
	SubjectProject SubjectKind = "project"
)

// Subject is a row in the capacity grid: an employee or a project.
type Subject struct {
	ID    int64
	Name  string
	Color string // hex color, optional
	Kind  SubjectKind
}

// ProjectStatus groups project rows into sub-sections in the project view.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectPipeline ProjectStatus = "pipeline"
	ProjectArchived ProjectStatus = "archived"
)

// Project is an assignable piece of work. Allocations of kind
// AllocationProject reference one.
type Project struct {
	ID     int64
	Name   string
	Color  string
	Status ProjectStatus
}
