package tui

import (
	"sort"

	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
)

// ViewMode selects the row grouping.
type ViewMode int

const (
	ViewPeople ViewMode = iota
	ViewProjects
)

// RowKind distinguishes section headers from interactive lane tracks.
type RowKind int

const (
	RowHeader RowKind = iota
	RowLane
)

// Row is one terminal row of the grid body. Lane rows are the
// interactive tracks; header rows label the subject or project above
// its lanes.
type Row struct {
	Kind    RowKind
	Label   string
	Color   string
	Lane    plan.Lane // valid when Kind == RowLane
	TimeOff bool
	Spare   bool // empty track offered for drag-create with no target yet
}

// buildRows computes the vertical layout for the current dataset and
// view mode. The result is index-addressable: the mouse adapter maps a
// terminal y directly to a row.
func buildRows(data grid.Dataset, mode ViewMode) []Row {
	if mode == ViewProjects {
		return buildProjectRows(data)
	}
	return buildPeopleRows(data)
}

// buildPeopleRows lays out one section per person: the time-off track
// first, then one track per lane the person already has, then a spare
// track for starting new work.
func buildPeopleRows(data grid.Dataset) []Row {
	var rows []Row

	projectName := make(map[int64]*plan.Project, len(data.Projects))
	for _, p := range data.Projects {
		projectName[p.ID] = p
	}

	for _, sub := range data.Subjects {
		if sub.Kind != plan.SubjectPerson {
			continue
		}
		rows = append(rows, Row{Kind: RowHeader, Label: sub.Name, Color: sub.Color})
		rows = append(rows, Row{
			Kind: RowLane, Label: "time off", Lane: plan.TimeOffLane(sub.ID), TimeOff: true,
		})

		lanes := map[plan.Lane]bool{}
		for _, a := range data.Allocations {
			if a.SubjectID == sub.ID {
				lanes[a.Lane()] = true
			}
		}
		ordered := make([]plan.Lane, 0, len(lanes))
		for lane := range lanes {
			ordered = append(ordered, lane)
		}
		sort.Slice(ordered, func(i, j int) bool {
			if ordered[i].ProjectID != ordered[j].ProjectID {
				return ordered[i].ProjectID < ordered[j].ProjectID
			}
			return ordered[i].Kind < ordered[j].Kind
		})
		for _, lane := range ordered {
			rows = append(rows, Row{Kind: RowLane, Label: laneLabel(lane, projectName), Lane: lane})
		}

		// A spare track so the person always has somewhere to start a
		// new assignment; its gestures open the assignment form.
		rows = append(rows, Row{
			Kind: RowLane, Label: "+",
			Lane:  plan.Lane{SubjectID: sub.ID, Kind: plan.AllocationProject},
			Spare: true,
		})
	}
	return rows
}

// buildProjectRows lays out one section per project, grouped by status,
// with one track per assigned person.
func buildProjectRows(data grid.Dataset) []Row {
	var rows []Row

	subjectName := make(map[int64]string, len(data.Subjects))
	for _, s := range data.Subjects {
		subjectName[s.ID] = s.Name
	}

	byStatus := map[plan.ProjectStatus][]*plan.Project{}
	for _, p := range data.Projects {
		byStatus[p.Status] = append(byStatus[p.Status], p)
	}

	for _, status := range []plan.ProjectStatus{plan.ProjectActive, plan.ProjectPipeline, plan.ProjectArchived} {
		for _, p := range byStatus[status] {
			label := p.Name
			if status != plan.ProjectActive {
				label += " (" + string(status) + ")"
			}
			rows = append(rows, Row{Kind: RowHeader, Label: label, Color: p.Color})

			lanes := map[plan.Lane]bool{}
			for _, a := range data.Allocations {
				if a.ProjectID == p.ID {
					lanes[a.Lane()] = true
				}
			}
			ordered := make([]plan.Lane, 0, len(lanes))
			for lane := range lanes {
				ordered = append(ordered, lane)
			}
			sort.Slice(ordered, func(i, j int) bool {
				return subjectName[ordered[i].SubjectID] < subjectName[ordered[j].SubjectID]
			})
			for _, lane := range ordered {
				rows = append(rows, Row{Kind: RowLane, Label: subjectName[lane.SubjectID], Lane: lane})
			}
		}
	}
	return rows
}

func laneLabel(lane plan.Lane, projects map[int64]*plan.Project) string {
	switch {
	case lane.Kind == plan.AllocationProject && lane.ProjectID != 0:
		if p, ok := projects[lane.ProjectID]; ok {
			return p.Name
		}
		return "project"
	case lane.Kind == plan.AllocationSLA:
		return "sla"
	case lane.Kind == plan.AllocationMisc:
		return "misc"
	default:
		return ""
	}
}
