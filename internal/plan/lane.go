package plan

import "fmt"

// Lane identifies one independently stacked allocation track: the
// combination of a subject and a project or category. Overlap checks
// apply within a lane; allocations in different lanes may stack.
type Lane struct {
	SubjectID int64
	ProjectID int64
	Kind      AllocationKind
	TimeOff   bool // the leave lane, mutually exclusive with Kind
}

// TimeOffLane returns the leave lane for a subject.
func TimeOffLane(subjectID int64) Lane {
	return Lane{SubjectID: subjectID, TimeOff: true}
}

// ProjectLane returns the lane for a subject/project pair.
func ProjectLane(subjectID, projectID int64) Lane {
	return Lane{SubjectID: subjectID, ProjectID: projectID, Kind: AllocationProject}
}

// CategoryLane returns the lane for a subject and a non-project kind.
func CategoryLane(subjectID int64, kind AllocationKind) Lane {
	return Lane{SubjectID: subjectID, Kind: kind}
}

// String renders the lane for debugging and log output.
func (l Lane) String() string {
	if l.TimeOff {
		return fmt.Sprintf("subject=%d/time-off", l.SubjectID)
	}
	if l.Kind == AllocationProject {
		return fmt.Sprintf("subject=%d/project=%d", l.SubjectID, l.ProjectID)
	}
	return fmt.Sprintf("subject=%d/%s", l.SubjectID, l.Kind)
}
