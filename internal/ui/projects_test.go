package ui

import (
	"testing"

	"github.com/mvilla/crewcal/internal/plan"
)

func TestAssignmentColorByKind(t *testing.T) {
	tests := []struct {
		kind plan.AllocationKind
		want string
	}{
		{plan.AllocationProject, "project"},
		{plan.AllocationSLA, "service"},
		{plan.AllocationMisc, "service"},
	}
	for _, tt := range tests {
		got := assignmentColor(tt.kind)
		want := colorProject
		if tt.want == "service" {
			want = colorService
		}
		if got != want {
			t.Errorf("assignmentColor(%s) = %v, want the %s color", tt.kind, got, tt.want)
		}
	}
}
