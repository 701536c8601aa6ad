package plan

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewAllocation(t *testing.T) {
	t.Run("valid project allocation", func(t *testing.T) {
		a, err := NewAllocation(42, 7, AllocationProject, "", date(2024, 3, 5), date(2024, 3, 8), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Days() != 4 {
			t.Errorf("Days() = %d, want 4", a.Days())
		}
		if a.Lane() != (Lane{SubjectID: 42, ProjectID: 7, Kind: AllocationProject}) {
			t.Errorf("unexpected lane %v", a.Lane())
		}
	})

	t.Run("project kind requires project", func(t *testing.T) {
		_, err := NewAllocation(42, 0, AllocationProject, "", date(2024, 3, 5), date(2024, 3, 8), 5)
		if !errors.Is(err, ErrProjectRequired) {
			t.Errorf("got %v, want %v", err, ErrProjectRequired)
		}
	})

	t.Run("sla kind requires title", func(t *testing.T) {
		_, err := NewAllocation(42, 0, AllocationSLA, "", date(2024, 3, 5), date(2024, 3, 8), 5)
		if !errors.Is(err, ErrTitleRequired) {
			t.Errorf("got %v, want %v", err, ErrTitleRequired)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewAllocation(42, 7, AllocationProject, "", date(2024, 3, 8), date(2024, 3, 5), 5)
		if !errors.Is(err, ErrEndBeforeStart) {
			t.Errorf("got %v, want %v", err, ErrEndBeforeStart)
		}
	})

	t.Run("days per week out of range", func(t *testing.T) {
		_, err := NewAllocation(42, 7, AllocationProject, "", date(2024, 3, 5), date(2024, 3, 8), 8)
		if !errors.Is(err, ErrInvalidDaysPerWeek) {
			t.Errorf("got %v, want %v", err, ErrInvalidDaysPerWeek)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := NewAllocation(42, 0, AllocationKind("vacation"), "x", date(2024, 3, 5), date(2024, 3, 8), 5)
		if !errors.Is(err, ErrInvalidKind) {
			t.Errorf("got %v, want %v", err, ErrInvalidKind)
		}
	})
}

func TestAllocationAdjacentTo(t *testing.T) {
	a := &Allocation{StartDate: date(2024, 3, 5), EndDate: date(2024, 3, 7)}

	tests := []struct {
		name  string
		other *Allocation
		want  bool
	}{
		{"other starts day after a ends", &Allocation{StartDate: date(2024, 3, 8), EndDate: date(2024, 3, 10)}, true},
		{"other ends day before a starts", &Allocation{StartDate: date(2024, 3, 1), EndDate: date(2024, 3, 4)}, true},
		{"one day gap", &Allocation{StartDate: date(2024, 3, 9), EndDate: date(2024, 3, 10)}, false},
		{"overlapping is not adjacent", &Allocation{StartDate: date(2024, 3, 6), EndDate: date(2024, 3, 10)}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.AdjacentTo(tt.other); got != tt.want {
				t.Errorf("AdjacentTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllocationCovers(t *testing.T) {
	a := &Allocation{StartDate: date(2024, 3, 5), EndDate: date(2024, 3, 7)}
	if !a.Covers(date(2024, 3, 5)) || !a.Covers(date(2024, 3, 7)) {
		t.Error("allocation should cover its own bounds")
	}
	if a.Covers(date(2024, 3, 8)) {
		t.Error("allocation should not cover the day after its end")
	}
}

func TestNewLeaveEntry(t *testing.T) {
	t.Run("days count is inclusive", func(t *testing.T) {
		l, err := NewLeaveEntry(42, date(2024, 3, 5), date(2024, 3, 8))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if l.DaysCount != 4 {
			t.Errorf("DaysCount = %d, want 4", l.DaysCount)
		}
		if l.Status != LeaveRequested {
			t.Errorf("Status = %q, want %q", l.Status, LeaveRequested)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewLeaveEntry(42, date(2024, 3, 8), date(2024, 3, 5))
		if !errors.Is(err, ErrEndBeforeStart) {
			t.Errorf("got %v, want %v", err, ErrEndBeforeStart)
		}
	})
}

func TestLeaveSameRange(t *testing.T) {
	a := &LeaveEntry{SubjectID: 42, StartDate: date(2024, 3, 5), EndDate: date(2024, 3, 8)}
	b := &LeaveEntry{SubjectID: 42, StartDate: date(2024, 3, 5), EndDate: date(2024, 3, 8)}
	c := &LeaveEntry{SubjectID: 43, StartDate: date(2024, 3, 5), EndDate: date(2024, 3, 8)}

	if !a.SameRange(b) {
		t.Error("identical subject and range should match")
	}
	if a.SameRange(c) {
		t.Error("different subject should not match")
	}
	if a.SameRange(nil) {
		t.Error("nil should not match")
	}
}

func TestNewMarker(t *testing.T) {
	t.Run("requires title", func(t *testing.T) {
		_, err := NewMarker(0, date(2024, 12, 25), "", MarkerHoliday)
		if !errors.Is(err, ErrEmptyName) {
			t.Errorf("got %v, want %v", err, ErrEmptyName)
		}
	})

	t.Run("defaults to note kind", func(t *testing.T) {
		m, err := NewMarker(0, date(2024, 12, 25), "office closed", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if m.Kind != MarkerNote {
			t.Errorf("Kind = %q, want %q", m.Kind, MarkerNote)
		}
		if !m.Global() {
			t.Error("marker without subject should be global")
		}
	})
}
