package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/mvilla/crewcal/internal/plan"
)

func TestExportText(t *testing.T) {
	data := layoutDataset()
	leave, err := plan.NewLeaveEntry(2,
		time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewLeaveEntry: %v", err)
	}
	data.Leave = append(data.Leave, leave)

	text := exportText(data,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"Schedule 2024-03-01 to 2024-03-31",
		"Ana",
		"Atlas: 2024-03-01 to 2024-03-05 (project)",
		"Support: 2024-03-06 to 2024-03-08 (sla)",
		"Ben",
		"leave: 2024-03-04 to 2024-03-08 (requested)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing %q in:\n%s", want, text)
		}
	}
}

func TestExportTextSkipsOutOfRange(t *testing.T) {
	data := layoutDataset()
	text := exportText(data,
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))

	if strings.Contains(text, "Atlas:") {
		t.Fatalf("allocations outside the range should be omitted:\n%s", text)
	}
	if strings.Contains(text, "Ana") {
		t.Fatal("people with nothing in range should be omitted")
	}
}
