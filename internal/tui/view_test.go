package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mvilla/crewcal/internal/tui/commands"
)

func TestViewShowsSectionsAndBlocks(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})
	m.scrollX = 0

	out := m.View()

	for _, want := range []string{"Ana", "Ben", "time off", "Atlas"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewShowsMenuOverlay(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})
	m.uiMode = UIMenu
	m.interaction.SetIndex(m.index)

	// Without a selected block the menu still lists the allocation
	// actions.
	out := m.View()
	if !strings.Contains(out, "delete") {
		t.Error("menu overlay should list its actions")
	}
}

func TestTruncateCutsOnRuneBoundary(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Atlas", 4, "Atla"},
		{"Atlas", 10, "Atlas"},
		{"Übergabe", 4, "Über"},
		{"日本語タイトル", 3, "日本語"},
		{"Atlas", 0, ""},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPaintSplitsLabelByRune(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	cells := make([]cell, 3)
	start := m.window.Start()
	end := start.AddDate(0, 0, 2)
	m.paint(cells, 0, start, end, "Überführung", m.styles.BlockProject)

	if got := cells[0].text; got != "Über" {
		t.Fatalf("cells[0] = %q, want the first four runes", got)
	}
	if got := cells[1].text; got != "führ" {
		t.Fatalf("cells[1] = %q, want the next four runes", got)
	}
	for i, c := range cells {
		if !utf8.ValidString(c.text) {
			t.Fatalf("cells[%d] = %q contains a broken rune", i, c.text)
		}
	}
}
