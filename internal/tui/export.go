package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/tui/commands"
)

// exportVisible copies a plain-text schedule for the loaded window to
// the system clipboard.
func (m *Model) exportVisible() tea.Cmd {
	text := exportText(m.data, m.window.Start(), m.window.End())
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return commands.ErrMsg{Err: fmt.Errorf("copy schedule: %w", err)}
		}
		return commands.StatusMsgCmd{Msg: "schedule copied to clipboard"}
	}
}

// exportText renders the schedule between start and end as plain text,
// one section per person, suitable for pasting into chat or email.
func exportText(data grid.Dataset, start, end time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schedule %s to %s\n", dateutil.FormatDate(start), dateutil.FormatDate(end))

	projects := make(map[int64]*plan.Project, len(data.Projects))
	for _, p := range data.Projects {
		projects[p.ID] = p
	}

	for _, sub := range data.Subjects {
		if sub.Kind != plan.SubjectPerson {
			continue
		}
		var lines []string
		for _, a := range data.Allocations {
			if a.SubjectID != sub.ID || !a.OverlapsRange(start, end) {
				continue
			}
			label := a.Title
			if p, ok := projects[a.ProjectID]; ok {
				label = p.Name
			}
			lines = append(lines, fmt.Sprintf("  %s: %s to %s (%s)",
				label, dateutil.FormatDate(a.StartDate), dateutil.FormatDate(a.EndDate), a.Kind))
		}
		for _, l := range data.Leave {
			if l.SubjectID != sub.ID || !l.OverlapsRange(start, end) {
				continue
			}
			lines = append(lines, fmt.Sprintf("  leave: %s to %s (%s)",
				dateutil.FormatDate(l.StartDate), dateutil.FormatDate(l.EndDate), l.Status))
		}
		if len(lines) == 0 {
			continue
		}
		sort.Strings(lines)
		fmt.Fprintf(&b, "\n%s\n%s\n", sub.Name, strings.Join(lines, "\n"))
	}
	return b.String()
}
