package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
)

// cell is one day column of a body row before styling is applied.
type cell struct {
	text  string
	style lipgloss.Style
}

// View renders the full screen: header, grid body or modal, and the
// footer with status and help.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading"
	}

	var b strings.Builder
	b.WriteString(m.renderMonthRow())
	b.WriteByte('\n')
	b.WriteString(m.renderDayRow())
	b.WriteByte('\n')

	bodyHeight := m.height - headerHeight - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	switch m.uiMode {
	case UIMenu:
		b.WriteString(m.centered(bodyHeight, m.renderMenu()))
	case UIAssign, UIEdit:
		b.WriteString(m.centered(bodyHeight, m.renderAllocationForm()))
	case UIMarker:
		b.WriteString(m.centered(bodyHeight, m.renderMarkerForm()))
	case UIMarkerList:
		b.WriteString(m.centered(bodyHeight, m.renderMarkerList()))
	case UIConfirm:
		b.WriteString(m.centered(bodyHeight, m.renderConfirm()))
	default:
		b.WriteString(m.renderBody(bodyHeight))
	}

	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	b.WriteString(m.styles.Help.Render("h/l scroll  t today  v view  m/M markers  y copy  q quit"))
	return b.String()
}

func (m *Model) centered(height int, content string) string {
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, content)
}

// visibleCols returns the first visible day column and how many fit.
func (m *Model) visibleCols() (first, count int) {
	colW := m.window.ColumnWidth()
	first = m.scrollX / colW
	count = m.viewportWidth() / colW
	if max := m.window.Days() - first; count > max {
		count = max
	}
	if count < 0 {
		count = 0
	}
	return first, count
}

// renderMonthRow prints a month name above each month's first visible
// column.
func (m *Model) renderMonthRow() string {
	colW := m.window.ColumnWidth()
	first, count := m.visibleCols()

	row := make([]byte, count*colW)
	for i := range row {
		row[i] = ' '
	}
	for i := 0; i < count; i++ {
		d := m.window.DateAt(first + i)
		if d.Day() != 1 && i != 0 {
			continue
		}
		label := d.Format("Jan 2006")
		for j := 0; j < len(label) && i*colW+j < len(row); j++ {
			row[i*colW+j] = label[j]
		}
	}
	return strings.Repeat(" ", gutterWidth) + m.styles.MonthLabel.Render(string(row))
}

// renderDayRow prints the day-of-month for each column, highlighting
// today and days carrying a global marker.
func (m *Model) renderDayRow() string {
	colW := m.window.ColumnWidth()
	first, count := m.visibleCols()
	today := dateutil.TruncateToDay(m.now())

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for i := 0; i < count; i++ {
		d := m.window.DateAt(first + i)
		text := fmt.Sprintf("%-*d", colW, d.Day())

		style := m.styles.DayLabel
		switch {
		case dateutil.SameDay(d, today):
			style = m.styles.Today
		case len(m.index.MarkersOn(0, d)) > 0:
			style = m.styles.MarkerTick
			text = "•" + text[1:]
		case isWeekend(d):
			style = m.styles.Weekend
		}
		b.WriteString(style.Render(text))
	}
	return b.String()
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// renderBody prints the visible slice of rows.
func (m *Model) renderBody(height int) string {
	lines := make([]string, 0, height)
	for i := m.rowOffset; i < len(m.rows) && len(lines) < height; i++ {
		lines = append(lines, m.renderRow(m.rows[i]))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(row Row) string {
	if row.Kind == RowHeader {
		return m.styles.SectionName.Render(row.Label)
	}

	label := fmt.Sprintf("  %-*s", gutterWidth-2, truncate(row.Label, gutterWidth-2))
	cells := m.laneCells(row)

	var b strings.Builder
	b.WriteString(m.styles.LaneLabel.Render(label))
	for _, c := range cells {
		b.WriteString(c.style.Render(c.text))
	}
	return b.String()
}

// laneCells computes the day cells for one lane row: empty texture,
// then blocks, then pending shadows, then the live gesture preview on
// top.
func (m *Model) laneCells(row Row) []cell {
	colW := m.window.ColumnWidth()
	first, count := m.visibleCols()

	cells := make([]cell, count)
	for i := range cells {
		d := m.window.DateAt(first + i)
		if isWeekend(d) {
			cells[i] = cell{text: strings.Repeat("·", colW), style: m.styles.Weekend}
		} else {
			cells[i] = cell{text: "·" + strings.Repeat(" ", colW-1), style: m.styles.EmptyCell}
		}
	}

	if row.TimeOff {
		for _, l := range m.index.LeaveFor(row.Lane.SubjectID) {
			style := m.styles.LeaveBlock
			if l.Status == plan.LeaveRequested {
				style = m.styles.LeavePending
			}
			if l.ID < 0 {
				style = m.styles.Pending
			}
			start, end := l.StartDate, l.EndDate
			// A rewrite awaiting the server keeps its previewed bounds.
			if span, ok := m.pendingLeave[l.ID]; ok {
				start, end = span.Start, span.End
			}
			m.paint(cells, first, start, end, "leave", style)
		}
	} else {
		group := m.index.Lane(row.Lane)
		for _, a := range group {
			style := m.styles.BlockProject
			if a.Kind != plan.AllocationProject {
				style = m.styles.BlockService
			}
			if a.ID < 0 {
				style = m.styles.Pending
			}
			if span, ok := m.pendingAlloc[a.ID]; ok {
				m.paint(cells, first, span.Start, span.End, a.Title, style)
				continue
			}
			span, renderable := mergedBounds(a, group)
			if !renderable {
				continue
			}
			m.paint(cells, first, span.Start, span.End, a.Title, style)
		}
	}

	m.paintPreview(cells, first, row)
	return cells
}

// mergedBounds resolves an allocation's display range, folding
// adjacent and overlapping lane mates into one block.
func mergedBounds(a *plan.Allocation, group []*plan.Allocation) (grid.Span, bool) {
	merged, renderable := grid.MergedSpan(a, group)
	if !renderable {
		return grid.Span{}, false
	}
	if merged != nil {
		return *merged, true
	}
	return grid.Span{Start: a.StartDate, End: a.EndDate}, true
}

// paintPreview overlays the in-progress gesture on the lane it targets.
func (m *Model) paintPreview(cells []cell, first int, row Row) {
	if lane, start, end, ok := m.interaction.CreatePreview(); ok && lane == row.Lane {
		m.paint(cells, first, start, end, "", m.styles.Preview)
	}
	if block, newStart, ok := m.interaction.MovePreview(); ok && block.Lane() == row.Lane {
		days := dateutil.InclusiveDays(block.Start(), block.End())
		m.paint(cells, first, newStart, dateutil.AddDays(newStart, days-1), "", m.styles.Preview)
	}
	if block, start, end, ok := m.interaction.ResizePreview(); ok && block.Lane() == row.Lane {
		m.paint(cells, first, start, end, "", m.styles.Preview)
	}
}

// paint fills the cells covering [start, end] with the given style and
// lays the label across them from the left.
func (m *Model) paint(cells []cell, first int, start, end time.Time, label string, style lipgloss.Style) {
	colW := m.window.ColumnWidth()

	sIdx := dateutil.DaysBetween(m.window.Start(), dateutil.TruncateToDay(start))
	eIdx := dateutil.DaysBetween(m.window.Start(), dateutil.TruncateToDay(end))
	if sIdx < 0 {
		sIdx = 0
	}
	if eIdx >= m.window.Days() {
		eIdx = m.window.Days() - 1
	}

	from := sIdx - first
	to := eIdx - first
	if to < 0 || from >= len(cells) {
		return
	}
	if from < 0 {
		from = 0
	}
	if to >= len(cells) {
		to = len(cells) - 1
	}

	// Labels are chunked by rune so multi-byte titles never split
	// inside a character.
	text := []rune(truncate(label, (to-from+1)*colW))
	for i := from; i <= to; i++ {
		var chunk []rune
		off := (i - from) * colW
		if off < len(text) {
			hi := off + colW
			if hi > len(text) {
				hi = len(text)
			}
			chunk = text[off:hi]
		}
		cells[i] = cell{text: string(chunk) + strings.Repeat(" ", colW-len(chunk)), style: style}
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (m *Model) renderMenu() string {
	block := m.interaction.MenuBlock()
	title := "block"
	switch {
	case block.IsLeave():
		title = "leave"
	case block.Allocation != nil:
		title = block.Allocation.Title
	}

	var b strings.Builder
	b.WriteString(m.styles.ModalTitle.Render(title))
	b.WriteByte('\n')
	for i, item := range m.menuItems() {
		style := m.styles.MenuItem
		if i == m.menuCursor {
			style = m.styles.MenuSelected
		}
		b.WriteString(style.Render(" " + item + " "))
		b.WriteByte('\n')
	}
	return m.styles.Menu.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderAllocationForm() string {
	f := m.form
	title := "New allocation"
	if f.editing != nil {
		title = "Edit allocation"
	}

	project := "(none)"
	if f.kind() == plan.AllocationProject && len(f.projects) > 0 {
		project = f.projects[f.projectIdx].Name
	}

	lines := []string{
		m.styles.ModalTitle.Render(title),
		m.formLine(f.focus == 0, "project", project),
		m.formLine(f.focus == 1, "kind", string(f.kind())),
		m.formLine(f.focus == 2, "title", f.title.View()),
		m.formLine(f.focus == 3, "start", f.start.View()),
		m.formLine(f.focus == 4, "end", f.end.View()),
		m.formLine(f.focus == 5, "days/week", f.perWeek.View()),
		m.formLine(f.focus == 6, "notes", f.notes.View()),
	}
	lines = append(lines, m.fieldErrorLines(f.fieldErrs)...)
	lines = append(lines, m.styles.Help.Render("tab next  ←/→ change  enter save  esc cancel"))
	return m.styles.Modal.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderMarkerForm() string {
	f := m.markerForm
	lines := []string{
		m.styles.ModalTitle.Render("New marker"),
		m.formLine(f.focus == 0, "kind", string(f.kind())),
		m.formLine(f.focus == 1, "title", f.title.View()),
		m.formLine(f.focus == 2, "date", f.date.View()),
	}
	lines = append(lines, m.fieldErrorLines(f.fieldErrs)...)
	lines = append(lines, m.styles.Help.Render("tab next  ←/→ change  enter save  esc cancel"))
	return m.styles.Modal.Render(strings.Join(lines, "\n"))
}

func (m *Model) formLine(focused bool, label, value string) string {
	marker := "  "
	if focused {
		marker = m.styles.EdgeHandle.Render("> ")
	}
	return marker + m.styles.FieldLabel.Render(fmt.Sprintf("%-10s", label)) + value
}

func (m *Model) fieldErrorLines(errs map[string][]string) []string {
	var lines []string
	for field, msgs := range errs {
		for _, msg := range msgs {
			lines = append(lines, m.styles.FieldError.Render(field+": "+msg))
		}
	}
	return lines
}

func (m *Model) renderMarkerList() string {
	var b strings.Builder
	b.WriteString(m.styles.ModalTitle.Render("Markers"))
	b.WriteByte('\n')
	for i, mk := range m.markerList {
		style := m.styles.MenuItem
		if i == m.markerCursor {
			style = m.styles.MenuSelected
		}
		b.WriteString(style.Render(fmt.Sprintf(" %s  %s (%s) ",
			dateutil.FormatDate(mk.Date), mk.Title, mk.Kind)))
		b.WriteByte('\n')
	}
	b.WriteString(m.styles.Help.Render("e edit  d delete  esc close"))
	return m.styles.Menu.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderConfirm() string {
	what := "this allocation"
	if m.confirm.IsLeave() {
		what = "this leave entry"
	}
	return m.styles.Modal.Render(
		m.styles.ModalTitle.Render("Delete "+what+"?") + "\n" +
			m.styles.Help.Render("y confirm  n cancel"))
}

func (m *Model) renderStatus() string {
	if len(m.toasts) > 0 {
		t := m.toasts[len(m.toasts)-1]
		style := m.styles.Toast
		if t.warning {
			style = m.styles.Warning
		}
		if t.danger {
			style = m.styles.Danger
		}
		return style.Render(t.text)
	}
	if m.loading {
		return m.styles.Status.Render("loading…")
	}
	if m.statusMsg != "" {
		return m.styles.Status.Render(m.statusMsg)
	}
	return m.styles.Status.Render(fmt.Sprintf("%s to %s",
		dateutil.FormatDate(m.window.Start()), dateutil.FormatDate(m.window.End())))
}
