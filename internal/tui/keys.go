package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/tui/commands"
)

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.uiMode {
	case UIMenu:
		return m.menuKey(msg)
	case UIAssign, UIEdit:
		return m.allocationFormKey(msg)
	case UIMarker:
		return m.markerFormKey(msg)
	case UIMarkerList:
		return m.markerListKey(msg)
	case UIConfirm:
		return m.confirmKey(msg)
	}
	return m.normalKey(msg)
}

func (m *Model) normalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	col := m.window.ColumnWidth()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "h", "left":
		m.scrollBy(-col)
	case "l", "right":
		m.scrollBy(col)
	case "H", "pgup":
		m.scrollBy(-m.viewportWidth())
	case "L", "pgdown":
		m.scrollBy(m.viewportWidth())
	case "j", "down":
		if m.rowOffset < len(m.rows)-1 {
			m.rowOffset++
		}
	case "k", "up":
		if m.rowOffset > 0 {
			m.rowOffset--
		}
	case "t":
		if day := m.window.DayIndexOf(dateutil.TruncateToDay(m.now())); day >= 0 {
			m.scrollX = m.window.OffsetOfDay(day)
			m.clampScroll()
		}
	case "v":
		if m.viewMode == ViewPeople {
			m.viewMode = ViewProjects
		} else {
			m.viewMode = ViewPeople
		}
		m.rowOffset = 0
		m.refresh()
	case "m":
		if m.cfg.CanModify() {
			m.markerForm = newMarkerForm(0, m.visibleAnchor())
			m.uiMode = UIMarker
		}
	case "M":
		if m.cfg.CanModify() {
			m.openMarkerList()
		}
	case "y":
		return m, m.exportVisible()
	case "r":
		m.loading = true
		return m, commands.LoadDataset(m.client, m.window.Start(), m.window.End())
	case "esc":
		m.interaction.Cancel()
	}
	return m, nil
}

// visibleAnchor returns today when it is inside the window, otherwise
// the first visible day. Used as the default date for new markers.
func (m *Model) visibleAnchor() time.Time {
	today := dateutil.TruncateToDay(m.now())
	if m.window.Contains(today) {
		return today
	}
	return m.window.Start()
}

// menuItems lists the context menu entries for the selected block.
// Read-only roles only get to close the menu.
func (m *Model) menuItems() []string {
	if !m.cfg.CanModify() {
		return []string{"cancel"}
	}
	b := m.interaction.MenuBlock()
	if b.IsLeave() {
		if b.Leave.Status == plan.LeaveRequested {
			return []string{"approve", "delete", "cancel"}
		}
		return []string{"delete", "cancel"}
	}
	return []string{"edit", "delete", "cancel"}
}

func (m *Model) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menuItems()
	switch msg.String() {
	case "j", "down":
		if m.menuCursor < len(items)-1 {
			m.menuCursor++
		}
	case "k", "up":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "esc", "q":
		m.closeMenu()
	case "enter":
		choice := items[m.menuCursor]
		block := m.interaction.MenuBlock()
		m.closeMenu()
		switch choice {
		case "edit":
			m.form = newEditForm(block.Allocation, m.data.Projects)
			m.uiMode = UIEdit
		case "approve":
			l := *block.Leave
			l.Status = plan.LeaveApproved
			return m, commands.UpdateLeave(m.client, &l)
		case "delete":
			m.confirm = block
			m.uiMode = UIConfirm
		}
	}
	return m, nil
}

func (m *Model) confirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		block := m.confirm
		m.uiMode = UINormal
		if block.IsLeave() {
			return m, commands.DeleteLeave(m.client, block.Leave.ID)
		}
		return m, commands.DeleteAllocation(m.client, block.Allocation.ID)
	case "n", "esc":
		m.uiMode = UINormal
	}
	return m, nil
}

func (m *Model) allocationFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form = nil
		m.uiMode = UINormal
		return m, nil
	case "tab", "down":
		m.form.next()
		return m, nil
	case "shift+tab", "up":
		m.form.prev()
		return m, nil
	case "left":
		if m.form.focus < 2 {
			m.form.cycle(-1)
			return m, nil
		}
	case "right":
		if m.form.focus < 2 {
			m.form.cycle(1)
			return m, nil
		}
	case "enter":
		return m.submitAllocationForm()
	}
	return m, m.form.update(msg)
}

func (m *Model) submitAllocationForm() (tea.Model, tea.Cmd) {
	a, ok := m.form.build()
	if !ok {
		return m, nil
	}
	editing := m.form.editing != nil
	// Hold the submitted form so a server-side validation failure can
	// reopen it with the rejected fields marked.
	m.pendingForm = m.form
	m.form = nil
	m.uiMode = UINormal

	if editing {
		return m, commands.UpdateAllocation(m.client, a)
	}
	mutationID := m.overlay.AddAllocation(a)
	m.refresh()
	return m, commands.CreateAllocation(m.client, mutationID, a)
}

func (m *Model) markerFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.markerForm = nil
		m.uiMode = UINormal
		return m, nil
	case "tab", "down":
		m.markerForm.next()
		return m, nil
	case "shift+tab", "up":
		m.markerForm.prev()
		return m, nil
	case "left":
		if m.markerForm.focus == 0 {
			m.markerForm.cycle(-1)
			return m, nil
		}
	case "right":
		if m.markerForm.focus == 0 {
			m.markerForm.cycle(1)
			return m, nil
		}
	case "enter":
		marker, ok := m.markerForm.build()
		if !ok {
			return m, nil
		}
		editing := m.markerForm.editing != nil
		m.markerForm = nil
		m.uiMode = UINormal
		if editing {
			return m, commands.UpdateMarker(m.client, marker)
		}
		return m, commands.CreateMarker(m.client, marker)
	}
	return m, m.markerForm.update(msg)
}

// openMarkerList shows the markers on the anchor day for editing or
// deleting. Falls back to a status hint when the day has none.
func (m *Model) openMarkerList() {
	day := m.visibleAnchor()
	var list []*plan.Marker
	for _, mk := range m.data.Markers {
		if mk.On(day) {
			list = append(list, mk)
		}
	}
	if len(list) == 0 {
		m.pushToast("no markers on "+dateutil.FormatDate(day), false, false)
		return
	}
	m.markerList = list
	m.markerCursor = 0
	m.uiMode = UIMarkerList
}

func (m *Model) markerListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.markerCursor < len(m.markerList)-1 {
			m.markerCursor++
		}
	case "k", "up":
		if m.markerCursor > 0 {
			m.markerCursor--
		}
	case "esc", "q":
		m.markerList = nil
		m.uiMode = UINormal
	case "enter", "e":
		mk := m.markerList[m.markerCursor]
		m.markerList = nil
		m.markerForm = newMarkerEditForm(mk)
		m.uiMode = UIMarker
	case "d":
		mk := m.markerList[m.markerCursor]
		m.markerList = nil
		m.uiMode = UINormal
		return m, commands.DeleteMarker(m.client, mk.ID)
	}
	return m, nil
}
