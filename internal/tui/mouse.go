package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/tui/commands"
)

// wheelStep is how many display units one wheel tick scrolls.
const wheelStep = 8

// handleMouse translates terminal mouse events into grid pointer
// events and executes the effects that completed gestures produce.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelLeft:
		m.scrollBy(-wheelStep)
		return m, nil
	case tea.MouseButtonWheelDown, tea.MouseButtonWheelRight:
		m.scrollBy(wheelStep)
		return m, nil
	}

	// A press anywhere dismisses an open overlay instead of starting a
	// gesture underneath it.
	if m.uiMode != UINormal {
		if m.uiMode == UIMenu && msg.Action == tea.MouseActionPress {
			m.closeMenu()
		}
		return m, nil
	}

	p, ok := m.pointerAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !ok {
			return m, nil
		}
		if err := m.interaction.PointerDown(p); err != nil && errors.Is(err, grid.ErrCellOccupied) {
			m.pushToast("that slot is already taken", true, false)
		}
	case tea.MouseActionMotion:
		if ok {
			m.interaction.PointerMove(p)
		}
	case tea.MouseActionRelease:
		if effect := m.interaction.PointerUp(p); effect != nil {
			return m, m.runEffect(effect)
		}
	}
	return m, nil
}

// scrollBy pans the viewport and notifies the pagination controller.
func (m *Model) scrollBy(delta int) {
	m.scrollX += delta
	m.clampScroll()
	m.pagination.OnScroll(m.scrollX, m.viewportWidth(), m.window.Width())
}

// pointerAt resolves terminal coordinates to a grid pointer. Only lane
// rows are interactive; header rows and the gutter report no pointer.
func (m *Model) pointerAt(x, y int) (grid.Pointer, bool) {
	rowIdx := y - headerHeight + m.rowOffset
	if rowIdx < 0 || rowIdx >= len(m.rows) || m.rows[rowIdx].Kind != RowLane {
		return grid.Pointer{}, false
	}
	gridX := x - gutterWidth + m.scrollX
	if gridX < 0 || gridX >= m.window.Width() {
		return grid.Pointer{}, false
	}
	return grid.Pointer{X: gridX, Y: y, Lane: m.rows[rowIdx].Lane}, true
}

// runEffect executes a gesture result: optimistic inserts for creates,
// update requests for moves and resizes, and overlay state for menus.
func (m *Model) runEffect(effect grid.Effect) tea.Cmd {
	switch e := effect.(type) {
	case grid.CreateAllocationEffect:
		// A spare track has no target yet, so the gesture opens the
		// assignment form instead of committing optimistically.
		if e.Lane.ProjectID == 0 && e.Lane.Kind == plan.AllocationProject {
			m.form = newAllocationForm(e.Lane.SubjectID, m.data.Projects, e.Start, e.End)
			m.uiMode = UIAssign
			return nil
		}
		title := m.projectTitle(e.Lane.ProjectID)
		a, err := plan.NewAllocation(e.Lane.SubjectID, e.Lane.ProjectID, e.Lane.Kind, title, e.Start, e.End, 5)
		if err != nil {
			m.pushToast(err.Error(), false, true)
			return nil
		}
		mutationID := m.overlay.AddAllocation(a)
		m.refresh()
		return commands.CreateAllocation(m.client, mutationID, a)

	case grid.CreateLeaveEffect:
		l, err := plan.NewLeaveEntry(e.SubjectID, e.Start, e.End)
		if err != nil {
			m.pushToast(err.Error(), false, true)
			return nil
		}
		mutationID := m.overlay.AddLeave(l)
		m.refresh()
		return commands.CreateLeave(m.client, mutationID, l)

	case grid.MoveEffect:
		return m.rewriteBlock(e.Block, e.NewStart, e.NewEnd)

	case grid.ResizeEffect:
		return m.rewriteBlock(e.Block, e.NewStart, e.NewEnd)

	case grid.OpenMenuEffect:
		m.uiMode = UIMenu
		m.menuCursor = 0
		return nil

	case grid.OpenAssignMenuEffect:
		if e.Lane.TimeOff {
			return nil
		}
		m.form = newAllocationForm(e.Lane.SubjectID, m.data.Projects, e.Date, e.Date)
		m.uiMode = UIAssign
		return nil
	}
	return nil
}

// rewriteBlock persists new dates for a moved or resized block. The
// new bounds are recorded so the view keeps drawing the block where
// the gesture left it until the server answers.
func (m *Model) rewriteBlock(b grid.Block, start, end time.Time) tea.Cmd {
	if b.IsLeave() {
		l := *b.Leave
		l.StartDate = start
		l.EndDate = end
		l.DaysCount = dateutil.InclusiveDays(start, end)
		m.pendingLeave[l.ID] = grid.Span{Start: start, End: end}
		return commands.UpdateLeave(m.client, &l)
	}
	a := *b.Allocation
	a.StartDate = start
	a.EndDate = end
	m.pendingAlloc[a.ID] = grid.Span{Start: start, End: end}
	return commands.UpdateAllocation(m.client, &a)
}

func (m *Model) projectTitle(projectID int64) string {
	for _, p := range m.data.Projects {
		if p.ID == projectID {
			return p.Name
		}
	}
	return "Untitled"
}

func (m *Model) closeMenu() {
	m.interaction.CloseMenu()
	m.uiMode = UINormal
	m.menuCursor = 0
}
