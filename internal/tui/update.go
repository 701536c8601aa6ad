package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/tui/commands"
)

// Update is the bubbletea message loop.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case commands.TokenMsg:
		m.csrf.set(msg.Token)
		return m, nil

	case commands.DatasetLoadedMsg:
		m.base = msg.Data
		m.overlay.Reconcile(m.base.Allocations, m.base.Leave)
		m.loading = false
		m.refresh()
		return m, nil

	case commands.RangeLoadedMsg:
		m.mergeRange(msg)
		m.pagination.FinishLoad(msg.Edge)
		m.refresh()
		return m, nil

	case commands.RangeFailedMsg:
		// Clear the in-flight flag so a later scroll can retry the edge.
		m.pagination.FinishLoad(msg.Edge)
		m.pushToast(mutationError(msg.Err), false, true)
		return m, nil

	case commands.AllocationSavedMsg:
		m.overlay.CommitAllocation(msg.MutationID, msg.Record)
		m.pendingForm = nil
		m.refresh()
		for _, w := range msg.Warnings {
			m.pushToast(w, true, false)
		}
		return m, nil

	case commands.LeaveSavedMsg:
		m.overlay.CommitLeave(msg.MutationID, msg.Record)
		m.refresh()
		return m, nil

	case commands.MutationFailedMsg:
		m.overlay.Rollback(msg.MutationID)
		m.refresh()
		if m.reopenFormFor(msg.Err) {
			return m, nil
		}
		m.pushToast(mutationError(msg.Err), false, true)
		return m, nil

	case commands.RecordUpdatedMsg:
		if msg.Allocation != nil {
			m.base.Allocations = replaceAllocation(m.base.Allocations, msg.Allocation)
			delete(m.pendingAlloc, msg.Allocation.ID)
		}
		if msg.Leave != nil {
			m.base.Leave = replaceLeave(m.base.Leave, msg.Leave)
			delete(m.pendingLeave, msg.Leave.ID)
		}
		m.pendingForm = nil
		m.refresh()
		for _, w := range msg.Warnings {
			m.pushToast(w, true, false)
		}
		return m, nil

	case commands.RecordDeletedMsg:
		// Deletes carry no record, so reload the window.
		return m, commands.LoadDataset(m.client, m.window.Start(), m.window.End())

	case commands.MarkerSavedMsg:
		m.base.Markers = replaceMarker(m.base.Markers, msg.Record)
		m.refresh()
		return m, nil

	case commands.ErrMsg:
		m.loading = false
		// A failed rewrite must not keep painting the previewed bounds.
		m.pendingAlloc = map[int64]grid.Span{}
		m.pendingLeave = map[int64]grid.Span{}
		m.refresh()
		if m.reopenFormFor(msg.Err) {
			return m, nil
		}
		m.pushToast(mutationError(msg.Err), false, true)
		return m, nil

	case commands.StatusMsgCmd:
		m.statusMsg = msg.Msg
		return m, nil

	case commands.ClearStatusMsg:
		m.statusMsg = ""
		return m, nil

	case commands.DebounceTickMsg:
		m.pruneToasts()
		cmds := []tea.Cmd{commands.DebounceTick()}
		for _, edge := range m.pagination.Due() {
			if cmd := m.startEdgeLoad(edge); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

// startEdgeLoad extends the window by one month at the given edge and
// issues the fetch for the newly covered days. The scroll offset is
// corrected in the same frame so the viewport does not jump.
func (m *Model) startEdgeLoad(edge grid.LoadEdge) tea.Cmd {
	if !m.pagination.StartLoad(edge) {
		return nil
	}
	oldStart, oldEnd := m.window.Start(), m.window.End()
	var added int
	var start, end time.Time
	if edge == grid.LoadPast {
		added = m.window.ExtendPast()
		start, end = m.window.Start(), dateutil.AddDays(oldStart, -1)
	} else {
		added = m.window.ExtendFuture()
		start, end = dateutil.AddDays(oldEnd, 1), m.window.End()
	}
	m.scrollX = grid.CorrectScroll(m.scrollX, edge, added*m.window.ColumnWidth())
	return commands.LoadRange(m.client, edge, start, end)
}

// mergeRange folds a pagination result into the authoritative snapshot.
// The fetched range never overlaps what is already held.
func (m *Model) mergeRange(msg commands.RangeLoadedMsg) {
	if msg.Edge == grid.LoadPast {
		m.base.Allocations = append(append([]*plan.Allocation(nil), msg.Allocations...), m.base.Allocations...)
		m.base.Leave = append(append([]*plan.LeaveEntry(nil), msg.Leave...), m.base.Leave...)
		m.base.Markers = append(append([]*plan.Marker(nil), msg.Markers...), m.base.Markers...)
		return
	}
	m.base.Allocations = append(m.base.Allocations, msg.Allocations...)
	m.base.Leave = append(m.base.Leave, msg.Leave...)
	m.base.Markers = append(m.base.Markers, msg.Markers...)
}

func replaceAllocation(list []*plan.Allocation, record *plan.Allocation) []*plan.Allocation {
	out := append([]*plan.Allocation(nil), list...)
	for i, a := range out {
		if a.ID == record.ID {
			out[i] = record
			return out
		}
	}
	return append(out, record)
}

func replaceLeave(list []*plan.LeaveEntry, record *plan.LeaveEntry) []*plan.LeaveEntry {
	out := append([]*plan.LeaveEntry(nil), list...)
	for i, l := range out {
		if l.ID == record.ID {
			out[i] = record
			return out
		}
	}
	return append(out, record)
}

func replaceMarker(list []*plan.Marker, record *plan.Marker) []*plan.Marker {
	out := append([]*plan.Marker(nil), list...)
	for i, mk := range out {
		if mk.ID == record.ID {
			out[i] = record
			return out
		}
	}
	return append(out, record)
}

// reopenFormFor brings back the last submitted allocation form when
// the backend rejected it with per-field validation errors, so the
// rejected fields are marked instead of the input being lost.
func (m *Model) reopenFormFor(err error) bool {
	var verr *api.ValidationError
	if m.pendingForm == nil || !errors.As(err, &verr) {
		return false
	}
	m.form = m.pendingForm
	m.pendingForm = nil
	m.form.fieldErrs = verr.Fields
	if m.form.editing != nil {
		m.uiMode = UIEdit
	} else {
		m.uiMode = UIAssign
	}
	return true
}

// mutationError renders a request failure for the toast line,
// preferring per-field detail from validation failures.
func mutationError(err error) string {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		for _, msgs := range verr.Fields {
			if len(msgs) > 0 {
				return msgs[0]
			}
		}
		return verr.Message
	}
	var aerr *api.AuthorizationError
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	return err.Error()
}
