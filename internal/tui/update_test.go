package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/config"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/tui/commands"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.Default()
	m := New(cfg)
	m.now = func() time.Time {
		return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	// Pin the window to the fixed clock so test dates resolve to grid
	// columns.
	m.window = grid.NewMonthWindow(m.now(), cfg.Window.MonthsBefore, cfg.Window.MonthsAfter, cfg.UI.ColumnWidth)
	m.interaction = grid.NewInteractionController(m.window, m.index, cfg.CanModify())
	m.scrollX = 0
	m.width = 120
	m.height = 40
	return m
}

func mustAllocation(t *testing.T, subjectID, projectID int64, start, end time.Time) *plan.Allocation {
	t.Helper()
	a, err := plan.NewAllocation(subjectID, projectID, plan.AllocationProject, "Atlas", start, end, 5)
	if err != nil {
		t.Fatalf("NewAllocation: %v", err)
	}
	return a
}

func TestTokenMsgFeedsInjector(t *testing.T) {
	m := testModel(t)
	m.Update(commands.TokenMsg{Token: "abc123"})

	if got := m.csrf.get(); got != "abc123" {
		t.Fatalf("csrf token = %q, want %q", got, "abc123")
	}
}

func TestDatasetLoadedRebuildsRows(t *testing.T) {
	m := testModel(t)
	if len(m.rows) != 0 {
		t.Fatal("rows should start empty")
	}

	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	if m.loading {
		t.Fatal("loading should clear after the dataset arrives")
	}
	if len(m.rows) == 0 {
		t.Fatal("rows should be rebuilt from the dataset")
	}
	if m.index == nil || !m.index.HasAllocation(plan.ProjectLane(1, 10), time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("index should cover the loaded allocations")
	}
}

func TestMutationFailedRollsBackShadow(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	a := mustAllocation(t, 2, 10,
		time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))
	mutationID := m.overlay.AddAllocation(a)
	m.refresh()

	lane := plan.ProjectLane(2, 10)
	if !m.index.HasAllocation(lane, a.StartDate) {
		t.Fatal("shadow record should be visible before the failure")
	}

	m.Update(commands.MutationFailedMsg{MutationID: mutationID, Err: errors.New("boom")})

	if m.index.HasAllocation(lane, a.StartDate) {
		t.Fatal("shadow record should be gone after rollback")
	}
	if len(m.toasts) == 0 || !m.toasts[len(m.toasts)-1].danger {
		t.Fatal("rollback should surface a danger toast")
	}
}

func TestAllocationSavedCommitsShadow(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	a := mustAllocation(t, 2, 10,
		time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))
	mutationID := m.overlay.AddAllocation(a)
	m.refresh()

	server := *a
	server.ID = 777
	m.Update(commands.AllocationSavedMsg{MutationID: mutationID, Record: &server, Warnings: []string{"heads up"}})

	found := m.index.AllocationAt(plan.ProjectLane(2, 10), a.StartDate)
	if found == nil || found.ID != 777 {
		t.Fatalf("committed record = %+v, want server id 777", found)
	}
	if len(m.toasts) == 0 || !m.toasts[len(m.toasts)-1].warning {
		t.Fatal("warnings should surface as a warning toast")
	}
}

func TestRecordUpdatedPatchesSnapshot(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	moved := *m.base.Allocations[0]
	moved.StartDate = time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	moved.EndDate = time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)
	m.Update(commands.RecordUpdatedMsg{Allocation: &moved})

	if got := m.index.AllocationAt(plan.ProjectLane(1, 10), moved.StartDate); got == nil || got.ID != moved.ID {
		t.Fatal("snapshot should hold the rewritten record")
	}
	if m.index.AllocationAt(plan.ProjectLane(1, 10), time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) != nil {
		t.Fatal("old dates should be vacated")
	}
}

func TestRangeLoadedExtendsSnapshotAndFinishesLoad(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})
	m.pagination.StartLoad(grid.LoadFuture)

	extra := mustAllocation(t, 1, 10,
		time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC))
	extra.ID = 50
	m.Update(commands.RangeLoadedMsg{Edge: grid.LoadFuture, Allocations: []*plan.Allocation{extra}})

	if m.pagination.InFlight(grid.LoadFuture) {
		t.Fatal("load should be finished")
	}
	last := m.base.Allocations[len(m.base.Allocations)-1]
	if last.ID != 50 {
		t.Fatalf("last allocation id = %d, want the appended record", last.ID)
	}
}

func TestViewToggleRebuildsRows(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})
	peopleRows := len(m.rows)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})

	if m.viewMode != ViewProjects {
		t.Fatalf("viewMode = %v, want ViewProjects", m.viewMode)
	}
	if len(m.rows) == peopleRows {
		t.Fatal("row layout should change with the view")
	}
}

func TestMenuApproveLeaveIssuesUpdate(t *testing.T) {
	m := testModel(t)
	data := layoutDataset()
	leave, err := plan.NewLeaveEntry(1,
		time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewLeaveEntry: %v", err)
	}
	leave.ID = 5
	data.Leave = append(data.Leave, leave)
	m.Update(commands.DatasetLoadedMsg{Data: data})

	// Click the leave block to open its menu.
	lane := plan.TimeOffLane(1)
	p := grid.Pointer{X: m.window.OffsetOfDay(m.window.DayIndexOf(leave.StartDate)) + 2, Lane: lane}
	if err := m.interaction.PointerDown(p); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	effect := m.interaction.PointerUp(p)
	if _, ok := effect.(grid.OpenMenuEffect); !ok {
		t.Fatalf("effect = %T, want OpenMenuEffect", effect)
	}
	m.runEffect(effect)

	if m.uiMode != UIMenu {
		t.Fatalf("uiMode = %v, want UIMenu", m.uiMode)
	}
	if items := m.menuItems(); items[0] != "approve" {
		t.Fatalf("menu = %v, want approve first for requested leave", items)
	}

	_, cmd := m.menuKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("approve should issue an update command")
	}
	if m.uiMode != UINormal {
		t.Fatal("menu should close after choosing")
	}
}

func TestRangeLoadFailureClearsInFlight(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	if cmd := m.startEdgeLoad(grid.LoadPast); cmd == nil {
		t.Fatal("startEdgeLoad should issue a fetch")
	}
	if !m.pagination.InFlight(grid.LoadPast) {
		t.Fatal("edge should be in flight after the load starts")
	}

	m.Update(commands.RangeFailedMsg{Edge: grid.LoadPast, Err: errors.New("backend down")})

	if m.pagination.InFlight(grid.LoadPast) {
		t.Fatal("a failed fetch must release the edge")
	}
	if !m.pagination.StartLoad(grid.LoadPast) {
		t.Fatal("the edge should accept a retry after the failure")
	}
	if len(m.toasts) == 0 || !m.toasts[len(m.toasts)-1].danger {
		t.Fatal("the failure should surface a danger toast")
	}
}

func TestGuestMenuOnlyOffersCancel(t *testing.T) {
	cfg := config.Default()
	cfg.UI.Role = string(config.RoleGuest)
	m := New(cfg)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	items := m.menuItems()
	if len(items) != 1 || items[0] != "cancel" {
		t.Fatalf("menu = %v, want only cancel for a read-only role", items)
	}
}

func TestRewriteKeepsGestureBoundsUntilConfirmed(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	a := m.base.Allocations[0]
	newStart := time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC)
	newEnd := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if cmd := m.rewriteBlock(grid.Block{Allocation: a}, newStart, newEnd); cmd == nil {
		t.Fatal("rewriteBlock should issue an update command")
	}

	span, ok := m.pendingAlloc[a.ID]
	if !ok || !span.Start.Equal(newStart) || !span.End.Equal(newEnd) {
		t.Fatalf("pending span = %+v, want the gesture bounds", span)
	}

	// The block draws at the new position while the request is out.
	m.scrollX = m.window.OffsetOfDay(m.window.DayIndexOf(newStart))
	var laneRow Row
	for _, r := range m.rows {
		if r.Kind == RowLane && r.Lane == plan.ProjectLane(1, 10) {
			laneRow = r
		}
	}
	cells := m.laneCells(laneRow)
	if got := cells[0].text; got != "Atla" {
		t.Fatalf("cell at new start = %q, want the block label", got)
	}

	moved := *a
	moved.StartDate = newStart
	moved.EndDate = newEnd
	m.Update(commands.RecordUpdatedMsg{Allocation: &moved})

	if _, ok := m.pendingAlloc[a.ID]; ok {
		t.Fatal("confirmation should drop the pending span")
	}
}

func TestRewriteFailureDropsPendingBounds(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	a := m.base.Allocations[0]
	m.rewriteBlock(grid.Block{Allocation: a},
		time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

	m.Update(commands.ErrMsg{Err: errors.New("rejected")})

	if len(m.pendingAlloc) != 0 {
		t.Fatal("a failed rewrite must not keep painting the gesture bounds")
	}
}

func TestValidationFailureReopensForm(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	m.form = newAllocationForm(1, m.data.Projects,
		time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC))
	m.form.title.SetValue("Atlas ramp-up")
	m.uiMode = UIAssign
	if _, cmd := m.submitAllocationForm(); cmd == nil {
		t.Fatal("submit should issue a create command")
	}
	if m.uiMode != UINormal || m.form != nil {
		t.Fatal("submit should close the form while the request is out")
	}

	verr := &api.ValidationError{
		Message: "validation failed",
		Fields:  map[string][]string{"title": {"is already taken"}},
	}
	m.Update(commands.MutationFailedMsg{MutationID: "m1", Err: verr})

	if m.uiMode != UIAssign || m.form == nil {
		t.Fatal("a validation failure should reopen the form")
	}
	if got := m.form.fieldErrs["title"]; len(got) == 0 || got[0] != "is already taken" {
		t.Fatalf("fieldErrs = %v, want the server message on title", m.form.fieldErrs)
	}
	if m.form.title.Value() != "Atlas ramp-up" {
		t.Fatal("the typed input should survive the round trip")
	}
}

func TestEscCancelsGesture(t *testing.T) {
	m := testModel(t)
	m.Update(commands.DatasetLoadedMsg{Data: layoutDataset()})

	lane := plan.ProjectLane(1, 10)
	day := m.window.DayIndexOf(time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC))
	p := grid.Pointer{X: m.window.OffsetOfDay(day) + 2, Lane: lane}
	if err := m.interaction.PointerDown(p); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.interaction.Mode() != grid.Idle {
		t.Fatalf("mode = %v, want idle after esc", m.interaction.Mode())
	}
}
