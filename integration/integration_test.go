package integration

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
	"github.com/mvilla/crewcal/internal/server"
)

// testStack wires the full path a gesture travels: SQLite store, HTTP
// server, API client with the anti-forgery injector, and the grid
// engine on top.
type testStack struct {
	store  *server.Store
	srv    *httptest.Server
	client *api.Client
}

func openStack(t *testing.T) *testStack {
	t.Helper()

	store, err := server.OpenStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(server.NewRouter(server.NewHandler(store), server.Config{}))
	t.Cleanup(srv.Close)

	var token string
	client := api.NewClient(srv.URL, api.WithHeaderInjector(api.CSRFToken(func() string {
		return token
	})))
	token, err = client.FetchToken(context.Background())
	if err != nil {
		t.Fatalf("failed to fetch token: %v", err)
	}

	return &testStack{store: store, srv: srv, client: client}
}

func seedPerson(t *testing.T, store *server.Store, name string) int64 {
	t.Helper()
	sub := &plan.Subject{Name: name, Kind: plan.SubjectPerson}
	if err := store.CreateSubject(context.Background(), sub); err != nil {
		t.Fatalf("failed to insert subject: %v", err)
	}
	return sub.ID
}

func seedProject(t *testing.T, store *server.Store, name string) int64 {
	t.Helper()
	p := &plan.Project{Name: name, Status: plan.ProjectActive}
	if err := store.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("failed to insert project: %v", err)
	}
	return p.ID
}

// loadDataset pulls the full window through the client, the way the
// calendar does on startup.
func loadDataset(t *testing.T, client *api.Client, start, end time.Time) grid.Dataset {
	t.Helper()
	ctx := context.Background()
	q := api.RangeQuery{Start: start, End: end}

	var data grid.Dataset
	var err error
	if data.Subjects, err = client.ListSubjects(ctx); err != nil {
		t.Fatalf("failed to list subjects: %v", err)
	}
	if data.Projects, err = client.ListProjects(ctx); err != nil {
		t.Fatalf("failed to list projects: %v", err)
	}
	if data.Allocations, err = client.ListAllocations(ctx, q); err != nil {
		t.Fatalf("failed to list allocations: %v", err)
	}
	if data.Leave, err = client.ListLeave(ctx, q); err != nil {
		t.Fatalf("failed to list leave: %v", err)
	}
	if data.Markers, err = client.ListMarkers(ctx, q); err != nil {
		t.Fatalf("failed to list markers: %v", err)
	}
	return data
}

func TestDragCreateAllocationRoundTrip(t *testing.T) {
	stack := openStack(t)
	subjectID := seedPerson(t, stack.store, "Ana")
	projectID := seedProject(t, stack.store, "Atlas")

	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	window := grid.NewDateWindow(start, end, 4)

	data := loadDataset(t, stack.client, start, end)
	overlay := grid.NewOptimisticStore()
	index := data.WithOverlay(overlay).Index()
	ic := grid.NewInteractionController(window, index, true)

	// Drag across March 5 to March 8 on Ana's Atlas lane.
	lane := plan.ProjectLane(subjectID, projectID)
	down := grid.Pointer{X: window.OffsetOfDay(4) + 2, Lane: lane}
	up := grid.Pointer{X: window.OffsetOfDay(7) + 2, Lane: lane}
	if err := ic.PointerDown(down); err != nil {
		t.Fatalf("PointerDown: %v", err)
	}
	ic.PointerMove(up)
	effect := ic.PointerUp(up)

	create, ok := effect.(grid.CreateAllocationEffect)
	if !ok {
		t.Fatalf("effect = %T, want CreateAllocationEffect", effect)
	}

	// The adapter inserts the shadow record, then confirms with the
	// backend.
	record, err := plan.NewAllocation(create.Lane.SubjectID, create.Lane.ProjectID,
		create.Lane.Kind, "Atlas", create.Start, create.End, 5)
	if err != nil {
		t.Fatalf("NewAllocation: %v", err)
	}
	mutationID := overlay.AddAllocation(record)

	saved, warnings, err := stack.client.CreateAllocation(context.Background(), api.AllocationParamsFrom(record))
	if err != nil {
		t.Fatalf("CreateAllocation: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	overlay.CommitAllocation(mutationID, saved)

	// A fresh load drops the committed shadow via reconciliation and
	// shows the server record in the grid.
	data = loadDataset(t, stack.client, start, end)
	overlay.Reconcile(data.Allocations, data.Leave)
	if overlay.Len() != 0 {
		t.Fatalf("overlay.Len() = %d, want 0 after reconcile", overlay.Len())
	}

	index = data.Index()
	got := index.AllocationAt(lane, time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC))
	if got == nil || got.ID != saved.ID {
		t.Fatalf("AllocationAt = %+v, want server record %d", got, saved.ID)
	}
}

func TestLeaveOverlapProducesWarningNotError(t *testing.T) {
	stack := openStack(t)
	subjectID := seedPerson(t, stack.store, "Ben")
	projectID := seedProject(t, stack.store, "Borealis")
	ctx := context.Background()

	leave, err := plan.NewLeaveEntry(subjectID,
		time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewLeaveEntry: %v", err)
	}
	if _, _, err := stack.client.CreateLeave(ctx, api.LeaveParamsFrom(leave)); err != nil {
		t.Fatalf("CreateLeave: %v", err)
	}

	record, err := plan.NewAllocation(subjectID, projectID, plan.AllocationProject, "Borealis",
		time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC), 5)
	if err != nil {
		t.Fatalf("NewAllocation: %v", err)
	}

	saved, warnings, err := stack.client.CreateAllocation(ctx, api.AllocationParamsFrom(record))
	if err != nil {
		t.Fatalf("overlapping leave must not block the write: %v", err)
	}
	if saved.ID == 0 {
		t.Fatal("expected the allocation to be persisted")
	}
	if len(warnings) == 0 {
		t.Fatal("expected a leave overlap warning")
	}
}

func TestMoveRejectedByValidation(t *testing.T) {
	stack := openStack(t)
	subjectID := seedPerson(t, stack.store, "Cara")
	projectID := seedProject(t, stack.store, "Cyclone")
	ctx := context.Background()

	record, err := plan.NewAllocation(subjectID, projectID, plan.AllocationProject, "Cyclone",
		time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC), 5)
	if err != nil {
		t.Fatalf("NewAllocation: %v", err)
	}
	saved, _, err := stack.client.CreateAllocation(ctx, api.AllocationParamsFrom(record))
	if err != nil {
		t.Fatalf("CreateAllocation: %v", err)
	}

	// Rewriting the range end-before-start must come back as a
	// validation error, leaving the stored record untouched.
	bad := *saved
	bad.StartDate = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	bad.EndDate = time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	_, _, err = stack.client.UpdateAllocation(ctx, bad.ID, api.AllocationParamsFrom(&bad))
	if err == nil {
		t.Fatal("expected a validation error")
	}

	data := loadDataset(t, stack.client,
		time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC))
	got := data.Index().AllocationByID(saved.ID)
	if got == nil || !got.StartDate.Equal(saved.StartDate) {
		t.Fatalf("stored record changed after rejected update: %+v", got)
	}
}
