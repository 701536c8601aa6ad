// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mvilla/crewcal/internal/api"
	"github.com/mvilla/crewcal/internal/grid"
	"github.com/mvilla/crewcal/internal/plan"
)

// requestTimeout bounds every backend call issued from the event loop.
const requestTimeout = 15 * time.Second

// DatasetLoadedMsg is sent when a full window load completes.
type DatasetLoadedMsg struct {
	Data grid.Dataset
}

// RangeLoadedMsg is sent when a pagination load for one edge completes.
// The records cover only the newly added month.
type RangeLoadedMsg struct {
	Edge        grid.LoadEdge
	Allocations []*plan.Allocation
	Leave       []*plan.LeaveEntry
	Markers     []*plan.Marker
}

// RangeFailedMsg is sent when a pagination load for one edge fails.
// The edge travels with the error so the controller can re-arm it.
type RangeFailedMsg struct {
	Edge grid.LoadEdge
	Err  error
}

// TokenMsg is sent when the anti-forgery handshake completes.
type TokenMsg struct {
	Token string
}

// AllocationSavedMsg is sent when an optimistic allocation create is
// confirmed by the backend.
type AllocationSavedMsg struct {
	MutationID string
	Record     *plan.Allocation
	Warnings   []string
}

// LeaveSavedMsg is sent when an optimistic leave create is confirmed.
type LeaveSavedMsg struct {
	MutationID string
	Record     *plan.LeaveEntry
}

// MutationFailedMsg is sent when an optimistic create fails; the
// mutation id identifies the shadow record to roll back.
type MutationFailedMsg struct {
	MutationID string
	Err        error
}

// RecordUpdatedMsg is sent when a move, resize, or form edit is
// confirmed by the backend.
type RecordUpdatedMsg struct {
	Allocation *plan.Allocation
	Leave      *plan.LeaveEntry
	Warnings   []string
}

// RecordDeletedMsg is sent when a delete is confirmed.
type RecordDeletedMsg struct{}

// MarkerSavedMsg is sent when a marker write is confirmed.
type MarkerSavedMsg struct {
	Record *plan.Marker
}

// ErrMsg is sent when a request fails outside the optimistic flow.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// DebounceTickMsg drives the pagination debounce clock.
type DebounceTickMsg struct{}

// DebounceTick schedules the next pagination check.
func DebounceTick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return DebounceTickMsg{}
	})
}

// FetchToken runs the anti-forgery handshake.
func FetchToken(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		token, err := client.FetchToken(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return TokenMsg{Token: token}
	}
}

// LoadDataset loads everything visible in [start, end]: subjects,
// projects, and the records overlapping the range.
func LoadDataset(client *api.Client, start, end time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		subjects, err := client.ListSubjects(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		projects, err := client.ListProjects(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		q := api.RangeQuery{Start: start, End: end}
		allocations, err := client.ListAllocations(ctx, q)
		if err != nil {
			return ErrMsg{Err: err}
		}
		leave, err := client.ListLeave(ctx, q)
		if err != nil {
			return ErrMsg{Err: err}
		}
		markers, err := client.ListMarkers(ctx, q)
		if err != nil {
			return ErrMsg{Err: err}
		}

		return DatasetLoadedMsg{Data: grid.Dataset{
			Subjects:    subjects,
			Projects:    projects,
			Allocations: allocations,
			Leave:       leave,
			Markers:     markers,
		}}
	}
}

// LoadRange loads the records for one newly added month at an edge.
func LoadRange(client *api.Client, edge grid.LoadEdge, start, end time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		q := api.RangeQuery{Start: start, End: end}
		allocations, err := client.ListAllocations(ctx, q)
		if err != nil {
			return RangeFailedMsg{Edge: edge, Err: err}
		}
		leave, err := client.ListLeave(ctx, q)
		if err != nil {
			return RangeFailedMsg{Edge: edge, Err: err}
		}
		markers, err := client.ListMarkers(ctx, q)
		if err != nil {
			return RangeFailedMsg{Edge: edge, Err: err}
		}

		return RangeLoadedMsg{Edge: edge, Allocations: allocations, Leave: leave, Markers: markers}
	}
}

// CreateAllocation confirms an optimistic allocation create with the
// backend. The mutation id travels with the result so the overlay can
// commit or roll back the matching shadow record.
func CreateAllocation(client *api.Client, mutationID string, a *plan.Allocation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		created, warnings, err := client.CreateAllocation(ctx, api.AllocationParamsFrom(a))
		if err != nil {
			return MutationFailedMsg{MutationID: mutationID, Err: err}
		}
		return AllocationSavedMsg{MutationID: mutationID, Record: created, Warnings: warnings}
	}
}

// CreateLeave confirms an optimistic leave create with the backend.
func CreateLeave(client *api.Client, mutationID string, l *plan.LeaveEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		created, _, err := client.CreateLeave(ctx, api.LeaveParamsFrom(l))
		if err != nil {
			return MutationFailedMsg{MutationID: mutationID, Err: err}
		}
		return LeaveSavedMsg{MutationID: mutationID, Record: created}
	}
}

// UpdateAllocation persists a moved, resized, or form-edited
// allocation.
func UpdateAllocation(client *api.Client, a *plan.Allocation) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated, warnings, err := client.UpdateAllocation(ctx, a.ID, api.AllocationParamsFrom(a))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return RecordUpdatedMsg{Allocation: updated, Warnings: warnings}
	}
}

// UpdateLeave persists a moved or resized leave entry.
func UpdateLeave(client *api.Client, l *plan.LeaveEntry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated, _, err := client.UpdateLeave(ctx, l.ID, api.LeaveParamsFrom(l))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return RecordUpdatedMsg{Leave: updated}
	}
}

// DeleteAllocation removes an allocation.
func DeleteAllocation(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteAllocation(ctx, id); err != nil {
			return ErrMsg{Err: err}
		}
		return RecordDeletedMsg{}
	}
}

// DeleteLeave removes a leave entry.
func DeleteLeave(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteLeave(ctx, id); err != nil {
			return ErrMsg{Err: err}
		}
		return RecordDeletedMsg{}
	}
}

// CreateMarker persists a new marker.
func CreateMarker(client *api.Client, m *plan.Marker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		created, err := client.CreateMarker(ctx, api.MarkerParamsFrom(m))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MarkerSavedMsg{Record: created}
	}
}

// UpdateMarker rewrites an existing marker.
func UpdateMarker(client *api.Client, m *plan.Marker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		updated, err := client.UpdateMarker(ctx, m.ID, api.MarkerParamsFrom(m))
		if err != nil {
			return ErrMsg{Err: err}
		}
		return MarkerSavedMsg{Record: updated}
	}
}

// DeleteMarker removes a marker.
func DeleteMarker(client *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := client.DeleteMarker(ctx, id); err != nil {
			return ErrMsg{Err: err}
		}
		return RecordDeletedMsg{}
	}
}

// Status emits a transient status message.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}
