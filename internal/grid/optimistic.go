package grid

import (
	"github.com/google/uuid"

	"github.com/mvilla/crewcal/internal/plan"
)

// MutationState tracks one in-flight optimistic mutation.
type MutationState int

const (
	MutationPending MutationState = iota
	MutationCommitted
	MutationFailed
)

// OptimisticStore holds client-only shadow records created immediately
// on user action, before the server has confirmed them. Each record is
// keyed by a generated mutation id; on success it is replaced by (or
// reconciled against) the server record, on failure it is removed.
// Server snapshots are never edited in place; the overlay keeps renders
// free of torn reads.
type OptimisticStore struct {
	allocations map[string]*plan.Allocation
	leave       map[string]*plan.LeaveEntry
	nextTempID  int64
	newID       func() string
}

// NewOptimisticStore creates an empty overlay.
func NewOptimisticStore() *OptimisticStore {
	return &OptimisticStore{
		allocations: make(map[string]*plan.Allocation),
		leave:       make(map[string]*plan.LeaveEntry),
		nextTempID:  -1,
		newID:       uuid.NewString,
	}
}

// AddAllocation inserts an optimistic allocation and returns the
// mutation id used to commit or roll it back. The record receives a
// negative temporary id so it can live alongside server records.
func (s *OptimisticStore) AddAllocation(a *plan.Allocation) string {
	id := s.newID()
	shadow := *a
	shadow.ID = s.nextTempID
	s.nextTempID--
	s.allocations[id] = &shadow
	return id
}

// AddLeave inserts an optimistic leave entry and returns its mutation id.
func (s *OptimisticStore) AddLeave(l *plan.LeaveEntry) string {
	id := s.newID()
	shadow := *l
	shadow.ID = s.nextTempID
	s.nextTempID--
	s.leave[id] = &shadow
	return id
}

// Rollback removes the record for a failed mutation.
func (s *OptimisticStore) Rollback(mutationID string) {
	delete(s.allocations, mutationID)
	delete(s.leave, mutationID)
}

// CommitAllocation replaces the shadow record with the server record.
// The shadow stays visible (under the server id) until the next full
// refresh reconciles it away.
func (s *OptimisticStore) CommitAllocation(mutationID string, server *plan.Allocation) {
	if _, ok := s.allocations[mutationID]; !ok {
		return
	}
	shadow := *server
	s.allocations[mutationID] = &shadow
}

// CommitLeave replaces the shadow leave entry with the server record.
func (s *OptimisticStore) CommitLeave(mutationID string, server *plan.LeaveEntry) {
	if _, ok := s.leave[mutationID]; !ok {
		return
	}
	shadow := *server
	s.leave[mutationID] = &shadow
}

// Allocations returns the live shadow allocations.
func (s *OptimisticStore) Allocations() []*plan.Allocation {
	result := make([]*plan.Allocation, 0, len(s.allocations))
	for _, a := range s.allocations {
		result = append(result, a)
	}
	return result
}

// Leave returns the live shadow leave entries.
func (s *OptimisticStore) Leave() []*plan.LeaveEntry {
	result := make([]*plan.LeaveEntry, 0, len(s.leave))
	for _, l := range s.leave {
		result = append(result, l)
	}
	return result
}

// Len returns the number of live shadow records.
func (s *OptimisticStore) Len() int {
	return len(s.allocations) + len(s.leave)
}

// Reconcile drops every shadow record the refreshed server data now
// covers. Allocations match by id or by lane plus date range; leave
// matches by subject plus date range. A superseding full refresh is
// authoritative, so matched shadows simply disappear.
func (s *OptimisticStore) Reconcile(allocations []*plan.Allocation, leave []*plan.LeaveEntry) {
	for mutID, shadow := range s.allocations {
		for _, server := range allocations {
			if shadow.ID == server.ID ||
				(shadow.Lane() == server.Lane() &&
					shadow.StartDate.Equal(server.StartDate) &&
					shadow.EndDate.Equal(server.EndDate)) {
				delete(s.allocations, mutID)
				break
			}
		}
	}
	for mutID, shadow := range s.leave {
		for _, server := range leave {
			if shadow.ID == server.ID || shadow.SameRange(server) {
				delete(s.leave, mutID)
				break
			}
		}
	}
}
