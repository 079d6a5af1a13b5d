// Package team manages workspace-scoped team members, session/call
// assignments, and published time slots.
package team

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zervos/desk/internal/bus"
	"github.com/zervos/desk/internal/model"
	"github.com/zervos/desk/internal/store"
)

// Service persists team data under workspace-scoped keys and publishes
// team-members-updated / timeslots-updated after mutations.
type Service struct {
	kv     store.KV
	bus    *bus.Bus
	logger *zap.Logger

	mu sync.Mutex
}

// NewService creates the team service.
func NewService(kv store.KV, b *bus.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{kv: kv, bus: b, logger: logger}
}

// membersKey resolves the storage key for a workspace. An empty id
// addresses the global, unscoped list.
func membersKey(workspaceID string) string {
	if workspaceID == "" {
		return store.KeyTeamMembers
	}
	return store.ScopedKey(store.KeyTeamMembers, workspaceID)
}

// Members returns the team members of a workspace (or the global list
// for an empty id).
func (s *Service) Members(workspaceID string) []model.TeamMember {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []model.TeamMember
	s.kv.Read(membersKey(workspaceID), &list)
	return list
}

// Add appends a member to the workspace's list. Scoped additions are
// mirrored into the global list so cross-workspace views stay complete.
func (s *Service) Add(workspaceID string, member model.TeamMember) model.TeamMember {
	s.mu.Lock()

	member.ID = uuid.New().String()
	member.CreatedAt = time.Now()

	var scoped []model.TeamMember
	s.kv.Read(membersKey(workspaceID), &scoped)
	scoped = append(scoped, member)
	s.kv.Write(membersKey(workspaceID), scoped)

	if workspaceID != "" {
		var global []model.TeamMember
		s.kv.Read(store.KeyTeamMembers, &global)
		global = append(global, member)
		s.kv.Write(store.KeyTeamMembers, global)
	}

	s.mu.Unlock()

	s.bus.Publish(bus.EventTeamMembersUpdated, scoped)
	return member
}

// Remove deletes a member by id from the workspace's list and the
// global mirror. Unknown ids are no-ops.
func (s *Service) Remove(workspaceID, id string) {
	s.mu.Lock()

	var scoped []model.TeamMember
	s.kv.Read(membersKey(workspaceID), &scoped)
	scoped = removeMember(scoped, id)
	s.kv.Write(membersKey(workspaceID), scoped)

	if workspaceID != "" {
		var global []model.TeamMember
		s.kv.Read(store.KeyTeamMembers, &global)
		s.kv.Write(store.KeyTeamMembers, removeMember(global, id))
	}

	s.mu.Unlock()

	s.bus.Publish(bus.EventTeamMembersUpdated, scoped)
}

// removeMember filters one member out of a list.
func removeMember(list []model.TeamMember, id string) []model.TeamMember {
	out := list[:0]
	for _, m := range list {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// Calls returns the session/call records of a workspace.
func (s *Service) Calls(workspaceID string) []model.SalesCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	var calls []model.SalesCall
	s.kv.Read(store.ScopedKey(store.KeySalesCalls, workspaceID), &calls)
	return calls
}

// SaveCall inserts or replaces a session/call record by id.
func (s *Service) SaveCall(workspaceID string, call model.SalesCall) model.SalesCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	if call.ID == "" {
		call.ID = uuid.New().String()
	}

	key := store.ScopedKey(store.KeySalesCalls, workspaceID)
	var calls []model.SalesCall
	s.kv.Read(key, &calls)

	replaced := false
	for i := range calls {
		if calls[i].ID == call.ID {
			calls[i] = call
			replaced = true
			break
		}
	}
	if !replaced {
		calls = append(calls, call)
	}

	s.kv.Write(key, calls)
	return call
}

// AssignSalesperson adds a member id to a call's assignment list.
// Already-assigned members and unknown calls are no-ops.
func (s *Service) AssignSalesperson(workspaceID, callID, memberID string) {
	s.mutateCall(workspaceID, callID, func(call *model.SalesCall) bool {
		for _, id := range call.AssignedSalespersons {
			if id == memberID {
				return false
			}
		}
		call.AssignedSalespersons = append(call.AssignedSalespersons, memberID)
		return true
	})
}

// UnassignSalesperson removes a member id from a call's assignment list.
func (s *Service) UnassignSalesperson(workspaceID, callID, memberID string) {
	s.mutateCall(workspaceID, callID, func(call *model.SalesCall) bool {
		for i, id := range call.AssignedSalespersons {
			if id == memberID {
				call.AssignedSalespersons = append(
					call.AssignedSalespersons[:i:i],
					call.AssignedSalespersons[i+1:]...,
				)
				return true
			}
		}
		return false
	})
}

// mutateCall applies fn to the matching call and persists when fn
// reports a change.
func (s *Service) mutateCall(workspaceID, callID string, fn func(*model.SalesCall) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.ScopedKey(store.KeySalesCalls, workspaceID)
	var calls []model.SalesCall
	s.kv.Read(key, &calls)

	for i := range calls {
		if calls[i].ID == callID {
			if fn(&calls[i]) {
				s.kv.Write(key, calls)
			}
			return
		}
	}
}

// TimeSlots returns the published slots of a workspace.
func (s *Service) TimeSlots(workspaceID string) []model.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var slots []model.TimeSlot
	s.kv.Read(store.ScopedKey(store.KeyTimeSlots, workspaceID), &slots)
	return slots
}

// SetTimeSlots replaces the published slots of a workspace.
func (s *Service) SetTimeSlots(workspaceID string, slots []model.TimeSlot) {
	s.mu.Lock()
	s.kv.Write(store.ScopedKey(store.KeyTimeSlots, workspaceID), slots)
	s.mu.Unlock()

	s.bus.Publish(bus.EventTimeSlotsUpdated, slots)
}
