// Package room holds the membership registry: the authoritative mapping
// from live connections to their room and user state. Rooms themselves
// are never materialized; a room is the set of members sharing a roomId
// and vanishes when the last one leaves.
package room

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"cosync/internal/domain"
)

// Registry is the only shared mutable state in the server. All mutation
// happens on the hub goroutine; the lock exists so the REST surface and
// tests can read snapshots from other goroutines.
type Registry struct {
	mu      sync.RWMutex
	members map[domain.ConnID]*domain.Member
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[domain.ConnID]*domain.Member)}
}

// Add registers a member. At most one member per connection id; a second
// Add for the same id replaces the record.
func (r *Registry) Add(m domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := m
	r.members[m.ConnID] = &cp
	log.Debug().Str("module", "room.registry").Str("conn", string(m.ConnID)).Str("room", m.RoomID).Str("username", m.Username).Msg("member added")
}

// Remove deletes the member for a connection and returns the removed
// record. A miss is not an error: the connection already departed.
func (r *Registry) Remove(id domain.ConnID) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return domain.Member{}, false
	}
	delete(r.members, id)
	log.Debug().Str("module", "room.registry").Str("conn", string(id)).Str("room", m.RoomID).Msg("member removed")
	return *m, true
}

// Find returns a copy of the member for a connection. Callers must treat
// a miss as "connection already departed" and no-op silently.
func (r *Registry) Find(id domain.ConnID) (domain.Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[id]
	if !ok {
		return domain.Member{}, false
	}
	return *m, true
}

// ListByRoom returns copies of every member currently in the room.
// An unknown (or empty) roomID yields an empty slice.
func (r *Registry) ListByRoom(roomID string) []domain.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := lo.Values(r.members)
	inRoom := lo.Filter(all, func(m *domain.Member, _ int) bool {
		return m.RoomID == roomID
	})
	return lo.Map(inRoom, func(m *domain.Member, _ int) domain.Member {
		return *m
	})
}

// Update applies a patch to the member record in place and returns the
// updated copy. The patch runs under the registry lock; it must not
// block or call back into the registry.
func (r *Registry) Update(id domain.ConnID, apply func(*domain.Member)) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return domain.Member{}, false
	}
	apply(m)
	return *m, true
}

// Len reports the number of registered members across all rooms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
