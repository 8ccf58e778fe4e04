package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/domain"
)

// Room is one live collaboration session: the host binding, the member
// set and the ordered pending-request queue. Every field is guarded by
// the room's own mutex; no lock ever spans more than one room.
type Room struct {
	id domain.RoomID

	mu      sync.RWMutex
	host    *domain.HostRef
	members map[domain.ConnID]struct{}
	pending []*domain.JoinRequest
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		id:      id,
		members: make(map[domain.ConnID]struct{}),
	}
}

func (r *Room) ID() domain.RoomID { return r.id }

// BindHost sets the room's host, overwriting any stale prior binding.
// Last host-claim wins: a stale binding implies the previous host
// already disconnected.
func (r *Room) BindHost(ref domain.HostRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.host != nil && r.host.ConnID != ref.ConnID {
		log.Warn().Str("module", "app.room").Str("room", string(r.id)).Str("old", string(r.host.ConnID)).Str("new", string(ref.ConnID)).Msg("overwriting stale host binding")
	}
	r.host = &ref
}

func (r *Room) Host() (domain.HostRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.host == nil {
		return domain.HostRef{}, false
	}
	return *r.host, true
}

func (r *Room) IsHost(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host != nil && r.host.ConnID == id
}

func (r *Room) ClearHost() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.host = nil
}

func (r *Room) AddMember(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[id] = struct{}{}
	log.Info().Str("module", "app.room").Str("room", string(r.id)).Str("conn", string(id)).Msg("member added")
}

func (r *Room) RemoveMember(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, id)
}

func (r *Room) HasMember(id domain.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

func (r *Room) Members() []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ConnID, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	return out
}

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Enqueue appends a pending join request. Idempotent per connection:
// a second request while one is pending is absorbed, not queued twice.
func (r *Room) Enqueue(req *domain.JoinRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pending {
		if p.ConnID == req.ConnID {
			return false
		}
	}
	r.pending = append(r.pending, req)
	return true
}

// TakePending removes and returns the pending request for the given
// connection. Absence means the request was already resolved or the
// requester disconnected; callers treat that as a no-op.
func (r *Room) TakePending(id domain.ConnID) (*domain.JoinRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pending {
		if p.ConnID == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// PurgePending drops any request keyed by the connection. A disconnected
// requester must never remain approvable.
func (r *Room) PurgePending(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.ConnID != id {
			kept = append(kept, p)
		}
	}
	r.pending = kept
}

// ExpirePending removes and returns every request enqueued before cutoff.
func (r *Room) ExpirePending(cutoff time.Time) []*domain.JoinRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []*domain.JoinRequest
	kept := r.pending[:0]
	for _, p := range r.pending {
		if p.EnqueuedAt.Before(cutoff) {
			expired = append(expired, p)
		} else {
			kept = append(kept, p)
		}
	}
	r.pending = kept
	return expired
}

// ClearPending empties the queue, returning what was dropped.
func (r *Room) ClearPending() []*domain.JoinRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := r.pending
	r.pending = nil
	return dropped
}

func (r *Room) PendingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// Idle reports whether the room holds no state worth keeping.
func (r *Room) Idle() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.host == nil && len(r.members) == 0 && len(r.pending) == 0
}
