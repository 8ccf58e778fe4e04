package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

// User-visible rejection reasons.
const (
	ReasonNoHost         = "No host is present in this room. Please try again later."
	ReasonHostDeclined   = "Host declined your request to join the room."
	ReasonRequestExpired = "Your join request timed out. Please try again."
)

// JoinDecision classifies the outcome of a join request.
type JoinDecision int

const (
	JoinAutoApproved JoinDecision = iota
	JoinPending
	JoinRejected
)

// JoinOutcome carries everything the transport layer needs to notify the
// parties of an admission transition.
type JoinOutcome struct {
	Decision JoinDecision
	Reason   string           // set when Decision == JoinRejected
	Host     domain.ConnID    // set when Decision == JoinPending
	Members  []core.MemberDTO // set when Decision == JoinAutoApproved
}

// ApproveResult is the outcome of a host approval.
type ApproveResult struct {
	OK      bool
	Request *domain.JoinRequest
	Members []core.MemberDTO
}

// Departure describes one room a disconnecting connection left behind.
type Departure struct {
	RoomID      domain.RoomID
	DisplayName string
	WasHost     bool
}

// Coordinator is the session coordinator state: connection registry, room
// directory and deferred tasks. It owns every admission transition and
// holds no transport concerns, so it can be driven directly in tests.
type Coordinator struct {
	Registry *Registry
	Rooms    *Directory
	Tasks    *Scheduler

	// PendingTTL bounds how long a join request may wait for a host
	// decision; zero disables expiry.
	PendingTTL time.Duration
}

func NewCoordinator(pendingTTL time.Duration) *Coordinator {
	return &Coordinator{
		Registry:   NewRegistry(),
		Rooms:      NewDirectory(),
		Tasks:      NewScheduler(),
		PendingTTL: pendingTTL,
	}
}

// RequestJoin runs the admission transition for an incoming join request.
//
// A host claim is auto-approved: the participant is bound, the room's host
// binding is overwritten (last claim wins) and membership takes effect at
// once. A participant claim is queued for the current host, or rejected
// outright when the room has no bound host.
func (c *Coordinator) RequestJoin(id domain.ConnID, roomID domain.RoomID, displayName, externalUserID string, isHost bool) JoinOutcome {
	if isHost {
		c.relinquish(id)
		c.Registry.BindParticipant(id, displayName, externalUserID, true)
		room := c.Rooms.GetOrCreate(roomID)
		room.BindHost(domain.HostRef{ConnID: id, DisplayName: displayName, ExternalUserID: externalUserID})
		room.AddMember(id)
		log.Info().Str("module", "app.admission").Str("room", string(roomID)).Str("name", displayName).Msg("host joined")
		return JoinOutcome{Decision: JoinAutoApproved, Members: c.MembersSnapshot(room)}
	}

	room, ok := c.Rooms.Get(roomID)
	if !ok {
		return JoinOutcome{Decision: JoinRejected, Reason: ReasonNoHost}
	}
	host, ok := room.Host()
	if !ok {
		return JoinOutcome{Decision: JoinRejected, Reason: ReasonNoHost}
	}

	queued := room.Enqueue(&domain.JoinRequest{
		ConnID:         id,
		DisplayName:    displayName,
		ExternalUserID: externalUserID,
		RoomID:         roomID,
		EnqueuedAt:     time.Now(),
	})
	if !queued {
		log.Debug().Str("module", "app.admission").Str("conn", string(id)).Str("room", string(roomID)).Msg("duplicate join request absorbed")
	}
	return JoinOutcome{Decision: JoinPending, Host: host.ConnID}
}

// Approve resolves a pending request into membership. Stale approvals
// (already resolved, requester gone, or the requester joined another room
// in the meantime) degrade to a no-op; the discrepancy is benign.
func (c *Coordinator) Approve(roomID domain.RoomID, id domain.ConnID) ApproveResult {
	room, ok := c.Rooms.Get(roomID)
	if !ok {
		return ApproveResult{}
	}
	req, ok := room.TakePending(id)
	if !ok {
		return ApproveResult{}
	}
	if others := c.Rooms.RoomsOf(id); len(others) > 0 {
		log.Warn().Str("module", "app.admission").Str("conn", string(id)).Str("room", string(roomID)).Msg("approval refused: already a member elsewhere")
		return ApproveResult{}
	}
	c.Registry.BindParticipant(id, req.DisplayName, req.ExternalUserID, false)
	room.AddMember(id)
	log.Info().Str("module", "app.admission").Str("room", string(roomID)).Str("name", req.DisplayName).Msg("join approved")
	return ApproveResult{OK: true, Request: req, Members: c.MembersSnapshot(room)}
}

// Reject discards a pending request. Returns false when nothing was
// pending for the connection, which callers silently ignore.
func (c *Coordinator) Reject(roomID domain.RoomID, id domain.ConnID) (*domain.JoinRequest, bool) {
	room, ok := c.Rooms.Get(roomID)
	if !ok {
		return nil, false
	}
	req, ok := room.TakePending(id)
	if ok {
		log.Info().Str("module", "app.admission").Str("room", string(roomID)).Str("name", req.DisplayName).Msg("join rejected by host")
	}
	return req, ok
}

// Join is the legacy explicit room-join used post-approval. Any prior
// membership is relinquished first so a connection never sits in two
// member sets.
func (c *Coordinator) Join(id domain.ConnID, roomID domain.RoomID, displayName, externalUserID string, isHost bool) []core.MemberDTO {
	c.relinquish(id)
	c.Registry.BindParticipant(id, displayName, externalUserID, isHost)
	room := c.Rooms.GetOrCreate(roomID)
	if isHost {
		room.BindHost(domain.HostRef{ConnID: id, DisplayName: displayName, ExternalUserID: externalUserID})
	}
	room.AddMember(id)
	return c.MembersSnapshot(room)
}

// EnsureMember re-adds a registered participant whose transport-level
// membership drifted from the directory (e.g. after a reconnect). Returns
// true when a corrective re-join actually happened.
func (c *Coordinator) EnsureMember(id domain.ConnID, roomID domain.RoomID) bool {
	if _, ok := c.Registry.Participant(id); !ok {
		return false
	}
	room := c.Rooms.GetOrCreate(roomID)
	if room.HasMember(id) {
		return false
	}
	log.Warn().Str("module", "app.admission").Str("conn", string(id)).Str("room", string(roomID)).Msg("membership drift, rejoining")
	room.AddMember(id)
	return true
}

// Leave tears down everything the connection held: membership in every
// room it belonged to, the host binding if it carried one, pending
// requests it had queued anywhere, scheduled tasks and the registry entry.
func (c *Coordinator) Leave(id domain.ConnID) []Departure {
	p, _ := c.Registry.Participant(id)

	var out []Departure
	for _, room := range c.Rooms.All() {
		wasMember := room.HasMember(id)
		wasHost := room.IsHost(id)
		room.RemoveMember(id)
		room.PurgePending(id)
		if wasHost {
			room.ClearHost()
		}
		if wasMember || wasHost {
			dep := Departure{RoomID: room.ID(), WasHost: wasHost}
			if p != nil {
				dep.DisplayName = p.DisplayName
			}
			out = append(out, dep)
		}
	}

	c.Tasks.CancelConn(id)
	c.Registry.Unbind(id)
	return out
}

// EndMeeting is the host-initiated termination: it clears the host
// binding, the member set and the pending queue at once, without waiting
// for a transport disconnect. Returns the members that must be notified,
// and false when the caller is not the room's bound host.
func (c *Coordinator) EndMeeting(id domain.ConnID, roomID domain.RoomID) ([]domain.ConnID, bool) {
	room, ok := c.Rooms.Get(roomID)
	if !ok || !room.IsHost(id) {
		return nil, false
	}
	members := room.Members()
	room.ClearHost()
	room.ClearPending()
	for _, m := range members {
		room.RemoveMember(m)
		c.Registry.ClearParticipant(m)
		c.Tasks.Cancel(TaskKey{ConnID: m, RoomID: roomID})
	}
	c.Rooms.Remove(roomID)
	log.Info().Str("module", "app.admission").Str("room", string(roomID)).Int("members", len(members)).Msg("meeting ended by host")
	return members, true
}

// SweepExpired drops pending requests older than PendingTTL across all
// rooms, returning them so the requesters can be told.
func (c *Coordinator) SweepExpired(now time.Time) []*domain.JoinRequest {
	if c.PendingTTL <= 0 {
		return nil
	}
	cutoff := now.Add(-c.PendingTTL)
	var out []*domain.JoinRequest
	for _, room := range c.Rooms.All() {
		out = append(out, room.ExpirePending(cutoff)...)
	}
	return out
}

// ReapIdleRooms removes rooms left with no host, no members and no
// pending requests.
func (c *Coordinator) ReapIdleRooms() []domain.RoomID {
	var out []domain.RoomID
	for _, room := range c.Rooms.All() {
		if room.Idle() {
			c.Rooms.Remove(room.ID())
			out = append(out, room.ID())
		}
	}
	return out
}

// MembersSnapshot resolves the room's member set against the registry.
// Members with no registry entry are skipped rather than invented.
func (c *Coordinator) MembersSnapshot(room *Room) []core.MemberDTO {
	ids := room.Members()
	out := make([]core.MemberDTO, 0, len(ids))
	for _, id := range ids {
		p, ok := c.Registry.Participant(id)
		if !ok {
			continue
		}
		out = append(out, core.MemberDTO{
			ConnectionID:   id,
			DisplayName:    p.DisplayName,
			ExternalUserID: p.ExternalUserID,
			IsHost:         p.IsHost,
		})
	}
	return out
}

// relinquish silently removes the connection from any room it is a
// member of, clearing a host binding it may hold there.
func (c *Coordinator) relinquish(id domain.ConnID) {
	for _, room := range c.Rooms.RoomsOf(id) {
		room.RemoveMember(id)
		if room.IsHost(id) {
			room.ClearHost()
		}
	}
}
