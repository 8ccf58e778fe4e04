package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/app"
	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

type joinedEvent struct {
	Type         string           `json:"type"`
	Members      []core.MemberDTO `json:"members"`
	DisplayName  string           `json:"displayName"`
	ConnectionID domain.ConnID    `json:"connectionId"`
	IsHost       bool             `json:"isHost"`
}

type rejectedEvent struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (ctl *Controller) handleJoinRequest(id domain.ConnID, c core.SignalConnection, data []byte) {
	var p struct {
		Type           string `json:"type"`
		RoomID         string `json:"roomId"`
		DisplayName    string `json:"displayName"`
		ExternalUserID string `json:"externalUserId"`
		IsHost         bool   `json:"isHost"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("bad join-request payload")
		return
	}
	if len(p.DisplayName) > domain.MaxDisplayNameLen {
		p.DisplayName = p.DisplayName[:domain.MaxDisplayNameLen]
	}
	roomID := domain.RoomID(p.RoomID)

	out := ctl.Coord.RequestJoin(id, roomID, p.DisplayName, p.ExternalUserID, p.IsHost)
	switch out.Decision {
	case app.JoinAutoApproved:
		ctl.notifyJoined(out.Members, p.DisplayName, id, true)
		ctl.sendJSON(c, struct {
			Type   string `json:"type"`
			RoomID string `json:"roomId"`
		}{EvtJoinApproved, p.RoomID})

	case app.JoinPending:
		fwd := struct {
			Type           string        `json:"type"`
			DisplayName    string        `json:"displayName"`
			ExternalUserID string        `json:"externalUserId"`
			ConnectionID   domain.ConnID `json:"connectionId"`
		}{EvtJoinRequest, p.DisplayName, p.ExternalUserID, id}
		// Targeted delivery to the host, plus a room broadcast in case the
		// host's transport membership drifted since it claimed the room.
		ctl.sendTo(out.Host, fwd)
		ctl.broadcastRoom(roomID, fwd, id)
		ctl.sendJSON(c, struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}{EvtRequestReceived, "Your join request has been sent to the host"})

	case app.JoinRejected:
		ctl.sendJSON(c, rejectedEvent{EvtJoinRejected, out.Reason})
	}
}

func (ctl *Controller) handleJoinApproved(id domain.ConnID, data []byte) {
	var p struct {
		Type         string        `json:"type"`
		RoomID       string        `json:"roomId"`
		ConnectionID domain.ConnID `json:"connectionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad join-approved payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)
	if !ctl.senderIsHost(id, roomID) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Msg("join-approved from non-host ignored")
		return
	}

	res := ctl.Coord.Approve(roomID, p.ConnectionID)
	if !res.OK {
		// Already resolved or the requester vanished; benign either way.
		return
	}
	ctl.notifyJoined(res.Members, res.Request.DisplayName, p.ConnectionID, false)
	ctl.sendTo(p.ConnectionID, struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}{EvtJoinApproved, p.RoomID})
}

func (ctl *Controller) handleJoinRejected(id domain.ConnID, data []byte) {
	var p struct {
		Type         string        `json:"type"`
		RoomID       string        `json:"roomId"`
		ConnectionID domain.ConnID `json:"connectionId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad join-rejected payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)
	if !ctl.senderIsHost(id, roomID) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Msg("join-rejected from non-host ignored")
		return
	}

	if _, ok := ctl.Coord.Reject(roomID, p.ConnectionID); ok {
		ctl.sendTo(p.ConnectionID, rejectedEvent{EvtJoinRejected, app.ReasonHostDeclined})
	}
}

// handleJoin is the legacy explicit room-join used post-approval. The
// membership notification runs as a deferred task so transport-level group
// state has settled by the time the member list is snapshotted.
func (ctl *Controller) handleJoin(id domain.ConnID, data []byte) {
	var p struct {
		Type           string `json:"type"`
		RoomID         string `json:"roomId"`
		DisplayName    string `json:"displayName"`
		ExternalUserID string `json:"externalUserId"`
		IsHost         bool   `json:"isHost"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("bad join payload")
		return
	}
	if len(p.DisplayName) > domain.MaxDisplayNameLen {
		p.DisplayName = p.DisplayName[:domain.MaxDisplayNameLen]
	}
	roomID := domain.RoomID(p.RoomID)
	ctl.Coord.Join(id, roomID, p.DisplayName, p.ExternalUserID, p.IsHost)

	ctl.Coord.Tasks.Schedule(app.TaskKey{ConnID: id, RoomID: roomID}, ctl.Cfg.JoinVerifyDelay, func() {
		ctl.Coord.EnsureMember(id, roomID)
		room, ok := ctl.Coord.Rooms.Get(roomID)
		if !ok {
			return
		}
		ctl.notifyJoined(ctl.Coord.MembersSnapshot(room), p.DisplayName, id, p.IsHost)
	})
}

// notifyJoined delivers the refreshed member list to every member,
// including the one that just joined.
func (ctl *Controller) notifyJoined(members []core.MemberDTO, displayName string, joined domain.ConnID, isHost bool) {
	ev := joinedEvent{
		Type:         EvtJoined,
		Members:      members,
		DisplayName:  displayName,
		ConnectionID: joined,
		IsHost:       isHost,
	}
	for _, m := range members {
		ctl.sendTo(m.ConnectionID, ev)
	}
}

func (ctl *Controller) senderIsHost(id domain.ConnID, roomID domain.RoomID) bool {
	room, ok := ctl.Coord.Rooms.Get(roomID)
	return ok && room.IsHost(id)
}
