package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

// handlePingRoom answers a room connectivity probe. If the prober is a
// registered participant whose membership drifted, it is re-joined before
// the probe result is computed.
func (ctl *Controller) handlePingRoom(id domain.ConnID, c core.SignalConnection, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad ping-room payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)

	inRoom := false
	if room, ok := ctl.Coord.Rooms.Get(roomID); ok {
		inRoom = room.HasMember(id)
	}
	if !inRoom {
		ctl.Coord.EnsureMember(id, roomID)
	}

	memberCount := 0
	success := false
	if room, ok := ctl.Coord.Rooms.Get(roomID); ok {
		memberCount = room.MemberCount()
		success = room.HasMember(id)
	}
	ctl.sendJSON(c, struct {
		Type         string        `json:"type"`
		Success      bool          `json:"success"`
		MemberCount  int           `json:"memberCount"`
		ConnectionID domain.ConnID `json:"connectionId"`
	}{EvtPongRoom, success, memberCount, id})
}

// handleRoomCheck is the diagnostic echo: unicast ack to the prober plus
// a room-wide echo excluding it.
func (ctl *Controller) handleRoomCheck(id domain.ConnID, c core.SignalConnection, data []byte) {
	var p struct {
		Type    string `json:"type"`
		RoomID  string `json:"roomId"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad room-check payload")
		return
	}
	roomID := domain.RoomID(p.RoomID)
	ctl.Coord.EnsureMember(id, roomID)

	ts := timestampNow()
	type echo struct {
		Type       string `json:"type"`
		Message    string `json:"message"`
		FromConnID string `json:"fromConnectionId"`
		Timestamp  string `json:"timestamp"`
	}
	ctl.broadcastRoom(roomID, echo{EvtRoomCheckEcho, p.Message, string(id), ts}, id)
	ctl.sendJSON(c, echo{EvtRoomCheckEcho, p.Message + " (echoed back to sender)", "server", ts})
}
