package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/domain"
)

type noticeEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleEndMeeting is the explicit host-initiated termination. Unlike a
// disconnect it clears the pending queue immediately and tears the room
// down for every member at once.
func (ctl *Controller) handleEndMeeting(id domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad end-meeting payload")
		return
	}

	members, ok := ctl.Coord.EndMeeting(id, domain.RoomID(p.RoomID))
	if !ok {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("room", p.RoomID).Msg("end-meeting from non-host ignored")
		return
	}
	notice := noticeEvent{EvtEndMeeting, "Host has ended the session."}
	for _, m := range members {
		ctl.sendTo(m, notice)
	}
}

// onDisconnect reacts to the transport closing. It is a first-class
// lifecycle event, not an error: remaining members get a departure
// notice, and a departing host ends the session for everyone.
func (ctl *Controller) onDisconnect(id domain.ConnID) {
	p, _ := ctl.Coord.Registry.Participant(id)
	ctl.Coord.Registry.Cancel(id)

	for _, dep := range ctl.Coord.Leave(id) {
		ev := struct {
			Type         string        `json:"type"`
			ConnectionID domain.ConnID `json:"connectionId"`
			DisplayName  string        `json:"displayName"`
			IsHost       bool          `json:"isHost"`
		}{EvtDisconnected, id, dep.DisplayName, dep.WasHost}
		ctl.broadcastRoom(dep.RoomID, ev)

		if dep.WasHost {
			ctl.broadcastRoom(dep.RoomID, noticeEvent{EvtEndMeeting, "Host has left the session."})
		}
	}

	if p != nil {
		log.Info().Str("module", "signal").Str("conn", string(id)).Str("name", p.DisplayName).Msg("participant disconnected")
	}
}
