package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/domain"
)

type codeEvent struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// handleCodeChange relays a full-buffer replacement to everyone else in
// the room. Last write wins; the payload is opaque to the coordinator.
func (ctl *Controller) handleCodeChange(id domain.ConnID, data []byte) {
	var p struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		Code   string `json:"code"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad code-change payload")
		return
	}
	ctl.broadcastRoom(domain.RoomID(p.RoomID), codeEvent{EvtCodeChange, p.Code}, id)
}

// handleSyncCode pushes a full snapshot at one connection, used to
// bootstrap a late joiner without any persistent storage.
func (ctl *Controller) handleSyncCode(id domain.ConnID, data []byte) {
	var p struct {
		Type         string        `json:"type"`
		ConnectionID domain.ConnID `json:"connectionId"`
		Code         string        `json:"code"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad sync-code payload")
		return
	}
	ctl.sendTo(p.ConnectionID, codeEvent{EvtCodeChange, p.Code})
}

func (ctl *Controller) handleSyncStdin(id domain.ConnID, data []byte) {
	var p struct {
		Type       string `json:"type"`
		RoomID     string `json:"roomId"`
		StdinInput string `json:"stdinInput"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Str("module", "signal").Msg("bad sync-stdin payload")
		return
	}
	ctl.broadcastRoom(domain.RoomID(p.RoomID), struct {
		Type       string `json:"type"`
		StdinInput string `json:"stdinInput"`
	}{EvtSyncStdin, p.StdinInput}, id)
}
