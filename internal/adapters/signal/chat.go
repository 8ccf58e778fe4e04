package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/domain"
)

// handleChat serves both chat channels. Messages go to the whole room
// including the sender, so every client renders from the same source of
// truth instead of trusting a local echo.
func (ctl *Controller) handleChat(id domain.ConnID, data []byte, event string) {
	var p struct {
		Type        string `json:"type"`
		RoomID      string `json:"roomId"`
		DisplayName string `json:"displayName"`
		Message     string `json:"message"`
		Timestamp   string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("event", event).Msg("bad chat payload")
		return
	}
	if p.Timestamp == "" {
		p.Timestamp = timestampNow()
	}

	ctl.Coord.EnsureMember(id, domain.RoomID(p.RoomID))

	ctl.broadcastRoom(domain.RoomID(p.RoomID), struct {
		Type        string `json:"type"`
		DisplayName string `json:"displayName"`
		Message     string `json:"message"`
		Timestamp   string `json:"timestamp"`
	}{event, p.DisplayName, p.Message, p.Timestamp})
}
