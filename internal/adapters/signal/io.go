package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.onDisconnect(id)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				return
			}
			ctl.dispatch(id, c, data)
		}
	}
}

func (ctl *Controller) dispatch(id domain.ConnID, c core.SignalConnection, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case EvtJoinRequest:
		ctl.handleJoinRequest(id, c, data)
	case EvtJoinApproved:
		ctl.handleJoinApproved(id, data)
	case EvtJoinRejected:
		ctl.handleJoinRejected(id, data)
	case EvtJoin:
		ctl.handleJoin(id, data)
	case EvtCodeChange:
		ctl.handleCodeChange(id, data)
	case EvtSyncCode:
		ctl.handleSyncCode(id, data)
	case EvtSyncStdin:
		ctl.handleSyncStdin(id, data)
	case EvtChatMessage:
		ctl.handleChat(id, data, EvtChatMessage)
	case EvtGroupMessage:
		ctl.handleChat(id, data, EvtGroupMessage)
	case EvtEndMeeting:
		ctl.handleEndMeeting(id, data)
	case EvtPingRoom:
		ctl.handlePingRoom(id, c, data)
	case EvtRoomCheck:
		ctl.handleRoomCheck(id, c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}
