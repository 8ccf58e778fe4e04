package signal

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/app"
)

// RunJanitor periodically expires pending join requests that never got a
// host decision and reaps rooms left with no host, no members and no
// queue. Expired requesters are told instead of waiting forever.
func (ctl *Controller) RunJanitor(ctx context.Context) {
	interval := ctl.Cfg.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, req := range ctl.Coord.SweepExpired(now) {
				ctl.sendTo(req.ConnID, rejectedEvent{EvtJoinRejected, app.ReasonRequestExpired})
				log.Info().Str("module", "signal.janitor").Str("conn", string(req.ConnID)).Str("room", string(req.RoomID)).Msg("pending join request expired")
			}
			for _, id := range ctl.Coord.ReapIdleRooms() {
				log.Info().Str("module", "signal.janitor").Str("room", string(id)).Msg("reaped idle room")
			}
		}
	}
}
