package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/codehuddle/codehuddle/internal/app"
	"github.com/codehuddle/codehuddle/internal/config"
	"github.com/codehuddle/codehuddle/internal/core"
	"github.com/codehuddle/codehuddle/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller is the websocket face of the coordinator. It parses frames,
// drives app.Coordinator transitions and fans resulting events back out.
type Controller struct {
	Coord *app.Coordinator
	Cfg   *config.Config
}

func NewController(coord *app.Coordinator, cfg *config.Config) *Controller {
	return &Controller{Coord: coord, Cfg: cfg}
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request, mints a connection id and starts the
// read/write pumps. One websocket, one ConnID, one pump pair.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	id := domain.ConnID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("new WS connection")

	if ctl.Cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.Cfg.ReadLimit)
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Registry.BindConn(id, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, id, conn)
}

func (ctl *Controller) sendJSON(c core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendTo delivers point-to-point. A vanished target degrades to a no-op.
func (ctl *Controller) sendTo(id domain.ConnID, v any) {
	conn, ok := ctl.Coord.Registry.Conn(id)
	if !ok {
		log.Debug().Str("module", "signal").Str("conn", string(id)).Msg("sendTo: no such connection")
		return
	}
	ctl.sendJSON(conn, v)
}

// broadcastRoom fans a payload out to every member of the room, minus any
// excluded senders. Delivery is fire-and-forget.
func (ctl *Controller) broadcastRoom(roomID domain.RoomID, v any, exclude ...domain.ConnID) {
	room, ok := ctl.Coord.Rooms.Get(roomID)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	sent := 0
	for _, id := range room.Members() {
		if excluded(id, exclude) {
			continue
		}
		if conn, ok := ctl.Coord.Registry.Conn(id); ok {
			if err := conn.TrySend(b); err == nil {
				sent++
			}
		}
	}
	log.Debug().Str("module", "signal").Str("room", string(roomID)).Int("sent_to", sent).Msg("broadcast")
}

func excluded(id domain.ConnID, exclude []domain.ConnID) bool {
	for _, e := range exclude {
		if e == id {
			return true
		}
	}
	return false
}

func timestampNow() string {
	return time.Now().UTC().Format(time.RFC3339)
}
