// Package adapters bridges the room core to its I/O: the WebSocket
// transport and the HTTP surface.
package adapters

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/clouddice/dice-server/internal/config"
	"github.com/clouddice/dice-server/internal/core"
	"github.com/clouddice/dice-server/internal/domain"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	sendBuffer = 32
)

var ErrBackpressure = errors.New("send buffer full")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn adapts a gorilla connection to core.Sender. TrySend never
// blocks; a full buffer drops the frame and reports backpressure.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame
	once sync.Once
}

func (c *wsConn) TrySend(f core.Frame) error {
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// WSController upgrades HTTP requests into room sessions and runs their
// read/write pumps.
type WSController struct {
	Room *core.Room
	Cfg  *config.Config
}

func NewWSController(room *core.Room, cfg *config.Config) *WSController {
	return &WSController{Room: room, Cfg: cfg}
}

// HandleWS performs the handshake, mints the connection identity and
// attaches the session to the room. The identity lives exactly as long
// as the connection.
func (ctl *WSController) HandleWS(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Str("module", "adapters.ws").Err(err).Msg("ws upgrade")
		return
	}

	id := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "adapters.ws").Str("conn", string(id)).Str("remote", c.Request.RemoteAddr).Msg("new WS connection")

	ws.SetReadLimit(ctl.Cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, sendBuffer),
	}

	sess := core.NewSession(id, ctl.Room, conn)
	ctl.Room.Attach(id, conn)

	connCtx, cancel := context.WithCancel(ctx)
	go ctl.writePump(connCtx, conn)
	go ctl.readPump(connCtx, cancel, sess, conn)
}

func (ctl *WSController) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Warn().Str("module", "adapters.ws").Err(err).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn().Str("module", "adapters.ws").Err(err).Msg("writePump write")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump owns the connection lifecycle: any read failure or context
// cancellation ends the session, which removes the user and broadcasts
// the departure.
func (ctl *WSController) readPump(ctx context.Context, cancel context.CancelFunc, sess *core.Session, c *wsConn) {
	defer func() {
		sess.Disconnect()
		cancel()
		c.Close()
		log.Info().Str("module", "adapters.ws").Str("conn", string(sess.ID())).Msg("readPump closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Str("module", "adapters.ws").Str("conn", string(sess.ID())).Err(err).Msg("readPump read")
				}
				return
			}
			sess.Handle(data)
		}
	}
}
