package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"cosync/internal/domain"
)

const writeWait = 5 * time.Second

// Options are the transport knobs; zero values fall back to defaults
// matching the shipped config.
type Options struct {
	ReadLimit  int64
	SendQueue  int
	PingPeriod time.Duration
}

func (o *Options) fill() {
	if o.ReadLimit == 0 {
		o.ReadLimit = 1 << 20
	}
	if o.SendQueue == 0 {
		o.SendQueue = 64
	}
	if o.PingPeriod == 0 {
		o.PingPeriod = 54 * time.Second
	}
}

// Server upgrades HTTP requests into hub connections and runs the
// per-connection pumps.
type Server struct {
	hub      *Hub
	opts     Options
	upgrader websocket.Upgrader
}

func NewServer(hub *Hub, opts Options) *Server {
	opts.fill()
	return &Server{
		hub:  hub,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handle is the WS endpoint. Each upgrade mints a fresh connection id;
// ids are never reused across sessions.
func (s *Server) Handle(c *gin.Context) {
	wsc, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.server").Msg("upgrade failed")
		return
	}

	id := domain.ConnID(uuid.NewString())
	conn := newWsConn(id, wsc, s.opts.SendQueue)
	log.Info().Str("module", "ws.server").Str("conn", string(id)).Msg("new connection")

	s.hub.Register(conn)
	go s.writePump(conn)
	s.readPump(conn)
}

func (s *Server) readPump(c *wsConn) {
	defer func() {
		s.hub.Disconnected(c.id)
		c.Close()
		log.Info().Str("module", "ws.server").Str("conn", string(c.id)).Msg("read pump closing")
	}()

	pongWait := 2 * s.opts.PingPeriod
	c.conn.SetReadLimit(s.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "ws.server").Str("conn", string(c.id)).Msg("read error")
			}
			return
		}
		s.hub.Inbound(c.id, data)
	}
}

func (s *Server) writePump(c *wsConn) {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "ws.server").Str("conn", string(c.id)).Msg("write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
