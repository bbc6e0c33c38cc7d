package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voicerooms/internal/app/orch"
	"github.com/dkeye/voicerooms/internal/config"
	"github.com/dkeye/voicerooms/internal/core"
)

// ClientTokenKey is the gin context key holding the browser's client token.
const ClientTokenKey = "client_token"

type Settings struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
	RateLimit    int
	RateInterval time.Duration
}

func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		PongWait:     cfg.PongWait,
		WriteWait:    cfg.WriteWait,
		SendBuffer:   cfg.SendBuffer,
		RateLimit:    cfg.RateLimit,
		RateInterval: cfg.RateInterval,
	}
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	settings Settings
	limiter  *RoomRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, s Settings) *SignalWSController {
	return &SignalWSController{
		Orch:     o,
		settings: s,
		limiter:  NewRoomRateLimiter(s.RateLimit, s.RateInterval),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn is the core.SignalConnection of one browser. Only the write
// pump touches the socket for writing; Close hands it the end of the queue.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump drains what is queued,
// writes a close frame and then drops the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// HandleSignal upgrades the request and starts the connection pumps. ctx is
// the server's root context; the request context ends with this handler.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString(ClientTokenKey)
	profile := LoadProfile(c)

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.settings.SendBuffer)
	ctx, cancel := context.WithCancel(ctx)
	sid := ctl.Orch.Connect(conn, cancel)
	log.Info().
		Str("module", "signal").
		Str("sid", string(sid)).
		Str("client_token", token).
		Str("remote", c.ClientIP()).
		Msg("new WS connection")

	go ctl.writePump(sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn, profile)
}
