// Package chat is the WebSocket adapter: it owns connection lifecycle and
// wire framing, decodes inbound events and routes them to the orchestrator.
package chat

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"moodrelay/internal/app"
	"moodrelay/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch *app.Orchestrator

	// ReadLimit caps one inbound frame; oversized payloads are rejected at
	// the transport before reaching business logic.
	ReadLimit int64
	Limiter   *MessageRateLimiter
}

func NewController(orch *app.Orchestrator, readLimit int64, limiter *MessageRateLimiter) *Controller {
	return &Controller{Orch: orch, ReadLimit: readLimit, Limiter: limiter}
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

// HandleChat upgrades the HTTP request and starts the read/write pumps. Each
// connection gets a fresh opaque id, stable for its lifetime.
func (ctl *Controller) HandleChat(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.ReadLimit)

	id := core.ConnID(uuid.NewString())
	log.Info().Str("module", "adapters.chat").Str("conn", string(id)).Msg("new WS connection")

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.Orch.Connect(id, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, id, conn)
}
