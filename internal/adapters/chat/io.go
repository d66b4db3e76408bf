package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"moodrelay/internal/core"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.chat").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "adapters.chat").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "adapters.chat").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.chat").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, id core.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "adapters.chat").Str("conn", string(id)).Msg("readPump closing")
		cancel()
		ctl.Orch.Disconnect(id)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(id)
		}
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.chat").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				// Includes oversized frames: gorilla tears the connection
				// down once ReadLimit is exceeded.
				log.Error().Err(err).Str("module", "adapters.chat").Str("conn", string(id)).Msg("readPump read error")
				return
			}
			ctl.route(ctx, id, c, data)
		}
	}
}

func (ctl *Controller) route(ctx context.Context, id core.ConnID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad json")
		return
	}

	switch env.Type {
	case "join_app":
		ctl.handleJoinApp(id, data)
	case "join_room":
		ctl.handleJoinRoom(id, data)
	case "send_message":
		ctl.handleSendMessage(ctx, id, c, data)
	case "toggle_anonymous":
		ctl.handleToggleAnonymous(id, data)
	case "change_language":
		ctl.handleChangeLanguage(id, data)
	case "typing":
		ctl.handleTyping(id, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "adapters.chat").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *wsConn, msg string) {
	ctl.sendJSON(c, core.Envelope{Type: "error", Data: msg})
}
