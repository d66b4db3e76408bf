package chat

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"moodrelay/internal/app"
	"moodrelay/internal/core"
	"moodrelay/internal/domain"
)

func (ctl *Controller) handleJoinApp(id core.ConnID, data []byte) {
	type joinAppPayload struct {
		Type      string `json:"type"`
		UserID    string `json:"userId,omitempty"`
		Username  string `json:"username"`
		Anonymous bool   `json:"isAnonymous"`
		Language  string `json:"language,omitempty"`
	}
	var p joinAppPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad join_app payload")
		return
	}
	ctl.Orch.JoinApp(id, app.RegisterParams{
		UserID:    domain.UserID(p.UserID),
		Username:  p.Username,
		Anonymous: p.Anonymous,
		Language:  p.Language,
	})
}

func (ctl *Controller) handleJoinRoom(id core.ConnID, data []byte) {
	type joinRoomPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId,omitempty"`
	}
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad join_room payload")
		return
	}
	ctl.Orch.JoinRoom(id, domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleSendMessage(ctx context.Context, id core.ConnID, c *wsConn, data []byte) {
	type sendMessagePayload struct {
		Type    string `json:"type"`
		Content string `json:"content"`
		RoomID  string `json:"roomId,omitempty"`
	}
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad send_message payload")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(id) {
		ctl.sendError(c, "You are sending messages too quickly")
		return
	}
	ctl.Orch.SendMessage(ctx, id, p.Content)
}

func (ctl *Controller) handleToggleAnonymous(id core.ConnID, data []byte) {
	type togglePayload struct {
		Type      string `json:"type"`
		Anonymous bool   `json:"isAnonymous"`
	}
	var p togglePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad toggle_anonymous payload")
		return
	}
	ctl.Orch.ToggleAnonymous(id, p.Anonymous)
}

func (ctl *Controller) handleChangeLanguage(id core.ConnID, data []byte) {
	type languagePayload struct {
		Type     string `json:"type"`
		Language string `json:"language"`
	}
	var p languagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad change_language payload")
		return
	}
	if p.Language == "" {
		return
	}
	ctl.Orch.ChangeLanguage(id, p.Language)
}

func (ctl *Controller) handleTyping(id core.ConnID, data []byte) {
	type typingPayload struct {
		Type     string `json:"type"`
		RoomID   string `json:"roomId,omitempty"`
		IsTyping bool   `json:"isTyping"`
	}
	var p typingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("bad typing payload")
		return
	}
	ctl.Orch.Typing(id, p.IsTyping)
}

func (ctl *Controller) handlePing(c *wsConn) {
	ctl.sendJSON(c, core.Envelope{Type: "pong"})
}
