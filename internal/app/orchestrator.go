package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"moodrelay/internal/core"
	"moodrelay/internal/domain"
)

// Orchestrator owns one handler per inbound connection event. It coordinates
// the registry, the room directory and the dispatcher; the transport adapter
// decodes payloads and calls in here.
type Orchestrator struct {
	Registry *Registry
	Rooms    *RoomDirectory
	Dispatch *Dispatcher
}

// Connect binds a fresh transport endpoint. No User exists until JoinApp.
func (o *Orchestrator) Connect(id core.ConnID, conn core.SignalConnection) {
	o.Registry.Bind(id, conn)
}

// JoinApp creates the User for the connection and returns its public
// identity view to the client.
func (o *Orchestrator) JoinApp(id core.ConnID, p RegisterParams) {
	user := o.Registry.Register(id, p)
	emit(o.Registry, id, EventUserData, UserDataEvent{
		UserID:    user.ID,
		Username:  user.Username,
		Anonymous: user.Anonymous,
	})
}

// JoinRoom moves the connection into the requested room (or a fresh
// ephemeral one), announces presence to the room's current members and sends
// exactly one welcome system message to the joiner.
func (o *Orchestrator) JoinRoom(id core.ConnID, requested domain.RoomID) {
	user, ok := o.Registry.Get(id)
	if !ok {
		return
	}

	res := o.Rooms.Join(id, user.CurrentRoom, requested)
	o.Registry.SetRoom(id, res.RoomID)
	log.Info().Str("module", "app.orchestrator").Str("conn", string(id)).Str("room", string(res.RoomID)).Bool("ephemeral", res.Ephemeral).Msg("joined room")

	presence := PresenceEvent{UserID: user.ID, Username: user.Username, Timestamp: time.Now().UTC()}
	for _, member := range o.Rooms.Members(res.RoomID) {
		emit(o.Registry, member, EventUserJoined, presence)
	}

	emit(o.Registry, id, EventRoomJoined, RoomJoinedEvent{RoomID: res.RoomID, Ephemeral: res.Ephemeral})
	emit(o.Registry, id, EventReceiveMessage, domain.NewSystemMessage(fmt.Sprintf("Welcome to %s!", res.RoomID)))
}

// SendMessage hands the raw content to the fan-out dispatcher.
func (o *Orchestrator) SendMessage(ctx context.Context, id core.ConnID, content string) {
	o.Dispatch.Dispatch(ctx, id, content)
}

func (o *Orchestrator) ToggleAnonymous(id core.ConnID, anonymous bool) {
	user, err := o.Registry.SetAnonymous(id, anonymous)
	if err != nil {
		return
	}
	emit(o.Registry, id, EventAnonymousToggled, AnonymousToggledEvent{
		Username:  user.Username,
		Anonymous: user.Anonymous,
	})
}

func (o *Orchestrator) ChangeLanguage(id core.ConnID, language string) {
	user, err := o.Registry.SetLanguage(id, language)
	if err != nil {
		return
	}
	emit(o.Registry, id, EventLanguageChanged, LanguageChangedEvent{Language: user.Language})
}

// Typing relays a presence signal to the other room members; nothing is
// persisted.
func (o *Orchestrator) Typing(id core.ConnID, isTyping bool) {
	user, ok := o.Registry.Get(id)
	if !ok || user.CurrentRoom == "" {
		return
	}
	ev := TypingEvent{RoomID: user.CurrentRoom, UserID: user.ID, Username: user.Username, IsTyping: isTyping}
	for _, member := range o.Rooms.Members(user.CurrentRoom) {
		if member == id {
			continue
		}
		emit(o.Registry, member, EventTyping, ev)
	}
}

// Disconnect tears the connection down: membership is removed explicitly (no
// implicit cascading) and the remaining members are told who left.
func (o *Orchestrator) Disconnect(id core.ConnID) {
	user, ok := o.Registry.Remove(id)
	if !ok {
		return
	}
	if user.CurrentRoom == "" {
		return
	}
	o.Rooms.Leave(id, user.CurrentRoom)

	presence := PresenceEvent{UserID: user.ID, Username: user.Username, Timestamp: time.Now().UTC()}
	for _, member := range o.Rooms.Members(user.CurrentRoom) {
		emit(o.Registry, member, EventUserLeft, presence)
	}
	log.Info().Str("module", "app.orchestrator").Str("conn", string(id)).Msg("disconnected")
}
