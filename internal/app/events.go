package app

import (
	"time"

	"moodrelay/internal/domain"
)

// Outbound event names. Inbound names live in the chat adapter's router.
const (
	EventUserData         = "user_data"
	EventRoomJoined       = "room_joined"
	EventUserJoined       = "user_joined"
	EventUserLeft         = "user_left"
	EventReceiveMessage   = "receive_message"
	EventAnonymousToggled = "anonymous_toggled"
	EventLanguageChanged  = "language_changed"
	EventTyping           = "typing"
	EventRoomExpired      = "room_expired"
	EventError            = "error"
)

// UserDataEvent is the public identity view returned on join_app.
type UserDataEvent struct {
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	Anonymous bool          `json:"isAnonymous"`
}

type RoomJoinedEvent struct {
	RoomID    domain.RoomID `json:"roomId"`
	Ephemeral bool          `json:"isEphemeral"`
}

// PresenceEvent announces user_joined / user_left to room members.
type PresenceEvent struct {
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	Timestamp time.Time     `json:"timestamp"`
}

type AnonymousToggledEvent struct {
	Username  string `json:"username"`
	Anonymous bool   `json:"isAnonymous"`
}

type LanguageChangedEvent struct {
	Language string `json:"language"`
}

type TypingEvent struct {
	RoomID   domain.RoomID `json:"roomId"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
	IsTyping bool          `json:"isTyping"`
}

type RoomExpiredEvent struct {
	RoomID domain.RoomID `json:"roomId"`
}
