package domain

import "time"

type RoomID string

// Room holds activity meta only; the membership set lives in the room
// directory. Ephemeral is fixed at creation: true iff the room id was
// server-generated.
type Room struct {
	ID           RoomID
	Ephemeral    bool
	LastActivity time.Time
}
