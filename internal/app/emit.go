package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"moodrelay/internal/core"
)

// emit marshals one named event and best-effort delivers it to a single
// connection. Delivery is at-most-once: a slow or gone connection drops the
// frame, never blocks the caller.
func emit(r *Registry, id core.ConnID, event string, data any) {
	conn, ok := r.Conn(id)
	if !ok {
		return
	}
	b, err := json.Marshal(core.Envelope{Type: event, Data: data})
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("event", event).Msg("marshal outbound event")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Debug().Err(err).Str("module", "app").Str("conn", string(id)).Str("event", event).Msg("dropped frame")
	}
}
