package app

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"moodrelay/internal/core"
	"moodrelay/internal/domain"
	"moodrelay/internal/mood"
)

// Translator is the external asynchronous translation engine. Failures are
// absorbed per recipient and never surfaced to any client.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Dispatcher fans one message out to a room: a synchronous echo to the
// sender, then one concurrent delivery per other member with per-recipient
// translation. It only reads the User and Room maps, never mutates them.
type Dispatcher struct {
	Registry   *Registry
	Rooms      *RoomDirectory
	Translator Translator
	Scorer     mood.Scorer

	// TranslateTimeout bounds one translation call; expiry is treated
	// identically to a translation failure.
	TranslateTimeout time.Duration
}

// Dispatch validates, enriches and delivers one send_message event. Only a
// validation failure is reported back to the sender; a missing sender or
// room is a benign race with disconnect and stops silently.
func (d *Dispatcher) Dispatch(ctx context.Context, sender core.ConnID, rawContent string) {
	content := sanitizeContent(rawContent)
	if content == "" {
		emit(d.Registry, sender, EventError, "Invalid message content")
		return
	}

	user, ok := d.Registry.Get(sender)
	if !ok || user.CurrentRoom == "" {
		return
	}
	roomID := user.CurrentRoom
	if !d.Rooms.Contains(roomID) {
		return
	}

	msg := domain.Message{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: time.Now().UTC(),
		MoodColor: mood.Classify(content, d.Scorer),
		Anonymous: user.Anonymous,
	}

	d.Rooms.Touch(roomID)

	// The sender always sees their own wording unmodified, before any
	// recipient work starts.
	echo := msg
	echo.Original = true
	emit(d.Registry, sender, EventReceiveMessage, echo)

	members := d.Rooms.Members(roomID)
	wg := conc.NewWaitGroup()
	for _, rid := range members {
		if rid == sender {
			continue
		}
		rid := rid
		wg.Go(func() {
			d.deliver(ctx, roomID, msg, rid)
		})
	}
	go func() {
		if r := wg.WaitAndRecover(); r != nil {
			log.Error().Str("module", "app.dispatch").Str("room", string(roomID)).Interface("panic", r.Value).Msg("fan-out goroutine panicked")
		}
	}()
}

// deliver sends one copy to one recipient, translating when their language
// differs from the sender's. Translation failure degrades to the original
// content; it never blocks or fails delivery to anyone else.
func (d *Dispatcher) deliver(ctx context.Context, room domain.RoomID, base domain.Message, rid core.ConnID) {
	recipient, ok := d.Registry.Get(rid)
	if !ok {
		return
	}

	out := base
	if recipient.Language != domain.DefaultLanguage {
		tctx, cancel := context.WithTimeout(ctx, d.TranslateTimeout)
		translated, err := d.Translator.Translate(tctx, base.Content, recipient.Language)
		cancel()
		if err == nil {
			out.Content = translated
			out.Translated = true
			out.SourceLanguage = domain.DefaultLanguage
			out.TargetLanguage = recipient.Language
		} else {
			log.Debug().Err(err).Str("module", "app.dispatch").Str("target", recipient.Language).Msg("translation failed, delivering original")
		}
	}

	// The translation call is a suspension point: the recipient may have
	// left, disconnected, or the room may be gone. Re-validate before
	// emitting.
	if !d.Rooms.IsMember(room, rid) {
		return
	}
	emit(d.Registry, rid, EventReceiveMessage, out)
}

// sanitizeContent normalizes inbound text to a serializable, printable
// string: invalid UTF-8 and control runes are stripped, whitespace trimmed.
func sanitizeContent(raw string) string {
	s := strings.ToValidUTF8(raw, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
