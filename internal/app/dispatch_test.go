package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"moodrelay/internal/mood"
)

func newDispatcher(reg *Registry, rooms *RoomDirectory, tr Translator, s mood.Scorer) *Dispatcher {
	return &Dispatcher{
		Registry:         reg,
		Rooms:            rooms,
		Translator:       tr,
		Scorer:           s,
		TranslateTimeout: time.Second,
	}
}

func TestDispatch_ValidationErrorGoesToSenderOnly(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	d := newDispatcher(reg, rooms, nil, fixedScore(0))

	connA := join(reg, rooms, "a", RegisterParams{Username: "alice"}, "general")
	connB := join(reg, rooms, "b", RegisterParams{Username: "bob"}, "general")

	d.Dispatch(context.Background(), "a", "   \x00\x07  ")

	errs := connA.eventsOf(t, EventError)
	req.Len(errs, 1)
	req.JSONEq(`"Invalid message content"`, string(errs[0]))
	req.Empty(connA.messagesOf(t, EventReceiveMessage))
	req.Empty(connB.envelopes(t))
}

func TestDispatch_UnknownSenderStopsSilently(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	d := newDispatcher(reg, rooms, nil, fixedScore(0))

	connB := join(reg, rooms, "b", RegisterParams{Username: "bob"}, "general")

	d.Dispatch(context.Background(), "ghost", "hello")

	req.Empty(connB.envelopes(t))
}

func TestDispatch_TranslatesPerRecipient(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	translator := translatorFunc(func(_ context.Context, text, target string) (string, error) {
		if text != "I love this" || target != "fr" {
			return "", fmt.Errorf("unexpected translation call: %q -> %s", text, target)
		}
		return "J'adore ça", nil
	})
	d := newDispatcher(reg, rooms, translator, fixedScore(4))

	connA := join(reg, rooms, "a", RegisterParams{Username: "alice"}, "general")
	connB := join(reg, rooms, "b", RegisterParams{Username: "bob", Language: "fr"}, "general")

	d.Dispatch(context.Background(), "a", "I love this")

	// Sender echo is synchronous and unmodified.
	echoes := connA.messagesOf(t, EventReceiveMessage)
	req.Len(echoes, 1)
	echo := echoes[0]
	req.Equal("I love this", echo.Content)
	req.True(echo.Original)
	req.False(echo.Translated)
	req.Equal(mood.ColorStrongPositive, echo.MoodColor)
	req.Equal("alice", echo.Username)

	req.Eventually(func() bool {
		return len(connB.messagesOf(t, EventReceiveMessage)) == 1
	}, time.Second, 5*time.Millisecond)

	got := connB.messagesOf(t, EventReceiveMessage)[0]
	req.Equal("J'adore ça", got.Content)
	req.True(got.Translated)
	req.False(got.Original)
	req.Equal("en", got.SourceLanguage)
	req.Equal("fr", got.TargetLanguage)
	// Same logical message across copies.
	req.Equal(echo.ID, got.ID)
	req.Equal(echo.MoodColor, got.MoodColor)
}

func TestDispatch_EnglishRecipientGetsOriginalWithoutTranslation(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	translator := translatorFunc(func(_ context.Context, _, _ string) (string, error) {
		t.Error("translator must not be called for en recipients")
		return "", nil
	})
	d := newDispatcher(reg, rooms, translator, fixedScore(0))

	join(reg, rooms, "a", RegisterParams{Username: "alice"}, "general")
	connB := join(reg, rooms, "b", RegisterParams{Username: "bob"}, "general")

	d.Dispatch(context.Background(), "a", "hello there")

	req.Eventually(func() bool {
		return len(connB.messagesOf(t, EventReceiveMessage)) == 1
	}, time.Second, 5*time.Millisecond)
	got := connB.messagesOf(t, EventReceiveMessage)[0]
	req.Equal("hello there", got.Content)
	req.False(got.Translated)
	req.Empty(got.TargetLanguage)
}

func TestDispatch_TranslationFailureDegradesToOriginal(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	translator := translatorFunc(func(_ context.Context, _, _ string) (string, error) {
		return "", errors.New("service unreachable")
	})
	d := newDispatcher(reg, rooms, translator, fixedScore(0))

	connA := join(reg, rooms, "a", RegisterParams{Username: "alice"}, "general")
	connB := join(reg, rooms, "b", RegisterParams{Username: "bob", Language: "fr"}, "general")

	d.Dispatch(context.Background(), "a", "hello")

	req.Eventually(func() bool {
		return len(connB.messagesOf(t, EventReceiveMessage)) == 1
	}, time.Second, 5*time.Millisecond)
	got := connB.messagesOf(t, EventReceiveMessage)[0]
	req.Equal("hello", got.Content)
	req.False(got.Translated)

	// The failure never reaches any client as an error.
	req.Empty(connA.eventsOf(t, EventError))
	req.Empty(connB.eventsOf(t, EventError))
}

func TestDispatch_OneFailureDoesNotAffectOtherRecipients(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	translator := translatorFunc(func(_ context.Context, text, target string) (string, error) {
		if target == "fr" {
			return "", errors.New("boom")
		}
		return fmt.Sprintf("[%s] %s", target, text), nil
	})
	d := newDispatcher(reg, rooms, translator, fixedScore(0))

	join(reg, rooms, "a", RegisterParams{Username: "alice"}, "general")
	connB := join(reg, rooms, "b", RegisterParams{Username: "bob", Language: "fr"}, "general")
	connC := join(reg, rooms, "c", RegisterParams{Username: "carol", Language: "es"}, "general")

	d.Dispatch(context.Background(), "a", "hi all")

	req.Eventually(func() bool {
		return len(connB.messagesOf(t, EventReceiveMessage)) == 1 &&
			len(connC.messagesOf(t, EventReceiveMessage)) == 1
	}, time.Second, 5*time.Millisecond)

	gotB := connB.messagesOf(t, EventReceiveMessage)[0]
	req.Equal("hi all", gotB.Content)
	req.False(gotB.Translated)

	gotC := connC.messagesOf(t, EventReceiveMessage)[0]
	req.Equal("[es] hi all", gotC.Content)
	req.True(gotC.Translated)
}

func TestDispatch_RecipientGoneAfterTranslationIsSkipped(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	release := make(chan struct{})
	translator := translatorFunc(func(_ context.Context, text, _ string) (string, error) {
		<-release
		return text, nil
	})
	d := newDispatcher(reg, rooms, translator, fixedScore(0))

	join(reg, rooms, "a", RegisterParams{Username: "alice"}, "general")
	connB := join(reg, rooms, "b", RegisterParams{Username: "bob", Language: "fr"}, "general")

	d.Dispatch(context.Background(), "a", "hello")

	// B leaves the room while the translation call is suspended.
	rooms.Leave("b", "general")
	reg.ClearRoomIf("b", "general")
	close(release)

	time.Sleep(100 * time.Millisecond)
	req.Empty(connB.messagesOf(t, EventReceiveMessage))
}

func TestDispatch_RefreshesRoomActivity(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	rooms := NewRoomDirectory()
	d := newDispatcher(reg, rooms, nil, fixedScore(0))

	past := time.Now().Add(-time.Hour)
	rooms.now = func() time.Time { return past }
	connA := &fakeConn{}
	reg.Bind("a", connA)
	reg.Register("a", RegisterParams{Username: "alice"})
	res := rooms.Join("a", "", "")
	rooms.Join("b2", "", res.RoomID) // second member keeps the room non-empty
	reg.SetRoom("a", res.RoomID)
	rooms.now = time.Now

	d.Dispatch(context.Background(), "a", "still here")

	evicted := rooms.SweepExpired(time.Now(), 30*time.Minute)
	req.Empty(evicted)
}
