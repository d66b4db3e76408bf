package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"moodrelay/internal/core"
	"moodrelay/internal/domain"
)

// fakeConn records every frame instead of writing to a socket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *fakeConn) envelopes(t *testing.T) []envelope {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]envelope, 0, len(c.frames))
	for _, f := range c.frames {
		var env envelope
		require.NoError(t, json.Unmarshal(f, &env))
		out = append(out, env)
	}
	return out
}

func (c *fakeConn) eventsOf(t *testing.T, event string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	for _, env := range c.envelopes(t) {
		if env.Type == event {
			out = append(out, env.Data)
		}
	}
	return out
}

func (c *fakeConn) messagesOf(t *testing.T, event string) []domain.Message {
	t.Helper()
	var out []domain.Message
	for _, raw := range c.eventsOf(t, event) {
		var m domain.Message
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

type translatorFunc func(ctx context.Context, text, target string) (string, error)

func (f translatorFunc) Translate(ctx context.Context, text, target string) (string, error) {
	return f(ctx, text, target)
}

type scorerFunc func(text string) (int, error)

func (f scorerFunc) Score(text string) (int, error) { return f(text) }

func fixedScore(score int) scorerFunc {
	return func(string) (int, error) { return score, nil }
}

// join registers a user, binds a fake connection and puts it in a room.
func join(reg *Registry, rooms *RoomDirectory, id core.ConnID, p RegisterParams, room domain.RoomID) *fakeConn {
	conn := &fakeConn{}
	reg.Bind(id, conn)
	reg.Register(id, p)
	u, _ := reg.Get(id)
	res := rooms.Join(id, u.CurrentRoom, room)
	reg.SetRoom(id, res.RoomID)
	return conn
}
