package app

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"moodrelay/internal/core"
	"moodrelay/internal/domain"
)

// ErrNotFound marks operations against a connection that is no longer
// registered. It reflects a benign race with disconnect and is never
// surfaced to clients.
var ErrNotFound = errors.New("connection not found")

// RegisterParams is the join_app payload after decoding.
type RegisterParams struct {
	UserID    domain.UserID
	Username  string
	Anonymous bool
	Language  string
}

// Registry exclusively owns User records and their transport bindings,
// keyed by connection id. Reads return value copies; all mutation happens
// under the registry lock through the methods below.
type Registry struct {
	mu    sync.RWMutex
	users map[core.ConnID]*domain.User
	conns map[core.ConnID]core.SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[core.ConnID]*domain.User),
		conns: make(map[core.ConnID]core.SignalConnection),
	}
}

// Bind attaches the transport endpoint for a connection. Called by the
// adapter before any event for that connection is routed.
func (r *Registry) Bind(id core.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

func (r *Registry) Conn(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// Register creates the User for a connection. A missing user id gets a fresh
// uuid; anonymous users get a generated alias instead of the raw name.
func (r *Registry) Register(id core.ConnID, p RegisterParams) domain.User {
	uid := p.UserID
	if uid == "" {
		uid = domain.UserID(uuid.NewString())
	}
	name := strings.TrimSpace(p.Username)
	if p.Anonymous {
		name = domain.AnonymousAlias()
	}
	if runes := []rune(name); len(runes) > domain.MaxUsernameLen {
		name = string(runes[:domain.MaxUsernameLen])
	}
	lang := p.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	u := &domain.User{ID: uid, Username: name, Anonymous: p.Anonymous, Language: lang}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = u
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("user", string(uid)).Bool("anonymous", p.Anonymous).Msg("registered user")
	return *u
}

func (r *Registry) Get(id core.ConnID) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		return *u, true
	}
	return domain.User{}, false
}

// SetAnonymous toggles anonymous mode. Toggling on regenerates the alias;
// toggling off strips any alias prefix and falls back to a generated name
// when nothing remains.
func (r *Registry) SetAnonymous(id core.ConnID, anonymous bool) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	u.Anonymous = anonymous
	if anonymous {
		u.Username = domain.AnonymousAlias()
	} else {
		name := domain.StripAnonymousAlias(u.Username)
		if name == "" {
			name = domain.FallbackUsername()
		}
		u.Username = name
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Bool("anonymous", anonymous).Str("username", u.Username).Msg("toggled anonymous")
	return *u, nil
}

func (r *Registry) SetLanguage(id core.ConnID, language string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	u.Language = language
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("language", language).Msg("changed language")
	return *u, nil
}

func (r *Registry) SetRoom(id core.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.CurrentRoom = room
	}
}

// ClearRoomIf resets CurrentRoom only when it still points at room, so a
// sweep racing a fresh join never clobbers the new membership.
func (r *Registry) ClearRoomIf(id core.ConnID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok && u.CurrentRoom == room {
		u.CurrentRoom = ""
	}
}

// Remove drops the user and its transport binding on disconnect. The caller
// is responsible for also removing the connection from any room.
func (r *Registry) Remove(id core.ConnID) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, false
	}
	delete(r.users, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("removed user")
	return *u, true
}
