package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"moodrelay/internal/core"
	"moodrelay/internal/domain"
)

type roomState struct {
	room    *domain.Room
	members map[core.ConnID]struct{}
}

// RoomDirectory exclusively owns Room records and their membership sets.
// A room exists iff it has at least one member or is within its idle budget;
// rooms of either kind are deleted the moment membership reaches zero.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomState
	now   func() time.Time
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms: make(map[domain.RoomID]*roomState),
		now:   time.Now,
	}
}

type JoinResult struct {
	RoomID    domain.RoomID
	Ephemeral bool
}

// Join atomically moves a connection into the target room, leaving current
// first. An empty requested id resolves to a fresh server-generated id and
// marks the room ephemeral; the flag never changes afterwards.
func (d *RoomDirectory) Join(id core.ConnID, current, requested domain.RoomID) JoinResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if current != "" {
		d.removeLocked(current, id)
	}

	target := requested
	ephemeral := false
	if target == "" {
		target = domain.RoomID(uuid.NewString())
		ephemeral = true
	}

	st, ok := d.rooms[target]
	if !ok {
		st = &roomState{
			room:    &domain.Room{ID: target, Ephemeral: ephemeral},
			members: make(map[core.ConnID]struct{}),
		}
		d.rooms[target] = st
		log.Info().Str("module", "app.rooms").Str("room", string(target)).Bool("ephemeral", ephemeral).Msg("room created")
	}
	st.members[id] = struct{}{}
	st.room.LastActivity = d.now()

	return JoinResult{RoomID: target, Ephemeral: st.room.Ephemeral}
}

// Leave removes the membership and deletes the room once empty, whatever its
// ephemeral flag.
func (d *RoomDirectory) Leave(id core.ConnID, room domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeLocked(room, id)
}

func (d *RoomDirectory) removeLocked(room domain.RoomID, id core.ConnID) {
	st, ok := d.rooms[room]
	if !ok {
		return
	}
	delete(st.members, id)
	st.room.LastActivity = d.now()
	if len(st.members) == 0 {
		delete(d.rooms, room)
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("empty room deleted")
	}
}

// Touch refreshes LastActivity on message send.
func (d *RoomDirectory) Touch(room domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.rooms[room]; ok {
		st.room.LastActivity = d.now()
	}
}

func (d *RoomDirectory) Contains(room domain.RoomID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[room]
	return ok
}

func (d *RoomDirectory) IsMember(room domain.RoomID, id core.ConnID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.rooms[room]
	if !ok {
		return false
	}
	_, ok = st.members[id]
	return ok
}

// Members returns a point-in-time snapshot of the membership set.
func (d *RoomDirectory) Members(room domain.RoomID) []core.ConnID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.rooms[room]
	if !ok {
		return nil
	}
	return lo.Keys(st.members)
}

type RoomInfo struct {
	ID          domain.RoomID `json:"roomId"`
	MemberCount int           `json:"memberCount"`
	Ephemeral   bool          `json:"isEphemeral"`
}

func (d *RoomDirectory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return lo.MapToSlice(d.rooms, func(id domain.RoomID, st *roomState) RoomInfo {
		return RoomInfo{ID: id, MemberCount: len(st.members), Ephemeral: st.room.Ephemeral}
	})
}

// EvictedRoom reports one room removed by SweepExpired together with the
// members that still have to be notified and detached.
type EvictedRoom struct {
	Room    domain.Room
	Members []core.ConnID
}

// SweepExpired drops empty rooms and ephemeral rooms idle beyond the
// threshold. Only ephemeral rooms expire on idleness; an occupied
// non-ephemeral room is never evicted here.
func (d *RoomDirectory) SweepExpired(now time.Time, idleThreshold time.Duration) []EvictedRoom {
	d.mu.Lock()
	defer d.mu.Unlock()

	var evicted []EvictedRoom
	for id, st := range d.rooms {
		if len(st.members) == 0 {
			delete(d.rooms, id)
			evicted = append(evicted, EvictedRoom{Room: *st.room})
			continue
		}
		if st.room.Ephemeral && now.Sub(st.room.LastActivity) > idleThreshold {
			evicted = append(evicted, EvictedRoom{Room: *st.room, Members: lo.Keys(st.members)})
			delete(d.rooms, id)
		}
	}
	return evicted
}
