package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically evicts empty rooms and idle ephemeral rooms. It is
// the only component that removes rooms purely due to inactivity, and it
// runs independently of any connection's lifecycle.
type Sweeper struct {
	Registry *Registry
	Rooms    *RoomDirectory

	Interval      time.Duration
	IdleThreshold time.Duration
}

func NewSweeper(reg *Registry, rooms *RoomDirectory, interval, idleThreshold time.Duration) *Sweeper {
	return &Sweeper{Registry: reg, Rooms: rooms, Interval: interval, IdleThreshold: idleThreshold}
}

func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.sweeper").Dur("interval", s.Interval).Dur("idle_threshold", s.IdleThreshold).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return ctx.Err()
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep removes expired rooms, then notifies and detaches every member that
// was still inside an evicted ephemeral room.
func (s *Sweeper) sweep(now time.Time) {
	evicted := s.Rooms.SweepExpired(now, s.IdleThreshold)
	for _, ev := range evicted {
		for _, member := range ev.Members {
			emit(s.Registry, member, EventRoomExpired, RoomExpiredEvent{RoomID: ev.Room.ID})
			s.Registry.ClearRoomIf(member, ev.Room.ID)
		}
		log.Info().Str("module", "app.sweeper").Str("room", string(ev.Room.ID)).Int("members", len(ev.Members)).Bool("ephemeral", ev.Room.Ephemeral).Msg("room evicted")
	}
}
