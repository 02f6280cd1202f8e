package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically applies the retention policy to every room.
// It only touches stored history, never live subscriptions.
type Sweeper struct {
	store    *MessageStore
	interval time.Duration
	log      *zerolog.Logger
}

// NewSweeper creates a sweeper running every interval.
func NewSweeper(store *MessageStore, interval time.Duration, logger *zerolog.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, log: logger}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.SweepAll(); n > 0 {
				s.log.Debug().Int("rooms_dropped", n).Msg("retention sweep")
			}
		}
	}
}
