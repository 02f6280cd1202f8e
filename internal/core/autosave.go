package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// finalSaveTimeout bounds the save performed when the autosaver stops.
const finalSaveTimeout = 5 * time.Second

// Autosaver periodically writes a snapshot of the store. Failures are logged;
// the in-memory state stays authoritative and the next tick retries.
type Autosaver struct {
	store    *MessageStore
	interval time.Duration
	log      *zerolog.Logger
}

// NewAutosaver creates an autosaver running every interval.
func NewAutosaver(store *MessageStore, interval time.Duration, logger *zerolog.Logger) *Autosaver {
	return &Autosaver{store: store, interval: interval, log: logger}
}

// Run blocks until ctx is cancelled, then performs one last save.
func (a *Autosaver) Run(ctx context.Context) {
	t := time.NewTicker(a.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
			a.save(saveCtx)
			cancel()
			return
		case <-t.C:
			a.save(ctx)
		}
	}
}

func (a *Autosaver) save(ctx context.Context) {
	if err := a.store.Save(ctx); err != nil {
		a.log.Error().Err(err).Msg("failed to autosave chats")
		return
	}
	a.log.Debug().Msg("chats autosaved")
}
