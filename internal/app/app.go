package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Saiv46/AAWC/internal/config"
	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/store"
	"github.com/Saiv46/AAWC/internal/store/file"
	"github.com/Saiv46/AAWC/internal/store/redisstore"
	"github.com/Saiv46/AAWC/internal/store/sqlite"
	transporthttp "github.com/Saiv46/AAWC/internal/transport/http"
)

// App wires together persistence, core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	svc             *core.Service
	sweeper         *core.Sweeper
	autosaver       *core.Autosaver
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application and restores chat history from the
// configured snapshot backend. A corrupt snapshot is fatal.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("driver", cfg.SnapshotDriver).Str("path", cfg.SnapshotLocation()).Msg("snapshot store initialized")

	messages := core.NewMessageStore(cfg.MessageTTL, st)
	if err := messages.Load(ctx); err != nil {
		if !errors.Is(err, core.ErrSaveFailed) {
			_ = st.Close()
			return nil, fmt.Errorf("restore chats: %w", err)
		}
		// Nothing was lost yet; the autosaver retries.
		logger.Warn().Err(err).Msg("failed to write initial snapshot")
	}
	rooms := messages.Rooms()
	logger.Info().Int("rooms", len(rooms)).Msg("chats restored")

	svc := core.NewService(messages, core.NewHub(), core.Options{
		MaxLastMessages:  cfg.MaxLastMessages,
		SubscriberBuffer: cfg.SubscriberBuffer,
	})

	server := transporthttp.NewServer(svc, cfg, logger)
	// Hijacked websocket connections are not tracked by Shutdown; cancelling
	// their base context ends them.
	connCtx, cancelConns := context.WithCancel(context.Background())
	server.BaseContext = func(net.Listener) context.Context { return connCtx }
	server.RegisterOnShutdown(cancelConns)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		svc:             svc,
		sweeper:         core.NewSweeper(messages, cfg.SweepInterval, logger),
		autosaver:       core.NewAutosaver(messages, cfg.AutosaveInterval, logger),
		store:           st,
		log:             logger,
	}, nil
}

// OpenStore opens the snapshot backend selected by cfg.SnapshotDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.SnapshotDriver {
	case store.DriverFile, "":
		return file.New(cfg.SnapshotLocation()), nil
	case store.DriverSQLite:
		return sqlite.New(cfg.SnapshotLocation())
	case store.DriverRedis:
		return redisstore.New(ctx, cfg.RedisURL, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("unknown snapshot driver %q", cfg.SnapshotDriver)
	}
}

// Service exposes the chat service, mainly for tests.
func (a *App) Service() *core.Service {
	return a.svc
}

// Handler returns the HTTP handler serving the chat.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and background workers and blocks until context
// cancellation or fatal error. Workers stop after the server has drained, so
// the final snapshot includes messages accepted during shutdown.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.sweeper.Run(workerCtx)
	}()
	go func() {
		defer wg.Done()
		a.autosaver.Run(workerCtx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	var err error
	select {
	case err = <-serverErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if shutdownErr := a.server.Shutdown(shutdownCtx); shutdownErr != nil {
			err = shutdownErr
		} else {
			err = <-serverErr
		}
	}

	stopWorkers()
	wg.Wait()
	a.cleanup()
	return err
}

// cleanup closes the snapshot store.
func (a *App) cleanup() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
		return
	}
	a.log.Info().Msg("store closed")
}
