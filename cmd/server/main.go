package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Saiv46/AAWC/internal/app"
	"github.com/Saiv46/AAWC/internal/config"
	"github.com/Saiv46/AAWC/internal/log"
)

var version = "dev" // set at build time using -ldflags

type flags struct {
	configPath string
	envFile    string
	overrides  config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "aawc",
		Short:         "Anonymous web chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	fl := root.Flags()
	fl.StringVar(&f.configPath, "config", "", "path to config.yaml")
	fl.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fl.StringVar(&f.overrides.Addr, "addr", "", "HTTP listen address")
	fl.StringVar(&f.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	fl.StringVar(&f.overrides.LogFormat, "log-format", "", "log format (console, json)")
	fl.StringVar(&f.overrides.SnapshotDriver, "snapshot-driver", "", "snapshot backend (file, sqlite, redis)")
	fl.StringVar(&f.overrides.SnapshotPath, "snapshot-path", "", "snapshot file or database path")
	fl.DurationVar(&f.overrides.MessageTTL, "message-ttl", 0, "how long messages are kept")
	fl.DurationVar(&f.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aawc %s\n", version)
		},
	})

	return root
}

func run(parent context.Context, f flags) error {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return fmt.Errorf("load %s: %w", f.envFile, err)
	}

	bootLogger := log.New("info", log.FormatConsole)
	cfg, cfgPath, err := config.Load(bootLogger, f.configPath)
	if err != nil {
		bootLogger.Error().Err(err).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(f.overrides)
	if err := cfg.Validate(); err != nil {
		bootLogger.Error().Err(err).Msg("invalid config")
		return err
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", cfgPath).Str("version", version).Msg("starting aawc server")

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
