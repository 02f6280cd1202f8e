package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "AAWC"
	envConfigDefaultPath = "AAWC_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// LoadDotEnv loads variables from .env files when present. Missing files are fine.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load builds configuration from defaults, optional config file, env vars, and returns the resolved path.
// Precedence: defaults < config file < env vars < caller overrides.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)
	ensureConfigFile(logger, configPath, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
		// Defaults and env still apply without a file.
		if logger != nil {
			logger.Warn().Err(err).Str("path", configPath).Msg("config file unavailable, using defaults")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("read_header_timeout", cfg.ReadHeaderTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("message_ttl", cfg.MessageTTL)
	v.SetDefault("sweep_interval", cfg.SweepInterval)
	v.SetDefault("autosave_interval", cfg.AutosaveInterval)
	v.SetDefault("snapshot_driver", cfg.SnapshotDriver)
	v.SetDefault("snapshot_path", cfg.SnapshotPath)
	v.SetDefault("redis_url", cfg.RedisURL)
	v.SetDefault("redis_key", cfg.RedisKey)
	v.SetDefault("max_last_messages", cfg.MaxLastMessages)
	v.SetDefault("subscriber_buffer", cfg.SubscriberBuffer)
	v.SetDefault("default_room_id", cfg.DefaultRoomID)
	v.SetDefault("default_name", cfg.DefaultName)
	v.SetDefault("max_message_bytes", cfg.MaxMessageBytes)
	v.SetDefault("messages_per_minute", cfg.MessagesPerMinute)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

// ensureConfigFile writes cfg to path when nothing exists there yet.
func ensureConfigFile(logger *zerolog.Logger, path string, cfg Config) {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return
	}
	err := writeDefaultConfig(path, cfg)
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to write default config")
		return
	}
	logger.Info().Str("path", path).Msg("created default config")
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
