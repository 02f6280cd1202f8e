package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero ttl", mutate: func(c *Config) { c.MessageTTL = 0 }},
		{name: "zero sweep interval", mutate: func(c *Config) { c.SweepInterval = 0 }},
		{name: "unknown driver", mutate: func(c *Config) { c.SnapshotDriver = "postgres" }},
		{name: "redis without url", mutate: func(c *Config) { c.SnapshotDriver = "redis" }},
		{name: "no backlog", mutate: func(c *Config) { c.MaxLastMessages = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.SnapshotDriver = "redis"
	cfg.SnapshotPath = ""
	cfg.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
}

func TestSnapshotLocationDefaultsPerDriver(t *testing.T) {
	tests := []struct {
		driver string
		path   string
		want   string
	}{
		{driver: "file", want: "chats.json"},
		{driver: "sqlite", want: "chats.db"},
		{driver: "redis", want: ""},
		{driver: "sqlite", path: "/var/lib/aawc/chats.sqlite", want: "/var/lib/aawc/chats.sqlite"},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.SnapshotDriver = tt.driver
		cfg.SnapshotPath = tt.path
		assert.Equal(t, tt.want, cfg.SnapshotLocation(), tt.driver)
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9090", MaxLastMessages: 10, MessageTTL: time.Hour})

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 10, cfg.MaxLastMessages)
	assert.Equal(t, time.Hour, cfg.MessageTTL)
	assert.Equal(t, Default().SweepInterval, cfg.SweepInterval)
}

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	logger := zerolog.Nop()

	cfg, resolved, err := Load(&logger, path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, Default(), cfg)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written")
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7000\"\n"), 0o600))

	ensureConfigFile(nil, path, Default())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "addr: \":7000\"\n", string(data))
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "addr: \":7000\"\nmax_last_messages: 20\nsnapshot_path: /tmp/file.json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("AAWC_MAX_LAST_MESSAGES", "30")
	t.Setenv("AAWC_MESSAGE_TTL", "90m")

	cfg, _, err := Load(nil, path)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 30, cfg.MaxLastMessages, "env should override file")
	assert.Equal(t, 90*time.Minute, cfg.MessageTTL)
	assert.Equal(t, "/tmp/file.json", cfg.SnapshotPath)
	assert.Equal(t, Default().AutosaveInterval, cfg.AutosaveInterval)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AAWC_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("AAWC_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("AAWC_TEST_DOTENV"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
