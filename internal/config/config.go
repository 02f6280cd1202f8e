package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=console json"`

	// Retention and persistence.
	MessageTTL       time.Duration `mapstructure:"message_ttl" yaml:"message_ttl" validate:"gt=0"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" validate:"gt=0"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval" yaml:"autosave_interval" validate:"gt=0"`
	SnapshotDriver   string        `mapstructure:"snapshot_driver" yaml:"snapshot_driver" validate:"oneof=file sqlite redis"`
	SnapshotPath     string        `mapstructure:"snapshot_path" yaml:"snapshot_path"`
	RedisURL         string        `mapstructure:"redis_url" yaml:"redis_url" validate:"required_if=SnapshotDriver redis"`
	RedisKey         string        `mapstructure:"redis_key" yaml:"redis_key"`

	// Chat behaviour.
	MaxLastMessages   int    `mapstructure:"max_last_messages" yaml:"max_last_messages" validate:"gt=0"`
	SubscriberBuffer  int    `mapstructure:"subscriber_buffer" yaml:"subscriber_buffer" validate:"gt=0"`
	DefaultRoomID     string `mapstructure:"default_room_id" yaml:"default_room_id" validate:"required,max=128"`
	DefaultName       string `mapstructure:"default_name" yaml:"default_name" validate:"required,max=256"`
	MaxMessageBytes   int64  `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"gt=0"`
	MessagesPerMinute int    `mapstructure:"messages_per_minute" yaml:"messages_per_minute" validate:"gte=0"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		LogFormat:         "console",

		MessageTTL:       5 * time.Hour,
		SweepInterval:    time.Minute,
		AutosaveInterval: 100 * time.Second,
		SnapshotDriver:   "file",
		RedisKey:         "aawc:chats",

		MaxLastMessages:   50,
		SubscriberBuffer:  64,
		DefaultRoomID:     "lobby",
		DefaultName:       "Anonymous",
		MaxMessageBytes:   1024,
		MessagesPerMinute: 30,
	}
}

// SnapshotLocation returns the configured snapshot path, or the driver's
// default file name when none is set.
func (c Config) SnapshotLocation() string {
	if c.SnapshotPath != "" {
		return c.SnapshotPath
	}
	switch c.SnapshotDriver {
	case "sqlite":
		return "chats.db"
	case "redis":
		return ""
	default:
		return "chats.json"
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.MessageTTL != 0 {
		c.MessageTTL = other.MessageTTL
	}
	if other.SweepInterval != 0 {
		c.SweepInterval = other.SweepInterval
	}
	if other.AutosaveInterval != 0 {
		c.AutosaveInterval = other.AutosaveInterval
	}
	if other.SnapshotDriver != "" {
		c.SnapshotDriver = other.SnapshotDriver
	}
	if other.SnapshotPath != "" {
		c.SnapshotPath = other.SnapshotPath
	}
	if other.RedisURL != "" {
		c.RedisURL = other.RedisURL
	}
	if other.RedisKey != "" {
		c.RedisKey = other.RedisKey
	}
	if other.MaxLastMessages != 0 {
		c.MaxLastMessages = other.MaxLastMessages
	}
	if other.SubscriberBuffer != 0 {
		c.SubscriberBuffer = other.SubscriberBuffer
	}
	if other.DefaultRoomID != "" {
		c.DefaultRoomID = other.DefaultRoomID
	}
	if other.DefaultName != "" {
		c.DefaultName = other.DefaultName
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.MessagesPerMinute != 0 {
		c.MessagesPerMinute = other.MessagesPerMinute
	}
}

// Validate checks value ranges and driver-specific requirements.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
