// Package redisstore keeps the snapshot document under a single Redis key.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/store"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "aawc:chats"

var _ store.Store = (*Store)(nil)

// Store writes the encoded snapshot with SET and reads it back with GET.
type Store struct {
	client *redis.Client
	key    string
}

// New parses redisURL and checks connectivity.
func New(ctx context.Context, redisURL, key string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 4
	opt.MinIdleConns = 1

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(client, key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Load fetches and decodes the snapshot. found is false when the key is absent.
func (s *Store) Load(ctx context.Context) (map[string][]core.Message, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get snapshot: %w", err)
	}

	rooms, err := store.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode key %s: %w", s.key, err)
	}
	return rooms, true, nil
}

// Save overwrites the snapshot key. The key never expires; retention is
// handled by the sweeper, not by Redis.
func (s *Store) Save(ctx context.Context, rooms map[string][]core.Message) error {
	data, err := store.Encode(rooms)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
