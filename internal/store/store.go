// Package store holds the snapshot backends used to persist chat history.
// Every backend satisfies core.Snapshotter.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/Saiv46/AAWC/internal/core"
)

// Driver names accepted by configuration.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Store is a snapshot backend that holds resources until closed.
type Store interface {
	core.Snapshotter
	Close() error
}

// Encode renders rooms as {"room": [[ts, sender, text], ...]}.
func Encode(rooms map[string][]core.Message) ([]byte, error) {
	if rooms == nil {
		rooms = map[string][]core.Message{}
	}
	data, err := json.Marshal(rooms)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses data produced by Encode. Any parse failure is reported as
// core.ErrCorruptSnapshot.
func Decode(data []byte) (map[string][]core.Message, error) {
	var rooms map[string][]core.Message
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorruptSnapshot, err)
	}
	if rooms == nil {
		// A literal "null" document carries no state we can trust.
		return nil, fmt.Errorf("%w: empty document", core.ErrCorruptSnapshot)
	}
	return rooms, nil
}
