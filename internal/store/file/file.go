// Package file persists snapshots as a single JSON document on an afero filesystem.
package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Saiv46/AAWC/internal/core"
	"github.com/Saiv46/AAWC/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store writes the whole room mapping to one file, replacing it on every save.
type Store struct {
	fs   afero.Fs
	path string
}

// New creates a file store rooted on the OS filesystem.
func New(path string) *Store {
	return NewWithFs(afero.NewOsFs(), path)
}

// NewWithFs creates a file store on fs. Tests pass afero.NewMemMapFs().
func NewWithFs(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the snapshot location.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the snapshot. found is false when the file is absent.
func (s *Store) Load(_ context.Context) (map[string][]core.Message, bool, error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return nil, false, fmt.Errorf("stat snapshot: %w", err)
	}
	if !exists {
		return nil, false, nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	rooms, err := store.Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return rooms, true, nil
}

// Save encodes rooms into a temporary file and renames it over the snapshot,
// so a crash mid-write never leaves a truncated document behind.
func (s *Store) Save(_ context.Context, rooms map[string][]core.Message) error {
	data, err := store.Encode(rooms)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open between saves.
func (s *Store) Close() error {
	return nil
}

