package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a silent room keeps its history.
const DefaultTTL = 5 * time.Hour

// Snapshotter persists the complete room → messages mapping.
type Snapshotter interface {
	// Load returns found=false when no snapshot has been written yet.
	Load(ctx context.Context) (rooms map[string][]Message, found bool, err error)
	// Save overwrites any previous snapshot with rooms.
	Save(ctx context.Context, rooms map[string][]Message) error
}

// AppendHook observes every stored message. Hooks run while the store write
// lock is held and must not call back into the store.
type AppendHook func(roomID string, msg Message)

// MessageStore owns the ordered per-room message history.
type MessageStore struct {
	mu    sync.RWMutex
	rooms map[string][]Message
	hooks []AppendHook

	ttl  time.Duration
	snap Snapshotter
	now  func() time.Time // injectable for deterministic tests
}

// NewMessageStore creates an empty store evicting by ttl and persisting via snap.
// snap may be nil for a purely in-memory store.
func NewMessageStore(ttl time.Duration, snap Snapshotter) *MessageStore {
	return &MessageStore{
		rooms: make(map[string][]Message),
		ttl:   ttl,
		snap:  snap,
		now:   time.Now,
	}
}

// OnAppend registers a hook invoked for every successfully appended message.
func (s *MessageStore) OnAppend(hook AppendHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Exists reports whether the room currently holds any message.
func (s *MessageStore) Exists(roomID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms[roomID]) > 0
}

// Append sanitizes sender and text and stores a new message in the room.
// If either sanitizes to an empty string nothing happens and ok is false.
func (s *MessageStore) Append(roomID, sender, text string) (msg Message, ok bool) {
	sender = Sanitize(sender)
	text = Sanitize(text)
	if sender == "" || text == "" {
		return Message{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg = Message{
		Timestamp: s.now().UnixMilli(),
		Sender:    sender,
		Text:      text,
	}
	s.rooms[roomID] = append(s.rooms[roomID], msg)
	for _, hook := range s.hooks {
		hook(roomID, msg)
	}
	return msg, true
}

// Read returns the room history in arrival order. A positive limit keeps only
// the newest limit entries. The returned slice is owned by the caller.
func (s *MessageStore) Read(roomID string, limit int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tail(s.rooms[roomID], limit)
}

// View calls fn with the room backlog while appends are held off, so fn can
// register for live updates without missing or repeating a message.
func (s *MessageStore) View(roomID string, limit int, fn func(backlog []Message)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(tail(s.rooms[roomID], limit))
}

// Rooms returns the known room keys in lexical order.
func (s *MessageStore) Rooms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sweep applies the retention policy to a single room.
func (s *MessageStore) Sweep(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(roomID, s.now())
}

// SweepAll applies the retention policy to every room and returns how many
// rooms were dropped.
func (s *MessageStore) SweepAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id := range s.rooms {
		if s.sweepLocked(id, now) {
			dropped++
		}
	}
	return dropped
}

// sweepLocked drops the whole room once its newest message is older than the
// TTL; otherwise it keeps only messages within the TTL. Reports whether the
// room was dropped.
func (s *MessageStore) sweepLocked(roomID string, now time.Time) bool {
	msgs, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	if len(msgs) == 0 {
		delete(s.rooms, roomID)
		return true
	}

	nowMs := now.UnixMilli()
	ttl := s.ttl.Milliseconds()
	if nowMs-msgs[len(msgs)-1].Timestamp > ttl {
		delete(s.rooms, roomID)
		return true
	}

	// Snapshots taken by Save share backing arrays, so filter into a new slice.
	var kept []Message
	for i, m := range msgs {
		if nowMs-m.Timestamp <= ttl {
			if kept != nil {
				kept = append(kept, m)
			}
			continue
		}
		if kept == nil {
			kept = make([]Message, i, len(msgs))
			copy(kept, msgs[:i])
		}
	}
	if kept != nil {
		s.rooms[roomID] = kept
	}
	return false
}

// Save writes the current state through the snapshotter. The state is copied
// under the read lock and written without holding it.
func (s *MessageStore) Save(ctx context.Context) error {
	if s.snap == nil {
		return ErrNoSnapshotter
	}

	s.mu.RLock()
	rooms := make(map[string][]Message, len(s.rooms))
	for id, msgs := range s.rooms {
		// Stored messages are never modified in place, so sharing is safe.
		rooms[id] = msgs[:len(msgs):len(msgs)]
	}
	s.mu.RUnlock()

	if err := s.snap.Save(ctx, rooms); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// Load replaces the state with the persisted snapshot. When none exists yet the
// store starts empty and immediately writes an initial snapshot.
func (s *MessageStore) Load(ctx context.Context) error {
	if s.snap == nil {
		return ErrNoSnapshotter
	}

	rooms, found, err := s.snap.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if !found {
		s.mu.Lock()
		s.rooms = make(map[string][]Message)
		s.mu.Unlock()
		return s.Save(ctx)
	}

	state := make(map[string][]Message, len(rooms))
	for id, msgs := range rooms {
		if len(msgs) > 0 {
			state[id] = msgs
		}
	}

	s.mu.Lock()
	s.rooms = state
	s.mu.Unlock()
	return nil
}

func tail(msgs []Message, limit int) []Message {
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
