package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

// testClock is a settable clock for retention tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memSnapshotter keeps the last saved state in memory.
type memSnapshotter struct {
	mu      sync.Mutex
	rooms   map[string][]Message
	found   bool
	saves   int
	loadErr error
	saveErr error
}

func (m *memSnapshotter) Load(context.Context) (map[string][]Message, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	if !m.found {
		return nil, false, nil
	}
	return cloneRooms(m.rooms), true, nil
}

func (m *memSnapshotter) Save(_ context.Context, rooms map[string][]Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rooms = cloneRooms(rooms)
	m.found = true
	return nil
}

func (m *memSnapshotter) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneRooms(in map[string][]Message) map[string][]Message {
	out := make(map[string][]Message, len(in))
	for id, msgs := range in {
		out[id] = append([]Message(nil), msgs...)
	}
	return out
}

// collectSink records every delivered message.
type collectSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *collectSink) Deliver(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

func (c *collectSink) all() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

func mustReceive(t *testing.T, ch <-chan Message) Message {
	t.Helper()

	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before a message arrived")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("expected message not received")
	}
	return Message{}
}

func assertNoMessage(t *testing.T, ch <-chan Message) {
	t.Helper()

	select {
	case m, ok := <-ch:
		if ok {
			t.Fatalf("unexpected message: %+v", m)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
