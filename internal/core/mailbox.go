package core

import (
	"sync"
	"sync/atomic"
)

// Mailbox is a buffered Sink. When the buffer is full the oldest pending
// message is dropped to make room, so a stalled reader never blocks publishers.
type Mailbox struct {
	mu      sync.Mutex
	ch      chan Message
	closed  bool
	dropped atomic.Int64
}

// NewMailbox creates a mailbox holding up to size pending messages.
func NewMailbox(size int) *Mailbox {
	if size <= 0 {
		size = 1
	}
	return &Mailbox{ch: make(chan Message, size)}
}

// Deliver enqueues msg without blocking.
func (m *Mailbox) Deliver(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for {
		select {
		case m.ch <- msg:
			return
		default:
		}
		select {
		case <-m.ch:
			m.dropped.Add(1)
		default:
		}
	}
}

// Messages returns the receive side. It is closed by Close.
func (m *Mailbox) Messages() <-chan Message {
	return m.ch
}

// Dropped returns how many messages were discarded because the reader lagged.
func (m *Mailbox) Dropped() int64 {
	return m.dropped.Load()
}

// Close stops delivery and closes the channel. Safe to call more than once.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.ch)
}
