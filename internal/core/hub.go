package core

import (
	"sync"

	"github.com/google/uuid"
)

// Sink receives published messages. Deliver must not block.
type Sink interface {
	Deliver(msg Message)
}

// Subscription is the handle returned by Hub.Subscribe.
type Subscription struct {
	ID   string
	Room string
	sink Sink
}

// Sink returns the delivery target of the subscription.
func (s *Subscription) Sink() Sink {
	return s.sink
}

// Messages returns the live stream when the sink is a Mailbox, nil otherwise.
func (s *Subscription) Messages() <-chan Message {
	if mb, ok := s.sink.(*Mailbox); ok {
		return mb.Messages()
	}
	return nil
}

// Hub tracks live subscribers per room and fans out published messages.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers sink for future messages of roomID.
func (h *Hub) Subscribe(roomID string, sink Sink) *Subscription {
	sub := &Subscription{
		ID:   uuid.NewString(),
		Room: roomID,
		sink: sink,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub. Removing the last subscriber drops the room entry.
// Returns true if sub was registered.
func (h *Hub) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[sub.Room]
	if !ok {
		return false
	}
	if _, exists := subs[sub]; !exists {
		return false
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.rooms, sub.Room)
	}
	return true
}

// Publish delivers msg to every current subscriber of roomID. The lock is held
// for the whole fan-out so concurrent Subscribe/Unsubscribe calls see it as
// a single step.
func (h *Hub) Publish(roomID string, msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.rooms[roomID]
	for sub := range subs {
		sub.sink.Deliver(msg)
	}
	return len(subs)
}

// RoomCount returns the number of rooms with at least one subscriber.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// SubscriberCount returns the number of subscribers of roomID.
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}
