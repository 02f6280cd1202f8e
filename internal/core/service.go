package core

// Service is the boundary used by transports. It owns the message store and
// hub, wiring every successful append into a publish for that room.
type Service struct {
	store      *MessageStore
	hub        *Hub
	maxBacklog int
	bufferSize int
}

// Options tunes Service behaviour.
type Options struct {
	// MaxLastMessages bounds the backlog handed to a new subscriber.
	MaxLastMessages int
	// SubscriberBuffer is the mailbox depth of each subscriber.
	SubscriberBuffer int
}

// NewService connects store and hub. The store must not already publish to hub.
func NewService(store *MessageStore, hub *Hub, opts Options) *Service {
	store.OnAppend(func(roomID string, msg Message) {
		hub.Publish(roomID, msg)
	})
	return &Service{
		store:      store,
		hub:        hub,
		maxBacklog: opts.MaxLastMessages,
		bufferSize: opts.SubscriberBuffer,
	}
}

// Store exposes the underlying message store.
func (s *Service) Store() *MessageStore { return s.store }

// Hub exposes the underlying hub.
func (s *Service) Hub() *Hub { return s.hub }

// Exists reports whether the room has stored history.
func (s *Service) Exists(roomID string) bool {
	return s.store.Exists(roomID)
}

// Send appends a message and publishes it to the room's subscribers.
// ok is false when sender or text is empty after sanitization.
func (s *Service) Send(roomID, sender, text string) (Message, bool) {
	return s.store.Append(roomID, sender, text)
}

// Backlog returns up to limit of the newest messages; limit <= 0 means all.
func (s *Service) Backlog(roomID string, limit int) []Message {
	return s.store.Read(roomID, limit)
}

// Subscribe registers a mailbox for roomID and returns it together with the
// last MaxLastMessages entries. Messages appended afterwards arrive on
// sub.Messages() exactly once.
func (s *Service) Subscribe(roomID string) (*Subscription, []Message) {
	return s.SubscribeSink(roomID, NewMailbox(s.bufferSize))
}

// SubscribeSink is Subscribe with a caller supplied sink.
func (s *Service) SubscribeSink(roomID string, sink Sink) (*Subscription, []Message) {
	var (
		sub     *Subscription
		backlog []Message
	)
	s.store.View(roomID, s.maxBacklog, func(msgs []Message) {
		backlog = msgs
		sub = s.hub.Subscribe(roomID, sink)
	})
	return sub, backlog
}

// Unsubscribe removes sub and closes its mailbox if it has one.
func (s *Service) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	s.hub.Unsubscribe(sub)
	if mb, ok := sub.sink.(*Mailbox); ok {
		mb.Close()
	}
}
