package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is a mutation notification fanned out to connected admin consoles.
type Event struct {
	Type    string `json:"type"`
	TS      int64  `json:"ts"`
	Action  string `json:"action,omitempty"`
	Entity  string `json:"entity,omitempty"`
	Path    string `json:"path,omitempty"`
	Status  int    `json:"status,omitempty"`
	ActorID string `json:"actor_id,omitempty"`
}

// Message is what a subscriber receives: either a named event with a payload
// or a comment-only heartbeat.
type Message struct {
	Event     Event
	Heartbeat bool
}

const subscriberBuffer = 16

// Subscription is one connected stream. Its channel is closed when the hub
// drops the subscriber or shuts down.
type Subscription struct {
	C      <-chan Message
	cancel func()
}

// Close detaches the subscription from the hub. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
}

// Hub is an explicit connection registry with injected lifecycle. Events are
// delivered best-effort: nothing is persisted, a slow subscriber is dropped,
// and a reconnecting client has lost whatever was emitted while away.
type Hub struct {
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[int]chan Message
	nextID int
	closed bool
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		subs:   make(map[int]chan Message),
	}
}

// Subscribe registers a new stream. The returned subscription must be closed
// when the client disconnects.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return &Subscription{C: ch, cancel: func() {}}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if ch, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(ch)
			}
		})
	}
	return &Subscription{C: ch, cancel: cancel}
}

// Publish fans the event out to every subscriber. A subscriber whose buffer
// is full is dropped rather than blocking the publisher.
func (h *Hub) Publish(event Event) {
	if event.TS == 0 {
		event.TS = time.Now().UnixMilli()
	}
	h.broadcast(Message{Event: event})
}

// SubscriberCount reports the current number of open streams.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// RunHeartbeats emits a comment-only message on every subscription at the
// given interval, keeping intermediaries from closing idle connections. It
// returns when ctx is done.
func (h *Hub) RunHeartbeats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.broadcast(Message{Heartbeat: true})
		}
	}
}

// Close drops every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- msg:
		default:
			// Buffer full: the client is not draining. Drop it.
			delete(h.subs, id)
			close(ch)
			h.logger.Debug("dropped slow realtime subscriber", "id", id)
		}
	}
}
