package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"givetrack/internal/log"
)

const defaultBufferSize = 16

// Hub fans events out to the sessions connected at publish time. Delivery is
// at-most-once: there is no queue for absent subscribers, no replay for late
// ones, and a session that falls behind its buffer loses events.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Subscription
	bufferSize int
	logger     *log.Logger
}

// Subscription is one live session. Events arrives closed once the session
// is removed from the hub.
type Subscription struct {
	ID     string
	events chan Event
	hub    *Hub
	once   sync.Once
}

// NewHub returns an empty hub. bufferSize <= 0 selects the default.
func NewHub(bufferSize int, logger *log.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Hub{
		sessions:   make(map[string]*Subscription),
		bufferSize: bufferSize,
		logger:     logger.WithComponent(log.ComponentNotify),
	}
}

// Subscribe registers a new session with a fresh opaque id.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		ID:     uuid.NewString(),
		events: make(chan Event, h.bufferSize),
		hub:    h,
	}

	h.mu.Lock()
	h.sessions[sub.ID] = sub
	h.mu.Unlock()

	h.logger.Info("Client connected", log.FieldSessionID, sub.ID)
	return sub
}

// Events yields the events published while the session is connected.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close removes the session from the hub. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.sessions, s.ID)
		close(s.events)
		s.hub.mu.Unlock()

		s.hub.logger.Info("Client disconnected", log.FieldSessionID, s.ID)
	})
}

// Publish delivers e to every connected session without blocking and returns
// how many sessions accepted it.
func (h *Hub) Publish(ctx context.Context, e Event) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, sub := range h.sessions {
		select {
		case sub.events <- e:
			delivered++
		default:
			h.logger.WarnContext(ctx, "Dropping event for slow client",
				log.FieldSessionID, id, log.FieldEvent, e.Name)
		}
	}

	h.logger.DebugContext(ctx, "Event published", log.FieldEvent, e.Name, "delivered", delivered)
	return delivered, nil
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll disconnects every session; used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.sessions))
	for _, sub := range h.sessions {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Close()
	}
}
