// Package live fans order updates out to connected SSE and WebSocket clients.
package live

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dukerupert/smartkitchen/internal/model"
	"github.com/google/uuid"
)

const (
	sendBufferSize = 16

	EventOrderUpdated = "ORDER_UPDATED"
)

// Event is a named payload pushed to subscribers.
type Event struct {
	Name string
	Data any
}

// OrderUpdated wraps an order for broadcast.
func OrderUpdated(o *model.Order) Event {
	return Event{Name: EventOrderUpdated, Data: o}
}

// Frame is an encoded event as delivered to a subscriber.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Subscriber is one connected client. Done is closed when the client goes away.
type Subscriber struct {
	ID   string
	send chan Frame
	done chan struct{}
	once sync.Once
}

func newSubscriber() *Subscriber {
	return &Subscriber{
		ID:   uuid.NewString(),
		send: make(chan Frame, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Frames delivers broadcast events in order.
func (s *Subscriber) Frames() <-chan Frame { return s.send }

// Done is closed once the subscriber is removed or closed.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Close marks the subscriber dead. The next broadcast prunes it.
func (s *Subscriber) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscriber) closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Registry is the set of live subscribers. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		subs:   make(map[*Subscriber]struct{}),
		logger: logger.With("component", "live"),
	}
}

// Add registers a new subscriber.
func (r *Registry) Add() *Subscriber {
	s := newSubscriber()
	r.mu.Lock()
	r.subs[s] = struct{}{}
	r.mu.Unlock()
	return s
}

// Remove unregisters and closes a subscriber. Removing twice is a no-op.
func (r *Registry) Remove(s *Subscriber) {
	r.mu.Lock()
	delete(r.subs, s)
	r.mu.Unlock()
	s.Close()
}

// Broadcast delivers ev to every live subscriber. A subscriber whose buffer
// is full misses this event. Closed subscribers are pruned.
func (r *Registry) Broadcast(ev Event) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		r.logger.Error("marshal broadcast", "event", ev.Name, "error", err)
		return
	}
	frame := Frame{Event: ev.Name, Data: data}

	var dead []*Subscriber
	r.mu.RLock()
	for s := range r.subs {
		if s.closed() {
			dead = append(dead, s)
			continue
		}
		select {
		case s.send <- frame:
		default:
			r.logger.Warn("subscriber buffer full, dropping event", "subscriber", s.ID, "event", ev.Name)
		}
	}
	r.mu.RUnlock()

	if len(dead) > 0 {
		r.mu.Lock()
		for _, s := range dead {
			delete(r.subs, s)
		}
		r.mu.Unlock()
		r.logger.Debug("pruned subscribers", "count", len(dead))
	}
}

// Count returns the number of registered subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
