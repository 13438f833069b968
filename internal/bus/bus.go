// Package bus is the process-wide fan-out for realtime updates. Delivery is
// best effort: no persistence, no retry, no confirmation. A client that
// disconnects simply misses events until its next full refetch.
package bus

import (
	"context"
	"sync"

	"societyhub.org/internal/obs"
)

const subscriberBuffer = 16

// Target selects which connections receive a published event.
type Target struct {
	room string // empty means broadcast to every connection
}

// Broadcast delivers to all current connections regardless of room.
func Broadcast() Target { return Target{} }

// Room delivers only to connections joined to the named room.
func Room(key string) Target { return Target{room: key} }

// Subscription is one connected client's view of the bus.
type Subscription struct {
	id    int
	ch    chan Event
	rooms map[string]struct{}
}

// C returns the channel events are delivered on. It is closed when the
// subscription's context ends.
func (s *Subscription) C() <-chan Event { return s.ch }

// Hub fan-outs events to all active subscriptions. Constructed once at
// startup and handed to every orchestrator; never reached through a global.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]*Subscription
	next int
}

// NewHub initialises an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*Subscription)}
}

// Subscribe registers a connection, optionally pre-joined to rooms. The
// subscription is torn down when ctx ends.
func (h *Hub) Subscribe(ctx context.Context, rooms ...string) *Subscription {
	sub := &Subscription{
		ch:    make(chan Event, subscriberBuffer),
		rooms: make(map[string]struct{}, len(rooms)),
	}
	for _, room := range rooms {
		if room != "" {
			sub.rooms[room] = struct{}{}
		}
	}

	h.mu.Lock()
	sub.id = h.next
	h.next++
	h.subs[sub.id] = sub
	h.mu.Unlock()
	obs.ConnectionOpened()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, sub.id)
		close(sub.ch)
		h.mu.Unlock()
		obs.ConnectionClosed()
	}()

	return sub
}

// Join adds the subscription to a named room. Idempotent.
func (h *Hub) Join(sub *Subscription, room string) {
	if sub == nil || room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, live := h.subs[sub.id]; !live {
		return
	}
	sub.rooms[room] = struct{}{}
}

// Leave removes the subscription from a room. Idempotent.
func (h *Hub) Leave(sub *Subscription, room string) {
	if sub == nil || room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(sub.rooms, room)
}

// Publish pushes the event to every matching connection. Slow subscribers are
// skipped rather than blocking the caller.
func (h *Hub) Publish(name string, payload any, target Target) {
	evt := Event{Name: name, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if target.room != "" {
			if _, in := sub.rooms[target.room]; !in {
				continue
			}
		}
		select {
		case sub.ch <- evt:
		default:
			// Drop when the subscriber is slow to avoid blocking publishers.
		}
	}
	obs.EventPublished(name)
}

// Broadcast publishes to every connection; the common case for mutations.
func (h *Hub) Broadcast(name string, payload any) {
	h.Publish(name, payload, Broadcast())
}

// Subscribers reports the number of live connections.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
