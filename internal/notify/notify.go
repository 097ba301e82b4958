// Package notify fans coupon-change events out to connected clients.
// Clients holding an optimistic local view of a coupon use the feed to
// reconcile: a received event replaces or removes the local copy and is
// always the source of truth over what the client did locally.
package notify

import (
	"sync"

	"github.com/mireven/shopfront/internal/domain/coupon"
)

// Action identifies what happened to a coupon.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionToggled Action = "toggled"
	ActionDeleted Action = "deleted"
)

// Event is one coupon change. For deletions Coupon carries the last known
// state of the removed coupon.
type Event struct {
	Action Action
	Coupon coupon.Coupon
}

// subscriberBuffer bounds each subscriber's queue. A subscriber that falls
// this far behind loses events and must refetch on reconnect.
const subscriberBuffer = 16

// Hub broadcasts events to all current subscribers. Slow subscribers never
// block publishers; their events are dropped instead.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function must be
// called when the subscriber disconnects.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber with queue space.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts the hub down and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
