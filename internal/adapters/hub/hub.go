// Package hub manages live-update subscribers and fans leaderboard
// snapshots out to them.
package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	"github.com/okian/tally/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultBufferSize = 8
)

// Snapshot is the full ranked leaderboard sent on every change.
type Snapshot = []model.RankedEntry

// Subscription is one listener's handle. Snapshots arrive on C until
// Unsubscribe (or Close) closes it.
type Subscription struct {
	id string
	C  <-chan Snapshot

	// mu orders trySend against closeChan: once closed is set no send
	// can touch ch again, so closing never races a publish.
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
}

// ID returns the opaque subscriber handle id.
func (s *Subscription) ID() string { return s.id }

// trySend delivers the snapshot unless the subscription has been
// closed or its buffer is full. Reports whether the snapshot was
// delivered and whether the subscription is still open.
func (s *Subscription) trySend(snapshot Snapshot) (delivered, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, false
	}
	select {
	case s.ch <- snapshot:
		return true, true
	default:
		return false, true
	}
}

// closeChan closes the snapshot channel exactly once.
func (s *Subscription) closeChan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

// Hub is a registry of active subscriptions with best-effort fan-out.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	closed bool
	logger logger.Logger
}

// New creates a Hub with configuration options.
func New(opts ...Option) *Hub {
	h := &Hub{
		subs:   make(map[string]*Subscription),
		buffer: defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("hub")
	}
	return h
}

// Subscribe registers a new listener. Cheap, non-blocking.
func (h *Hub) Subscribe(ctx context.Context) *Subscription {
	ch := make(chan Snapshot, h.buffer)
	sub := &Subscription{id: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.closeChan()
		return sub
	}
	h.subs[sub.id] = sub
	metrics.UpdateSubscriberCount(len(h.subs))
	return sub
}

// Unsubscribe removes a listener and closes its channel. Safe to call
// for an already-removed subscription, and safe to call concurrently
// with Publish.
func (h *Hub) Unsubscribe(ctx context.Context, sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	registered, ok := h.subs[sub.id]
	if ok {
		delete(h.subs, sub.id)
		metrics.UpdateSubscriberCount(len(h.subs))
	}
	h.mu.Unlock()

	if ok {
		registered.closeChan()
	}
}

// Publish delivers the snapshot to every currently registered
// listener. Delivery is fire-and-forget per listener: the registry is
// copied under the read lock before fan-out, a subscriber whose buffer
// is full misses this snapshot rather than blocking the rest, and one
// that departs mid-publish is skipped.
func (h *Hub) Publish(ctx context.Context, snapshot Snapshot) {
	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		delivered, open := sub.trySend(snapshot)
		if open && !delivered {
			metrics.RecordDroppedDelivery()
			h.logger.Debug(ctx, "subscriber buffer full, snapshot dropped")
		}
	}
	metrics.RecordBroadcast()
}

// Count returns the number of active subscriptions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close terminates every subscription. Later Subscribe calls return an
// already-closed subscription.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	targets := make([]*Subscription, 0, len(h.subs))
	for id, sub := range h.subs {
		delete(h.subs, id)
		targets = append(targets, sub)
	}
	metrics.UpdateSubscriberCount(0)
	h.mu.Unlock()

	for _, sub := range targets {
		sub.closeChan()
	}
	return nil
}
