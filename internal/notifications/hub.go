package notifications

import (
	"sync"

	"github.com/harimoradiya/rmspos/pkg/utils"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this starts missing events.
const subscriberBuffer = 16

// Subscriber is one open push channel registered on an outlet topic.
type Subscriber struct {
	outletID int64
	ch       chan Event
}

// Events returns the receive side of the subscriber's channel.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// OutletID returns the topic this subscriber is registered on.
func (s *Subscriber) OutletID() int64 {
	return s.outletID
}

// Hub is a per-outlet registry of open push channels. It is injected,
// lifetime-scoped service state: constructed at startup, closed on
// shutdown. Safe for concurrent Subscribe/Unsubscribe/Broadcast.
type Hub struct {
	mu     sync.RWMutex
	topics map[int64]map[*Subscriber]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[int64]map[*Subscriber]struct{}),
	}
}

// Subscribe registers a new channel under the outlet's topic.
func (h *Hub) Subscribe(outletID int64) *Subscriber {
	sub := &Subscriber{
		outletID: outletID,
		ch:       make(chan Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	if h.topics[outletID] == nil {
		h.topics[outletID] = make(map[*Subscriber]struct{})
	}
	h.topics[outletID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the channel from its topic and prunes the topic when
// it becomes empty. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[sub.outletID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.outletID)
	}
	close(sub.ch)
}

// Broadcast delivers the event to every channel registered for the outlet.
// Delivery is best-effort and at-most-once: a subscriber whose buffer is
// full is skipped with a warning, and no failure propagates to the caller.
func (h *Hub) Broadcast(outletID int64, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[outletID] {
		select {
		case sub.ch <- event:
		default:
			utils.LogWarn("Dropping notification for slow subscriber", map[string]interface{}{
				"outlet_id": outletID,
				"event":     event.Type,
			})
		}
	}
}

// SubscriberCount reports how many channels are registered for an outlet.
func (h *Hub) SubscriberCount(outletID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[outletID])
}

// Close tears down every subscriber. Further Subscribe calls return
// already-closed subscribers and broadcasts become no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for outletID, subs := range h.topics {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.topics, outletID)
	}
}
