package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/vietanh2810/camp-animal-economy/internal/domain"
)

const DefaultBuffer = 64

// Hub fans market row updates out to subscribers. Publish never blocks: a
// subscriber whose buffer is full is dropped and its channel closed, the same
// way a slow websocket client is dropped.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

type Subscription struct {
	id  uint64
	hub *Hub
	ch  chan domain.MarketItem
}

// C returns the update channel. It is closed when the subscription ends,
// whether by Unsubscribe, by the hub dropping a slow reader, or by Hub.Close.
// A nil subscription yields a nil channel.
func (s *Subscription) C() <-chan domain.MarketItem {
	if s == nil {
		return nil
	}

	return s.ch
}

// Unsubscribe releases the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}

	s.hub.remove(s.id)
}

// Subscribe registers a new subscriber. It returns nil once the hub is closed.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}

	h.nextID++
	sub := &Subscription{
		id:  h.nextID,
		hub: h,
		ch:  make(chan domain.MarketItem, h.buffer),
	}
	h.subs[sub.id] = sub

	return sub
}

func (h *Hub) Publish(item domain.MarketItem) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		select {
		case sub.ch <- item:
		default:
			zap.L().Warn("dropping slow market subscriber", zap.Uint64("subscription", id))
			delete(h.subs, id)
			close(sub.ch)
		}
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}
