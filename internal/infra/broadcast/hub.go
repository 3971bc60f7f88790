package broadcast

import (
	"log/slog"
	"sync"

	"pos-checkout/internal/pkg/errs"
)

const EventPaymentSuccess = "payment-success"

const defaultBuffer = 16

var ErrHubClosed = errs.New("broadcast hub is closed")

type Event struct {
	Name string
	Data any
}

type PaymentSuccess struct {
	MD5 string `json:"md5"`
}

// Hub fans events out to every connected subscriber. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

type Subscription struct {
	hub  *Hub
	ch   chan Event
	once sync.Once
}

// Events is closed when the subscription is closed or the hub shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	s := &Subscription{hub: h, ch: make(chan Event, h.buffer)}
	h.subs[s] = struct{}{}
	return s, nil
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	s.once.Do(func() { close(s.ch) })
}

func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	dropped := 0
	for s := range h.subs {
		select {
		case s.ch <- e:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("event dropped for slow subscribers", "event", e.Name, "dropped", dropped)
	}
}

func (h *Hub) PublishPaymentSuccess(fingerprint string) {
	h.Publish(Event{Name: EventPaymentSuccess, Data: PaymentSuccess{MD5: fingerprint}})
}

// Close disconnects every subscriber. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
	}
	h.subs = map[*Subscription]struct{}{}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
