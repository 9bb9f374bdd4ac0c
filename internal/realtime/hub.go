package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 64

// Handler receives the events of one subscription, one at a time.
type Handler func(Event)

// DropRecorder counts events a slow subscriber could not take.
type DropRecorder interface {
	EventDropped()
}

type subscriber struct {
	id      string
	table   string
	filter  Filter
	handler Handler
	events  chan Event
	done    chan struct{}
}

// Hub fans change events out to subscribers. Every subscriber has its own
// queue and goroutine so a slow handler never blocks the others.
type Hub struct {
	logger  *slog.Logger
	drops   DropRecorder
	mu      sync.RWMutex
	subs    map[string]*subscriber
	wg      sync.WaitGroup
	closed  bool
	newID   func() string
	bufSize int
}

// NewHub constructs Hub.
func NewHub(logger *slog.Logger, drops DropRecorder) *Hub {
	return &Hub{
		logger:  logger,
		drops:   drops,
		subs:    make(map[string]*subscriber),
		newID:   uuid.NewString,
		bufSize: subscriberBuffer,
	}
}

// Subscribe registers handler for events of table that pass filter and
// returns the subscription handle.
func (h *Hub) Subscribe(table string, filter Filter, handler Handler) string {
	s := &subscriber{
		id:      h.newID(),
		table:   table,
		filter:  filter,
		handler: handler,
		events:  make(chan Event, h.bufSize),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.done)
		return s.id
	}
	h.subs[s.id] = s
	h.wg.Add(1)
	go h.deliver(s)
	return s.id
}

// Unsubscribe removes the subscription. It reports false for unknown handles.
func (h *Hub) Unsubscribe(id string) bool {
	h.mu.Lock()
	s, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(s.done)
	}
	h.mu.Unlock()
	return ok
}

// Publish hands the event to every matching subscriber without blocking.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if e.Type != EventResync && s.table != e.Table {
			continue
		}
		if !s.filter.Match(e) {
			continue
		}
		select {
		case s.events <- e:
		default:
			h.logger.Warn("realtime event dropped",
				slog.String("subscription", s.id),
				slog.String("type", string(e.Type)),
				slog.Int64("order_id", e.OrderID()))
			if h.drops != nil {
				h.drops.EventDropped()
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops every subscription and waits for the delivery goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.done)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hub) deliver(s *subscriber) {
	defer h.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case e := <-s.events:
			s.handler(e)
		}
	}
}
