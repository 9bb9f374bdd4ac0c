package realtime

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type dropCounter struct {
	n atomic.Int64
}

func (d *dropCounter) EventDropped() { d.n.Add(1) }

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func requireClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel was not closed")
		}
	}
}

func updateEvent(id int64) Event {
	return Event{Type: EventUpdate, Table: OrdersTable, New: &OrderRow{ID: id}, Old: &OrderRow{ID: id}}
}

func TestHubDeliversMatchingEvents(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	defer hub.Close()

	scoped := make(chan Event, 4)
	broad := make(chan Event, 4)
	hub.Subscribe(OrdersTable, Filter{OrderID: 7}, func(e Event) { scoped <- e })
	hub.Subscribe(OrdersTable, Filter{}, func(e Event) { broad <- e })
	hub.Subscribe("customers", Filter{}, func(Event) { t.Error("other table must not receive order events") })

	hub.Publish(updateEvent(8))
	hub.Publish(updateEvent(7))

	require.Equal(t, int64(8), recv(t, broad).OrderID())
	require.Equal(t, int64(7), recv(t, broad).OrderID())
	require.Equal(t, int64(7), recv(t, scoped).OrderID())
	require.Len(t, scoped, 0)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	defer hub.Close()

	var mu sync.Mutex
	count := 0
	id := hub.Subscribe(OrdersTable, Filter{}, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.Equal(t, 1, hub.Subscribers())
	require.True(t, hub.Unsubscribe(id))
	require.False(t, hub.Unsubscribe(id))
	require.Equal(t, 0, hub.Subscribers())

	hub.Publish(updateEvent(1))
	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Zero(t, count)
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	drops := &dropCounter{}
	hub := NewHub(discardLogger(), drops)
	hub.bufSize = 1
	defer hub.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	hub.Subscribe(OrdersTable, Filter{}, func(Event) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})

	hub.Publish(updateEvent(1))
	recv(t, started)
	hub.Publish(updateEvent(2))
	hub.Publish(updateEvent(3))
	close(release)

	require.Equal(t, int64(1), drops.n.Load())
}

func TestHubCloseStopsSubscribers(t *testing.T) {
	hub := NewHub(discardLogger(), nil)
	hub.Subscribe(OrdersTable, Filter{}, func(Event) {})
	hub.Close()
	require.Equal(t, 0, hub.Subscribers())

	hub.Subscribe(OrdersTable, Filter{}, func(Event) {})
	require.Equal(t, 0, hub.Subscribers(), "subscriptions after close are ignored")
}
