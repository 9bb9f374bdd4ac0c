package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	testhelpers "github.com/polkiloo/bakehouse/internal/test"
)

var boardNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)

func newTestDashboard(orders WindowReader, hub Subscriber) *Dashboard {
	d := NewDashboard(orders, hub, discardLogger(), time.Hour)
	d.loc = time.UTC
	d.now = func() time.Time { return boardNow }
	return d
}

func TestDashboardParseDay(t *testing.T) {
	d := newTestDashboard(testhelpers.NewOrderRepositoryStub(), NewHub(discardLogger(), nil))

	today, err := d.ParseDay("")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), today)

	day, err := d.ParseDay("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), day)

	_, err = d.ParseDay("10/05/2024")
	require.Error(t, err)
}

func TestDashboardSnapshot(t *testing.T) {
	orders := testhelpers.NewOrderRepositoryStub()
	put := func(id int64, status model.OrderStatus, created, changed time.Time) {
		orders.Put(model.Order{ID: id, CustomerID: 1, Status: status, CreatedAt: created, StatusChangedAt: changed})
	}
	put(1, model.OrderStatusNew, boardNow.Add(-time.Hour), boardNow.Add(-90*time.Second))
	put(2, model.OrderStatusPreparing, boardNow.Add(-2*time.Hour), boardNow.Add(-10*time.Minute))
	put(3, model.OrderStatusDelivered, boardNow.Add(-3*time.Hour), boardNow.Add(-time.Hour))
	put(4, model.OrderStatusNew, boardNow.Add(-24*time.Hour), boardNow.Add(-24*time.Hour))

	d := newTestDashboard(orders, NewHub(discardLogger(), nil))
	day, err := d.ParseDay("2024-05-10")
	require.NoError(t, err)

	snap, err := d.Snapshot(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, "2024-05-10", snap.Date)
	require.Equal(t, day.AddDate(0, 0, 1), snap.To)
	require.Len(t, snap.Orders, 3, "orders of other days are outside the window")

	require.Equal(t, model.OrderStatusPreparing, snap.Orders[0].Next)
	require.True(t, snap.Orders[0].CanAdvance)
	require.Equal(t, 90*time.Second, snap.Orders[0].TimeInStage)
	require.Equal(t, model.OrderStatusReady, snap.Orders[1].Next)
	require.False(t, snap.Orders[2].CanAdvance)

	require.Equal(t, 1, snap.Counts[model.OrderStatusNew])
	require.Equal(t, 1, snap.Counts[model.OrderStatusPreparing])
	require.Equal(t, 1, snap.Counts[model.OrderStatusDelivered])
	require.Zero(t, snap.Counts[model.OrderStatusCancelled])
}

func TestDashboardSnapshotError(t *testing.T) {
	orders := testhelpers.NewOrderRepositoryStub()
	orders.GetErr = errors.New("db down")
	d := newTestDashboard(orders, NewHub(discardLogger(), nil))

	_, err := d.Snapshot(context.Background(), boardNow)
	require.ErrorContains(t, err, "list order window")

	hub := NewHub(discardLogger(), nil)
	defer hub.Close()
	d.hub = hub
	_, err = d.Watch(context.Background(), boardNow)
	require.Error(t, err)
	require.Equal(t, 0, hub.Subscribers())
}

func TestDashboardWatchRefetchesOnChange(t *testing.T) {
	orders := testhelpers.NewOrderRepositoryStub()
	orders.Put(model.Order{ID: 1, CustomerID: 1, Status: model.OrderStatusNew, CreatedAt: boardNow, StatusChangedAt: boardNow})
	hub := NewHub(discardLogger(), nil)
	defer hub.Close()
	d := newTestDashboard(orders, hub)

	ctx, cancel := context.WithCancel(context.Background())
	snaps, err := d.Watch(ctx, boardNow)
	require.NoError(t, err)

	first := recv(t, snaps)
	require.Equal(t, 1, first.Counts[model.OrderStatusNew])

	_, err = orders.UpdateStatusIf(ctx, 1, model.OrderStatusNew, model.OrderStatusPreparing)
	require.NoError(t, err)
	hub.Publish(updateEvent(1))

	second := recv(t, snaps)
	require.Equal(t, 0, second.Counts[model.OrderStatusNew])
	require.Equal(t, 1, second.Counts[model.OrderStatusPreparing])

	cancel()
	requireClosed(t, snaps)
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}
