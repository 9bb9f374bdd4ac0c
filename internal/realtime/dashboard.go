package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/lifecycle"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

const dayLayout = "2006-01-02"

// WindowReader lists the orders created inside [from, to).
type WindowReader interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

// DashboardOrder is one row of the staff board.
type DashboardOrder struct {
	Order       model.Order
	Label       string
	Next        model.OrderStatus
	CanAdvance  bool
	TimeInStage time.Duration
}

// Snapshot is the full state of one day of orders.
type Snapshot struct {
	Date        string
	From        time.Time
	To          time.Time
	Orders      []DashboardOrder
	Counts      map[model.OrderStatus]int
	GeneratedAt time.Time
}

// Dashboard serves the staff view. It never patches a snapshot: any change
// inside the window triggers a full refetch.
type Dashboard struct {
	orders WindowReader
	hub    Subscriber
	logger *slog.Logger
	resync time.Duration
	loc    *time.Location
	now    func() time.Time
}

// NewDashboard constructs Dashboard.
func NewDashboard(orders WindowReader, hub Subscriber, logger *slog.Logger, resync time.Duration) *Dashboard {
	if resync <= 0 {
		resync = defaultResyncInterval
	}
	return &Dashboard{orders: orders, hub: hub, logger: logger, resync: resync, loc: time.Local, now: time.Now}
}

// ParseDay resolves a YYYY-MM-DD date; an empty value means today.
func (d *Dashboard) ParseDay(raw string) (time.Time, error) {
	if raw == "" {
		n := d.now().In(d.loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, d.loc), nil
	}
	day, err := time.ParseInLocation(dayLayout, raw, d.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return day, nil
}

// Snapshot fetches the orders of day and renders them.
func (d *Dashboard) Snapshot(ctx context.Context, day time.Time) (*Snapshot, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, d.loc)
	to := from.AddDate(0, 0, 1)
	orders, err := d.orders.ListWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list order window: %w", err)
	}

	now := d.now()
	snap := &Snapshot{
		Date:        from.Format(dayLayout),
		From:        from,
		To:          to,
		Orders:      make([]DashboardOrder, 0, len(orders)),
		Counts:      make(map[model.OrderStatus]int),
		GeneratedAt: now,
	}
	for _, o := range orders {
		next, ok := lifecycle.Next(o.Status)
		inStage := now.Sub(o.StatusChangedAt)
		if inStage < 0 {
			inStage = 0
		}
		snap.Orders = append(snap.Orders, DashboardOrder{
			Order:       o,
			Label:       lifecycle.Label(o.Status),
			Next:        next,
			CanAdvance:  ok,
			TimeInStage: inStage.Truncate(time.Second),
		})
		snap.Counts[o.Status]++
	}
	return snap, nil
}

// Watch streams a fresh snapshot of day after every change of the orders
// table and every resync tick. The first snapshot is fetched before Watch
// returns. The channel is closed when ctx is done.
func (d *Dashboard) Watch(ctx context.Context, day time.Time) (<-chan Snapshot, error) {
	dirty := make(chan struct{}, 1)
	subID := d.hub.Subscribe(OrdersTable, Filter{Types: []EventType{EventInsert, EventUpdate, EventDelete}}, func(Event) {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})

	first, err := d.Snapshot(ctx, day)
	if err != nil {
		d.hub.Unsubscribe(subID)
		return nil, err
	}

	out := make(chan Snapshot, 1)
	out <- *first
	go func() {
		defer close(out)
		defer d.hub.Unsubscribe(subID)

		ticker := time.NewTicker(d.resync)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-dirty:
			case <-ticker.C:
			}
			snap, err := d.Snapshot(ctx, day)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				d.logger.Warn("dashboard refetch failed", slog.String("error", err.Error()))
				continue
			}
			select {
			case out <- *snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
