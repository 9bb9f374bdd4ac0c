package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/lifecycle"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/session"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

const (
	defaultGracePeriod    = 30 * time.Second
	defaultResyncInterval = 30 * time.Second
)

// OrderReader loads a single order.
type OrderReader interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
}

// TrackedSessions owns the tracked order handle of a session.
type TrackedSessions interface {
	Get(ctx context.Context, customerID int64) (*session.Session, error)
	TrackOrder(ctx context.Context, customerID, orderID int64) error
	ClearTrackedOrder(ctx context.Context, customerID, orderID int64) error
}

// HistoryReader is the fallback view of a customer's orders.
type HistoryReader interface {
	Fetch(ctx context.Context, customerID int64, limit int) ([]usecase.HistoryEntry, error)
}

// Subscriber is the notification collaborator.
type Subscriber interface {
	Subscribe(table string, filter Filter, handler Handler) string
	Unsubscribe(id string) bool
}

// StatusView is the rendered state of a tracked order.
type StatusView struct {
	OrderID         int64
	Status          model.OrderStatus
	Label           string
	Stage           int
	Terminal        bool
	CanCancel       bool
	StatusChangedAt time.Time
}

// Render derives the displayed state of an order from its status.
func Render(orderID int64, status model.OrderStatus, changedAt time.Time) StatusView {
	return StatusView{
		OrderID:         orderID,
		Status:          status,
		Label:           lifecycle.Label(status),
		Stage:           lifecycle.Stage(status),
		Terminal:        lifecycle.IsTerminal(status),
		CanCancel:       lifecycle.CanCancel(status),
		StatusChangedAt: changedAt,
	}
}

// TrackKind tags a TrackUpdate.
type TrackKind string

const (
	// TrackStatus carries a new rendered status.
	TrackStatus TrackKind = "status"
	// TrackHistory carries the history fallback; tracking has ended.
	TrackHistory TrackKind = "history"
	// TrackCleared reports that the handle was dropped after the grace period.
	TrackCleared TrackKind = "cleared"
)

// TrackUpdate is one message of a tracking stream.
type TrackUpdate struct {
	Kind    TrackKind
	Status  *StatusView
	History []usecase.HistoryEntry
}

// TrackerOptions tunes the tracker timings.
type TrackerOptions struct {
	GracePeriod    time.Duration
	ResyncInterval time.Duration
	HistoryLimit   int
}

type tracking struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Tracker follows the single tracked order of a customer session.
// A customer has at most one live tracking; starting a new one stops the old.
type Tracker struct {
	orders   OrderReader
	sessions TrackedSessions
	history  HistoryReader
	hub      Subscriber
	logger   *slog.Logger
	opts     TrackerOptions

	mu     sync.Mutex
	active map[int64]*tracking
}

// NewTracker constructs Tracker.
func NewTracker(orders OrderReader, sessions TrackedSessions, history HistoryReader, hub Subscriber, logger *slog.Logger, opts TrackerOptions) *Tracker {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = defaultGracePeriod
	}
	if opts.ResyncInterval <= 0 {
		opts.ResyncInterval = defaultResyncInterval
	}
	return &Tracker{
		orders:   orders,
		sessions: sessions,
		history:  history,
		hub:      hub,
		logger:   logger,
		opts:     opts,
		active:   make(map[int64]*tracking),
	}
}

// Track starts following orderID, or the session's tracked order when orderID
// is zero. The current row is fetched before Track returns; the channel then
// receives live updates and is closed when tracking ends or ctx is done.
func (t *Tracker) Track(ctx context.Context, customerID, orderID int64) (<-chan TrackUpdate, error) {
	out := make(chan TrackUpdate, 4)

	if orderID == 0 {
		s, err := t.sessions.Get(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if s.TrackedOrderID == nil {
			if err := t.pushHistory(ctx, customerID, out); err != nil {
				return nil, err
			}
			close(out)
			return out, nil
		}
		orderID = *s.TrackedOrderID
	} else if err := t.sessions.TrackOrder(ctx, customerID, orderID); err != nil {
		return nil, err
	}

	runCtx, release := t.claim(ctx, customerID)
	events := make(chan Event, subscriberBuffer)
	subID := t.hub.Subscribe(OrdersTable, Filter{OrderID: orderID, Types: []EventType{EventUpdate, EventDelete}}, func(e Event) {
		select {
		case events <- e:
		case <-runCtx.Done():
		}
	})
	stop := func() {
		t.hub.Unsubscribe(subID)
		release()
	}

	view, found, err := t.fetch(runCtx, customerID, orderID)
	if err != nil {
		stop()
		return nil, err
	}
	if !found {
		err := t.fallback(runCtx, customerID, orderID, out)
		stop()
		if err != nil {
			return nil, err
		}
		close(out)
		return out, nil
	}
	out <- TrackUpdate{Kind: TrackStatus, Status: &view}

	go func() {
		defer close(out)
		defer stop()
		t.follow(runCtx, customerID, view, events, out)
	}()
	return out, nil
}

// Stop ends the live tracking of the customer and drops the tracked handle.
func (t *Tracker) Stop(ctx context.Context, customerID int64) error {
	t.mu.Lock()
	current := t.active[customerID]
	t.mu.Unlock()
	if current != nil {
		current.cancel()
		<-current.done
	}

	s, err := t.sessions.Get(ctx, customerID)
	if err != nil {
		return err
	}
	if s.TrackedOrderID == nil {
		return nil
	}
	return t.sessions.ClearTrackedOrder(ctx, customerID, *s.TrackedOrderID)
}

func (t *Tracker) follow(ctx context.Context, customerID int64, view StatusView, events <-chan Event, out chan<- TrackUpdate) {
	orderID := view.OrderID
	resync := time.NewTicker(t.opts.ResyncInterval)
	defer resync.Stop()

	var (
		graceTimer *time.Timer
		grace      <-chan time.Time
	)
	armGrace := func() {
		if view.Terminal && graceTimer == nil {
			graceTimer = time.NewTimer(t.opts.GracePeriod)
			grace = graceTimer.C
		}
	}
	defer func() {
		if graceTimer != nil {
			graceTimer.Stop()
		}
	}()
	armGrace()

	emit := func(next StatusView) bool {
		if next.StatusChangedAt.Before(view.StatusChangedAt) {
			return true
		}
		if next.Status == view.Status && next.StatusChangedAt.Equal(view.StatusChangedAt) {
			return true
		}
		view = next
		armGrace()
		select {
		case out <- TrackUpdate{Kind: TrackStatus, Status: &next}:
			return true
		case <-ctx.Done():
			return false
		}
	}
	refetch := func() bool {
		next, found, err := t.fetch(ctx, customerID, orderID)
		if err != nil {
			if ctx.Err() == nil {
				t.logger.Warn("tracked order refetch failed", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
			}
			return ctx.Err() == nil
		}
		if !found {
			t.endWithFallback(ctx, customerID, orderID, out)
			return false
		}
		return emit(next)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-grace:
			if err := t.sessions.ClearTrackedOrder(ctx, customerID, orderID); err != nil {
				t.logger.Warn("clear tracked order failed", slog.Int64("order_id", orderID), slog.String("error", err.Error()))
			}
			select {
			case out <- TrackUpdate{Kind: TrackCleared, Status: &view}:
			case <-ctx.Done():
				return
			}
			if err := t.pushHistory(ctx, customerID, out); err != nil && ctx.Err() == nil {
				t.logger.Warn("history fallback failed", slog.Int64("customer_id", customerID), slog.String("error", err.Error()))
			}
			return
		case <-resync.C:
			if !refetch() {
				return
			}
		case e := <-events:
			switch e.Type {
			case EventDelete:
				t.endWithFallback(ctx, customerID, orderID, out)
				return
			case EventResync:
				if !refetch() {
					return
				}
			case EventUpdate, EventInsert:
				if e.New == nil {
					continue
				}
				if !emit(Render(e.New.ID, e.New.Status, e.New.StatusChangedAt)) {
					return
				}
			}
		}
	}
}

func (t *Tracker) fetch(ctx context.Context, customerID, orderID int64) (StatusView, bool, error) {
	order, err := t.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return StatusView{}, false, nil
		}
		return StatusView{}, false, fmt.Errorf("fetch tracked order: %w", err)
	}
	if order.CustomerID != customerID {
		return StatusView{}, false, nil
	}
	return Render(order.ID, order.Status, order.StatusChangedAt), true, nil
}

func (t *Tracker) endWithFallback(ctx context.Context, customerID, orderID int64, out chan<- TrackUpdate) {
	if err := t.fallback(ctx, customerID, orderID, out); err != nil && ctx.Err() == nil {
		t.logger.Warn("history fallback failed", slog.Int64("customer_id", customerID), slog.String("error", err.Error()))
	}
}

// fallback clears the handle of a vanished order and shows the history instead.
func (t *Tracker) fallback(ctx context.Context, customerID, orderID int64, out chan<- TrackUpdate) error {
	t.logger.Info("tracked order not found", slog.Int64("customer_id", customerID), slog.Int64("order_id", orderID))
	if err := t.sessions.ClearTrackedOrder(ctx, customerID, orderID); err != nil {
		return err
	}
	return t.pushHistory(ctx, customerID, out)
}

func (t *Tracker) pushHistory(ctx context.Context, customerID int64, out chan<- TrackUpdate) error {
	entries, err := t.history.Fetch(ctx, customerID, t.opts.HistoryLimit)
	if err != nil {
		return err
	}
	select {
	case out <- TrackUpdate{Kind: TrackHistory, History: entries}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// claim registers a new tracking for the customer after stopping the previous one.
func (t *Tracker) claim(ctx context.Context, customerID int64) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)
	current := &tracking{cancel: cancel, done: make(chan struct{})}

	t.mu.Lock()
	previous := t.active[customerID]
	t.active[customerID] = current
	t.mu.Unlock()

	if previous != nil {
		previous.cancel()
		<-previous.done
	}

	var once sync.Once
	return runCtx, func() {
		once.Do(func() {
			cancel()
			t.mu.Lock()
			if t.active[customerID] == current {
				delete(t.active, customerID)
			}
			t.mu.Unlock()
			close(current.done)
		})
	}
}

// Active returns the number of customers with a live tracking.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}
