package app

import (
	"context"
	"errors"
	"time"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	pkgAuth "github.com/polkiloo/bakehouse/internal/pkg/auth"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/session"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

// HealthChecker reports whether the database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// BakeryFacade is the single entry point of the HTTP layer.
type BakeryFacade struct {
	auth      *usecase.AuthUseCase
	catalog   *usecase.CatalogUseCase
	cart      *usecase.CartUseCase
	checkout  *usecase.CheckoutUseCase
	orders    *usecase.OrderUseCase
	history   *usecase.HistoryUseCase
	sessions  *session.Manager
	tracker   *realtime.Tracker
	dashboard *realtime.Dashboard
	health    HealthChecker
}

// NewBakeryFacade constructs BakeryFacade.
func NewBakeryFacade(
	auth *usecase.AuthUseCase,
	catalog *usecase.CatalogUseCase,
	cart *usecase.CartUseCase,
	checkout *usecase.CheckoutUseCase,
	orders *usecase.OrderUseCase,
	history *usecase.HistoryUseCase,
	sessions *session.Manager,
	tracker *realtime.Tracker,
	dashboard *realtime.Dashboard,
	health HealthChecker,
) *BakeryFacade {
	return &BakeryFacade{
		auth:      auth,
		catalog:   catalog,
		cart:      cart,
		checkout:  checkout,
		orders:    orders,
		history:   history,
		sessions:  sessions,
		tracker:   tracker,
		dashboard: dashboard,
		health:    health,
	}
}

func (f *BakeryFacade) Register(ctx context.Context, in usecase.RegisterInput) (string, error) {
	_, token, err := f.auth.Register(ctx, in)
	return token, err
}

func (f *BakeryFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *BakeryFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

// Logout stops any live tracking and drops the whole session.
func (f *BakeryFacade) Logout(ctx context.Context, customerID int64) error {
	if err := f.tracker.Stop(ctx, customerID); err != nil {
		return err
	}
	return f.sessions.Destroy(ctx, customerID)
}

func (f *BakeryFacade) Profile(ctx context.Context, customerID int64) (*model.Customer, error) {
	return f.auth.GetByID(ctx, customerID)
}

func (f *BakeryFacade) UpdateProfile(ctx context.Context, customerID int64, name, phone string, address model.Address) (*model.Customer, error) {
	return f.auth.UpdateProfile(ctx, customerID, name, phone, address)
}

func (f *BakeryFacade) Products(ctx context.Context) ([]model.Product, error) {
	return f.catalog.Products(ctx)
}

func (f *BakeryFacade) Cart(ctx context.Context, customerID int64) (*usecase.CartView, error) {
	return f.cart.View(ctx, customerID)
}

func (f *BakeryFacade) AddItem(ctx context.Context, customerID int64, in usecase.AddItemInput) (*usecase.CartView, error) {
	return f.cart.AddItem(ctx, customerID, in)
}

func (f *BakeryFacade) IncrementItem(ctx context.Context, customerID int64, index int) (*usecase.CartView, error) {
	return f.cart.Increment(ctx, customerID, index)
}

func (f *BakeryFacade) DecrementItem(ctx context.Context, customerID int64, index int) (*usecase.CartView, error) {
	return f.cart.Decrement(ctx, customerID, index)
}

func (f *BakeryFacade) ClearCart(ctx context.Context, customerID int64) (*usecase.CartView, error) {
	return f.cart.Clear(ctx, customerID)
}

func (f *BakeryFacade) SetMode(ctx context.Context, customerID int64, mode model.DeliveryMode) (*usecase.CartView, error) {
	return f.cart.SetMode(ctx, customerID, mode)
}

func (f *BakeryFacade) ApplyCoupon(ctx context.Context, customerID int64, code string) (*usecase.CartView, error) {
	return f.cart.ApplyCoupon(ctx, customerID, code)
}

func (f *BakeryFacade) RemoveCoupon(ctx context.Context, customerID int64) (*usecase.CartView, error) {
	return f.cart.RemoveCoupon(ctx, customerID)
}

func (f *BakeryFacade) Submit(ctx context.Context, customerID int64, in usecase.SubmitInput) (*usecase.SubmitResult, error) {
	return f.checkout.Submit(ctx, customerID, in)
}

func (f *BakeryFacade) Cancel(ctx context.Context, customerID, orderID int64) (*usecase.TransitionResult, error) {
	return f.orders.Cancel(ctx, customerID, orderID)
}

func (f *BakeryFacade) Advance(ctx context.Context, orderID int64) (*usecase.TransitionResult, error) {
	return f.orders.Advance(ctx, orderID)
}

func (f *BakeryFacade) History(ctx context.Context, customerID int64, limit int) ([]usecase.HistoryEntry, error) {
	return f.history.Fetch(ctx, customerID, limit)
}

func (f *BakeryFacade) RepeatLast(ctx context.Context, customerID int64) (*usecase.RepeatResult, error) {
	return f.history.RepeatLast(ctx, customerID)
}

func (f *BakeryFacade) Track(ctx context.Context, customerID, orderID int64) (<-chan realtime.TrackUpdate, error) {
	return f.tracker.Track(ctx, customerID, orderID)
}

func (f *BakeryFacade) StopTracking(ctx context.Context, customerID int64) error {
	return f.tracker.Stop(ctx, customerID)
}

// Day resolves the dashboard date; a malformed value is a validation error.
func (f *BakeryFacade) Day(raw string) (time.Time, error) {
	day, err := f.dashboard.ParseDay(raw)
	if err != nil {
		return time.Time{}, domainErrors.NewValidationError("date", "expected YYYY-MM-DD")
	}
	return day, nil
}

func (f *BakeryFacade) Dashboard(ctx context.Context, day time.Time) (*realtime.Snapshot, error) {
	return f.dashboard.Snapshot(ctx, day)
}

func (f *BakeryFacade) WatchDashboard(ctx context.Context, day time.Time) (<-chan realtime.Snapshot, error) {
	return f.dashboard.Watch(ctx, day)
}

func (f *BakeryFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return errors.New("health checker not configured")
	}
	return f.health.HealthCheck(ctx)
}
