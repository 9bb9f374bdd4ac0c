package handlers

import (
	"context"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	pkgAuth "github.com/polkiloo/bakehouse/internal/pkg/auth"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

// AuthFacade describes account capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, in usecase.RegisterInput) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
	Logout(ctx context.Context, customerID int64) error
	Profile(ctx context.Context, customerID int64) (*model.Customer, error)
	UpdateProfile(ctx context.Context, customerID int64, name, phone string, address model.Address) (*model.Customer, error)
}

// CatalogFacade lists the products on sale.
type CatalogFacade interface {
	Products(ctx context.Context) ([]model.Product, error)
}

// CartFacade mutates the session cart.
type CartFacade interface {
	Cart(ctx context.Context, customerID int64) (*usecase.CartView, error)
	AddItem(ctx context.Context, customerID int64, in usecase.AddItemInput) (*usecase.CartView, error)
	IncrementItem(ctx context.Context, customerID int64, index int) (*usecase.CartView, error)
	DecrementItem(ctx context.Context, customerID int64, index int) (*usecase.CartView, error)
	ClearCart(ctx context.Context, customerID int64) (*usecase.CartView, error)
	SetMode(ctx context.Context, customerID int64, mode model.DeliveryMode) (*usecase.CartView, error)
	ApplyCoupon(ctx context.Context, customerID int64, code string) (*usecase.CartView, error)
	RemoveCoupon(ctx context.Context, customerID int64) (*usecase.CartView, error)
}

// OrderFacade encapsulates customer order operations exposed via HTTP.
type OrderFacade interface {
	Submit(ctx context.Context, customerID int64, in usecase.SubmitInput) (*usecase.SubmitResult, error)
	Cancel(ctx context.Context, customerID, orderID int64) (*usecase.TransitionResult, error)
	History(ctx context.Context, customerID int64, limit int) ([]usecase.HistoryEntry, error)
	RepeatLast(ctx context.Context, customerID int64) (*usecase.RepeatResult, error)
	Track(ctx context.Context, customerID, orderID int64) (<-chan realtime.TrackUpdate, error)
	StopTracking(ctx context.Context, customerID int64) error
}

// StaffFacade serves the back-office dashboard.
type StaffFacade interface {
	Day(raw string) (time.Time, error)
	Dashboard(ctx context.Context, day time.Time) (*realtime.Snapshot, error)
	WatchDashboard(ctx context.Context, day time.Time) (<-chan realtime.Snapshot, error)
	Advance(ctx context.Context, orderID int64) (*usecase.TransitionResult, error)
}

// HealthFacade reports backing service health.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// BakeryFacade aggregates the full set of operations used across handlers.
type BakeryFacade interface {
	AuthFacade
	CatalogFacade
	CartFacade
	OrderFacade
	StaffFacade
	HealthFacade
}

// StreamRecorder tracks open SSE streams.
type StreamRecorder interface {
	StreamOpened(kind string) func()
}
