// Package httpfacade provides a configurable facade stub for HTTP tests.
package httpfacade

import (
	"context"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	pkgAuth "github.com/polkiloo/bakehouse/internal/pkg/auth"
	"github.com/polkiloo/bakehouse/internal/realtime"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

// Stub implements every handler facade. Unset funcs return zero values.
type Stub struct {
	RegisterFn      func(ctx context.Context, in usecase.RegisterInput) (string, error)
	AuthenticateFn  func(ctx context.Context, login, password string) (string, error)
	ParseTokenFn    func(token string) (pkgAuth.Claims, error)
	LogoutFn        func(ctx context.Context, customerID int64) error
	ProfileFn       func(ctx context.Context, customerID int64) (*model.Customer, error)
	UpdateProfileFn func(ctx context.Context, customerID int64, name, phone string, address model.Address) (*model.Customer, error)

	ProductsFn func(ctx context.Context) ([]model.Product, error)

	// CartFn answers every cart operation; op names the called method.
	CartFn func(ctx context.Context, op string, customerID int64, arg any) (*usecase.CartView, error)

	SubmitFn       func(ctx context.Context, customerID int64, in usecase.SubmitInput) (*usecase.SubmitResult, error)
	CancelFn       func(ctx context.Context, customerID, orderID int64) (*usecase.TransitionResult, error)
	HistoryFn      func(ctx context.Context, customerID int64, limit int) ([]usecase.HistoryEntry, error)
	RepeatLastFn   func(ctx context.Context, customerID int64) (*usecase.RepeatResult, error)
	TrackFn        func(ctx context.Context, customerID, orderID int64) (<-chan realtime.TrackUpdate, error)
	StopTrackingFn func(ctx context.Context, customerID int64) error

	DayFn            func(raw string) (time.Time, error)
	DashboardFn      func(ctx context.Context, day time.Time) (*realtime.Snapshot, error)
	WatchDashboardFn func(ctx context.Context, day time.Time) (<-chan realtime.Snapshot, error)
	AdvanceFn        func(ctx context.Context, orderID int64) (*usecase.TransitionResult, error)

	HealthErr error
}

func (s Stub) Register(ctx context.Context, in usecase.RegisterInput) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, in)
	}
	return "token", nil
}

func (s Stub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken accepts any token as customer 1 unless ParseTokenFn is set.
func (s Stub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseTokenFn != nil {
		return s.ParseTokenFn(token)
	}
	return pkgAuth.Claims{CustomerID: 1, Role: model.RoleCustomer}, nil
}

func (s Stub) Logout(ctx context.Context, customerID int64) error {
	if s.LogoutFn != nil {
		return s.LogoutFn(ctx, customerID)
	}
	return nil
}

func (s Stub) Profile(ctx context.Context, customerID int64) (*model.Customer, error) {
	if s.ProfileFn != nil {
		return s.ProfileFn(ctx, customerID)
	}
	return &model.Customer{ID: customerID}, nil
}

func (s Stub) UpdateProfile(ctx context.Context, customerID int64, name, phone string, address model.Address) (*model.Customer, error) {
	if s.UpdateProfileFn != nil {
		return s.UpdateProfileFn(ctx, customerID, name, phone, address)
	}
	return &model.Customer{ID: customerID, Name: name, Phone: phone, Address: address}, nil
}

func (s Stub) Products(ctx context.Context) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx)
	}
	return nil, nil
}

func (s Stub) cart(ctx context.Context, op string, customerID int64, arg any) (*usecase.CartView, error) {
	if s.CartFn != nil {
		return s.CartFn(ctx, op, customerID, arg)
	}
	return &usecase.CartView{Mode: model.DeliveryModeDeliver}, nil
}

func (s Stub) Cart(ctx context.Context, customerID int64) (*usecase.CartView, error) {
	return s.cart(ctx, "Cart", customerID, nil)
}

func (s Stub) AddItem(ctx context.Context, customerID int64, in usecase.AddItemInput) (*usecase.CartView, error) {
	return s.cart(ctx, "AddItem", customerID, in)
}

func (s Stub) IncrementItem(ctx context.Context, customerID int64, index int) (*usecase.CartView, error) {
	return s.cart(ctx, "IncrementItem", customerID, index)
}

func (s Stub) DecrementItem(ctx context.Context, customerID int64, index int) (*usecase.CartView, error) {
	return s.cart(ctx, "DecrementItem", customerID, index)
}

func (s Stub) ClearCart(ctx context.Context, customerID int64) (*usecase.CartView, error) {
	return s.cart(ctx, "ClearCart", customerID, nil)
}

func (s Stub) SetMode(ctx context.Context, customerID int64, mode model.DeliveryMode) (*usecase.CartView, error) {
	return s.cart(ctx, "SetMode", customerID, mode)
}

func (s Stub) ApplyCoupon(ctx context.Context, customerID int64, code string) (*usecase.CartView, error) {
	return s.cart(ctx, "ApplyCoupon", customerID, code)
}

func (s Stub) RemoveCoupon(ctx context.Context, customerID int64) (*usecase.CartView, error) {
	return s.cart(ctx, "RemoveCoupon", customerID, nil)
}

func (s Stub) Submit(ctx context.Context, customerID int64, in usecase.SubmitInput) (*usecase.SubmitResult, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, customerID, in)
	}
	return &usecase.SubmitResult{OrderID: 1, Created: true}, nil
}

func (s Stub) Cancel(ctx context.Context, customerID, orderID int64) (*usecase.TransitionResult, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, customerID, orderID)
	}
	return &usecase.TransitionResult{OrderID: orderID, Applied: true, Status: model.OrderStatusCancelled}, nil
}

func (s Stub) History(ctx context.Context, customerID int64, limit int) ([]usecase.HistoryEntry, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, customerID, limit)
	}
	return nil, nil
}

func (s Stub) RepeatLast(ctx context.Context, customerID int64) (*usecase.RepeatResult, error) {
	if s.RepeatLastFn != nil {
		return s.RepeatLastFn(ctx, customerID)
	}
	return &usecase.RepeatResult{}, nil
}

// Track returns a closed channel unless TrackFn is set.
func (s Stub) Track(ctx context.Context, customerID, orderID int64) (<-chan realtime.TrackUpdate, error) {
	if s.TrackFn != nil {
		return s.TrackFn(ctx, customerID, orderID)
	}
	ch := make(chan realtime.TrackUpdate)
	close(ch)
	return ch, nil
}

func (s Stub) StopTracking(ctx context.Context, customerID int64) error {
	if s.StopTrackingFn != nil {
		return s.StopTrackingFn(ctx, customerID)
	}
	return nil
}

func (s Stub) Day(raw string) (time.Time, error) {
	if s.DayFn != nil {
		return s.DayFn(raw)
	}
	return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), nil
}

func (s Stub) Dashboard(ctx context.Context, day time.Time) (*realtime.Snapshot, error) {
	if s.DashboardFn != nil {
		return s.DashboardFn(ctx, day)
	}
	return &realtime.Snapshot{Date: day.Format("2006-01-02")}, nil
}

// WatchDashboard returns a closed channel unless WatchDashboardFn is set.
func (s Stub) WatchDashboard(ctx context.Context, day time.Time) (<-chan realtime.Snapshot, error) {
	if s.WatchDashboardFn != nil {
		return s.WatchDashboardFn(ctx, day)
	}
	ch := make(chan realtime.Snapshot)
	close(ch)
	return ch, nil
}

func (s Stub) Advance(ctx context.Context, orderID int64) (*usecase.TransitionResult, error) {
	if s.AdvanceFn != nil {
		return s.AdvanceFn(ctx, orderID)
	}
	return &usecase.TransitionResult{OrderID: orderID, Applied: true, Status: model.OrderStatusPreparing}, nil
}

func (s Stub) HealthCheck(ctx context.Context) error {
	return s.HealthErr
}
