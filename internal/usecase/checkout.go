package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	"github.com/polkiloo/bakehouse/internal/pricing"
	"github.com/polkiloo/bakehouse/internal/session"
)

// SubmitInput is the checkout form. An empty Mode uses the cart selection.
type SubmitInput struct {
	Mode           model.DeliveryMode
	PaymentMethod  model.PaymentMethod
	ChangeFor      decimal.Decimal
	Note           string
	IdempotencyKey string
}

// SubmitResult identifies the persisted order and the state of its saga.
type SubmitResult struct {
	OrderID int64
	Totals  model.Totals
	Created bool
	Steps   []model.OrderStep
}

// CheckoutUseCase turns the session cart into an order.
type CheckoutUseCase struct {
	sessions  *session.Manager
	customers repository.CustomerRepository
	coupons   repository.CouponRepository
	orders    repository.OrderRepository
	runner    *StepRunner
	quoter    *Quoter
	settings  Settings
	logger    *slog.Logger
	recorder  Recorder
	now       func() time.Time
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	sessions *session.Manager,
	customers repository.CustomerRepository,
	coupons repository.CouponRepository,
	orders repository.OrderRepository,
	runner *StepRunner,
	quoter *Quoter,
	settings Settings,
	logger *slog.Logger,
	recorder Recorder,
) *CheckoutUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &CheckoutUseCase{
		sessions:  sessions,
		customers: customers,
		coupons:   coupons,
		orders:    orders,
		runner:    runner,
		quoter:    quoter,
		settings:  settings,
		logger:    logger,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Submit validates the cart and customer, persists the order and runs the
// stock and coupon steps. The whole submission holds the session lock, so
// a customer can not submit the same cart twice concurrently. Any failure
// before the insert leaves the cart untouched.
func (u *CheckoutUseCase) Submit(ctx context.Context, customerID int64, in SubmitInput) (*SubmitResult, error) {
	var result *SubmitResult
	_, err := u.sessions.Update(ctx, customerID, func(s *session.Session) error {
		res, err := u.submit(ctx, customerID, s, in)
		if err != nil {
			return err
		}
		result = res
		s.TrackedOrderID = &res.OrderID
		if res.Created {
			s.Cart.Clear()
		}
		return nil
	})
	if err != nil {
		if result != nil {
			// The order exists; only the session write failed.
			u.logger.Error("session not updated after submission",
				slog.Int64("customer_id", customerID),
				slog.Int64("order_id", result.OrderID),
				slog.String("error", err.Error()),
			)
			return result, nil
		}
		u.recorder.OrderOperation("submit", outcomeOf(err))
		return nil, err
	}

	outcome := "ok"
	switch {
	case !result.Created:
		outcome = "duplicate"
	case PartialFailure(result.Steps):
		outcome = "partial"
	}
	u.recorder.OrderOperation("submit", outcome)
	return result, nil
}

func (u *CheckoutUseCase) submit(ctx context.Context, customerID int64, s *session.Session, in SubmitInput) (*SubmitResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := u.orders.GetByIdempotencyKey(ctx, customerID, key)
		switch {
		case err == nil:
			return u.replay(ctx, existing)
		case !errors.Is(err, domainErrors.ErrNotFound):
			return nil, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	c := s.Cart
	if c.IsEmpty() {
		return nil, domainErrors.NewValidationError("cart", "empty")
	}

	customer, err := u.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.NewValidationError("customer", "not registered")
		}
		return nil, fmt.Errorf("load customer: %w", err)
	}

	mode := in.Mode
	if mode == "" {
		mode = c.DeliveryMode()
	}
	if !mode.Valid() {
		return nil, domainErrors.NewValidationError("mode", "unknown delivery mode")
	}
	if mode == model.DeliveryModeDeliver && !customer.Address.IsComplete() {
		return nil, domainErrors.NewValidationError("address", "incomplete")
	}

	if !in.PaymentMethod.Valid() {
		return nil, domainErrors.NewValidationError("payment_method", "not selected")
	}

	var coupon *model.Coupon
	if c.Coupon != nil {
		if coupon, err = lookupCoupon(ctx, u.coupons, c.Coupon.Code, u.now()); err != nil {
			return nil, err
		}
	}

	delivery, err := u.quoter.Delivery(ctx, customer.Address, mode)
	if err != nil {
		return nil, err
	}
	totals := pricing.Compute(c.Lines, coupon, delivery)

	changeFor := decimal.Zero
	if in.PaymentMethod == model.PaymentCash && in.ChangeFor.IsPositive() {
		changeFor = model.RoundCents(in.ChangeFor)
		if changeFor.LessThan(totals.Total) {
			return nil, domainErrors.NewValidationError("change_for", "less than total")
		}
	}

	address := u.settings.PickupLocation
	if mode == model.DeliveryModeDeliver {
		address = customer.Address.String()
	}

	if key == "" {
		key = uuid.NewString()
	}

	order, created, err := u.orders.Create(ctx, model.Order{
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		Address:       address,
		Mode:          mode,
		PaymentMethod: in.PaymentMethod,
		ChangeFor:     changeFor,
		Total:         totals.Total,
		Description: composeDescription(receipt{
			lines:     c.Lines,
			totals:    totals,
			coupon:    coupon,
			mode:      mode,
			payment:   in.PaymentMethod,
			changeFor: changeFor,
			note:      in.Note,
		}),
		Lines:          snapshotLines(c.Lines),
		Status:         model.OrderStatusNew,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	if !created {
		return u.replay(ctx, order)
	}

	steps := u.runner.Start(ctx, order, c.Lines, coupon)
	if PartialFailure(steps) {
		u.logger.Warn("order persisted with pending steps",
			slog.Int64("order_id", order.ID),
			slog.Int("steps", len(steps)),
		)
	}

	return &SubmitResult{OrderID: order.ID, Totals: totals, Created: true, Steps: steps}, nil
}

// replay answers a resubmitted key with the order it already created.
func (u *CheckoutUseCase) replay(ctx context.Context, order *model.Order) (*SubmitResult, error) {
	u.logger.Info("duplicate submission",
		slog.Int64("order_id", order.ID),
		slog.String("idempotency_key", order.IdempotencyKey),
	)
	steps, err := u.runner.Steps(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order steps: %w", err)
	}
	return &SubmitResult{OrderID: order.ID, Totals: model.Totals{Total: order.Total}, Steps: steps}, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return "invalid"
	case errors.Is(err, domainErrors.ErrInvalidCoupon):
		return "coupon"
	case errors.Is(err, domainErrors.ErrConflictIgnored):
		return "conflict"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
