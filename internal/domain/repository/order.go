package repository

import (
	"context"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts the order unless the customer already used its idempotency key,
	// in which case the existing order is returned with created=false.
	Create(ctx context.Context, order model.Order) (*model.Order, bool, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// GetByIdempotencyKey finds the order a customer already submitted under key.
	GetByIdempotencyKey(ctx context.Context, customerID int64, key string) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error)
	ListWindow(ctx context.Context, from, to time.Time) ([]model.Order, error)
	// UpdateStatusIf moves the order to `to` only while its status still equals `from`.
	// It returns the number of affected rows.
	UpdateStatusIf(ctx context.Context, id int64, from, to model.OrderStatus) (int64, error)
}

// StepRepository persists the submission saga log and applies idempotent steps.
type StepRepository interface {
	Record(ctx context.Context, step model.OrderStep) (*model.OrderStep, error)
	// Apply runs the side effect of a stock or coupon step exactly once and marks it done.
	Apply(ctx context.Context, stepID int64) error
	MarkFailed(ctx context.Context, stepID int64, cause string, maxAttempts int) (model.StepStatus, error)
	ListRetryable(ctx context.Context, limit int) ([]model.OrderStep, error)
	ListByOrder(ctx context.Context, orderID int64) ([]model.OrderStep, error)
}
