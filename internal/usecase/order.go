package usecase

import (
	"context"
	"fmt"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/lifecycle"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
)

// TransitionResult reports the status after a transition attempt.
// Applied is false when the conditional update lost a race.
type TransitionResult struct {
	OrderID int64
	Applied bool
	Status  model.OrderStatus
}

// OrderUseCase applies status transitions through the lifecycle rules.
type OrderUseCase struct {
	orders   repository.OrderRepository
	recorder Recorder
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, recorder Recorder) *OrderUseCase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &OrderUseCase{orders: orders, recorder: recorder}
}

// Get returns one order.
func (u *OrderUseCase) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	return u.orders.GetByID(ctx, orderID)
}

// Advance moves the order to its single legal next status.
// A terminal order or a lost race yields ErrConflictIgnored with the current status.
func (u *OrderUseCase) Advance(ctx context.Context, orderID int64) (*TransitionResult, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		u.recorder.OrderOperation("advance", outcomeOf(err))
		return nil, err
	}
	next, ok := lifecycle.Next(order.Status)
	if !ok {
		u.recorder.OrderOperation("advance", "conflict")
		return &TransitionResult{OrderID: orderID, Status: order.Status}, domainErrors.ErrConflictIgnored
	}
	res, err := u.transition(ctx, orderID, order.Status, next)
	u.recorder.OrderOperation("advance", outcomeOf(err))
	return res, err
}

// Cancel cancels an order of the customer while it is still new.
// Orders of other customers are reported as not found.
func (u *OrderUseCase) Cancel(ctx context.Context, customerID, orderID int64) (*TransitionResult, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err == nil && order.CustomerID != customerID {
		err = domainErrors.ErrNotFound
	}
	if err != nil {
		u.recorder.OrderOperation("cancel", outcomeOf(err))
		return nil, err
	}
	if !lifecycle.CanCancel(order.Status) {
		u.recorder.OrderOperation("cancel", "conflict")
		return &TransitionResult{OrderID: orderID, Status: order.Status}, domainErrors.ErrConflictIgnored
	}
	res, err := u.transition(ctx, orderID, order.Status, model.OrderStatusCancelled)
	u.recorder.OrderOperation("cancel", outcomeOf(err))
	return res, err
}

func (u *OrderUseCase) transition(ctx context.Context, orderID int64, from, to model.OrderStatus) (*TransitionResult, error) {
	if err := lifecycle.Check(from, to); err != nil {
		return nil, err
	}
	affected, err := u.orders.UpdateStatusIf(ctx, orderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		current, err := u.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &TransitionResult{OrderID: orderID, Status: current.Status}, domainErrors.ErrConflictIgnored
	}
	return &TransitionResult{OrderID: orderID, Applied: true, Status: to}, nil
}
