// Package lifecycle is the single authority over order status transitions.
// Every caller that advances, cancels or renders an order goes through it.
package lifecycle

import (
	"fmt"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

var next = map[model.OrderStatus]model.OrderStatus{
	model.OrderStatusNew:       model.OrderStatusPreparing,
	model.OrderStatusPreparing: model.OrderStatusReady,
	model.OrderStatusReady:     model.OrderStatusDelivered,
}

var labels = map[model.OrderStatus]string{
	model.OrderStatusNew:       "Order received",
	model.OrderStatusPreparing: "Being prepared",
	model.OrderStatusReady:     "Ready",
	model.OrderStatusDelivered: "Delivered",
	model.OrderStatusCancelled: "Cancelled",
}

// Parse validates a stored status string.
func Parse(raw string) (model.OrderStatus, error) {
	s := model.OrderStatus(raw)
	if _, ok := labels[s]; !ok {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

// Next returns the single legal forward status, or false for terminal states.
func Next(current model.OrderStatus) (model.OrderStatus, bool) {
	s, ok := next[current]
	return s, ok
}

// IsLegal reports whether from -> to is an edge of the lifecycle.
// Self transitions are never legal.
func IsLegal(from, to model.OrderStatus) bool {
	if n, ok := next[from]; ok && n == to {
		return true
	}
	return from == model.OrderStatusNew && to == model.OrderStatusCancelled
}

// CanCancel reports whether the order may still be cancelled.
func CanCancel(current model.OrderStatus) bool {
	return current == model.OrderStatusNew
}

// IsTerminal reports whether no further transition exists.
func IsTerminal(s model.OrderStatus) bool {
	return s == model.OrderStatusDelivered || s == model.OrderStatusCancelled
}

// Check returns ErrIllegalTransition for edges outside the lifecycle.
func Check(from, to model.OrderStatus) error {
	if !IsLegal(from, to) {
		return fmt.Errorf("%w: %s -> %s", domainErrors.ErrIllegalTransition, from, to)
	}
	return nil
}

// Label is the customer facing name of a status.
func Label(s model.OrderStatus) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Stage is the 1-based position on the happy path, 0 for cancelled.
func Stage(s model.OrderStatus) int {
	switch s {
	case model.OrderStatusNew:
		return 1
	case model.OrderStatusPreparing:
		return 2
	case model.OrderStatusReady:
		return 3
	case model.OrderStatusDelivered:
		return 4
	}
	return 0
}
