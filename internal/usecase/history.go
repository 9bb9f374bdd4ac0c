package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/lifecycle"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	"github.com/polkiloo/bakehouse/internal/session"
)

// Reasons an item of the last order is not re-added.
const (
	SkipProductGone       = "product_not_found"
	SkipOutOfStock        = "insufficient_stock"
	SkipCustomizationGone = "customization_unavailable"
)

// HistoryEntry is an order with its derived display label.
type HistoryEntry struct {
	Order    model.Order
	Label    string
	Stage    int
	Terminal bool
}

// SkippedItem is a line of the last order that could not be re-added.
type SkippedItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
	Reason      string
}

// RepeatResult summarizes a "repeat last order".
type RepeatResult struct {
	OrderID int64
	Added   int
	Skipped []SkippedItem
}

// HistoryUseCase is the read-only projection over a customer's past orders.
type HistoryUseCase struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	sessions *session.Manager
	settings Settings
}

// NewHistoryUseCase constructs HistoryUseCase.
func NewHistoryUseCase(orders repository.OrderRepository, products repository.ProductRepository, sessions *session.Manager, settings Settings) *HistoryUseCase {
	return &HistoryUseCase{orders: orders, products: products, sessions: sessions, settings: settings}
}

// Fetch returns the newest orders of the customer, bounded by limit.
func (u *HistoryUseCase) Fetch(ctx context.Context, customerID int64, limit int) ([]HistoryEntry, error) {
	orders, err := u.orders.ListByCustomer(ctx, customerID, u.settings.historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]HistoryEntry, 0, len(orders))
	for _, o := range orders {
		out = append(out, Describe(o))
	}
	return out, nil
}

// Describe derives the display fields of an order from its status.
func Describe(o model.Order) HistoryEntry {
	return HistoryEntry{
		Order:    o,
		Label:    lifecycle.Label(o.Status),
		Stage:    lifecycle.Stage(o.Status),
		Terminal: lifecycle.IsTerminal(o.Status),
	}
}

// RepeatLast re-adds the lines of the most recent order to the cart.
// Lines whose product is gone or out of stock are skipped and reported.
func (u *HistoryUseCase) RepeatLast(ctx context.Context, customerID int64) (*RepeatResult, error) {
	orders, err := u.orders.ListByCustomer(ctx, customerID, 1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, domainErrors.ErrNotFound
	}
	last := orders[0]
	result := &RepeatResult{OrderID: last.ID}

	_, err = u.sessions.Update(ctx, customerID, func(s *session.Session) error {
		for _, line := range last.Lines {
			skip := func(reason string) {
				result.Skipped = append(result.Skipped, SkippedItem{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					Quantity:    line.Quantity,
					Reason:      reason,
				})
			}

			product, err := u.products.GetByID(ctx, line.ProductID)
			if errors.Is(err, domainErrors.ErrNotFound) {
				skip(SkipProductGone)
				continue
			}
			if err != nil {
				return err
			}

			custom, err := resolveCustomization(*product, line.OptionIDs, line.AddonIDs, line.Note)
			if err != nil {
				skip(SkipCustomizationGone)
				continue
			}

			if err := s.Cart.AddQuantity(*product, custom, line.Quantity); err != nil {
				if errors.Is(err, domainErrors.ErrStockExceeded) {
					skip(SkipOutOfStock)
					continue
				}
				return err
			}
			result.Added += line.Quantity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
