package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	"github.com/polkiloo/bakehouse/internal/pricing"
)

// Quoter resolves the delivery selection of a customer for the pricing engine.
type Quoter struct {
	fees       repository.DeliveryFeeRepository
	defaultFee decimal.Decimal
}

// NewQuoter constructs Quoter.
func NewQuoter(fees repository.DeliveryFeeRepository, settings Settings) *Quoter {
	return &Quoter{fees: fees, defaultFee: settings.DefaultDeliveryFee}
}

// Delivery builds the fee lookup keyed by the customer's stored district and city.
func (q *Quoter) Delivery(ctx context.Context, address model.Address, mode model.DeliveryMode) (pricing.Delivery, error) {
	if mode != model.DeliveryModeDeliver {
		return pricing.Pickup(), nil
	}
	overrides, err := q.fees.Overrides(ctx)
	if err != nil {
		return pricing.Delivery{}, fmt.Errorf("load delivery fees: %w", err)
	}
	return pricing.Delivery{
		Mode: model.DeliveryModeDeliver,
		Key:  model.NewFeeKey(address.District, address.City),
		Fees: pricing.FeeTable{Default: q.defaultFee, Overrides: overrides},
	}, nil
}
