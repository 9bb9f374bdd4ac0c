// Package pricing turns a cart into itemized totals. It performs no I/O.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// FeeTable resolves the delivery fee of a district/city pair.
type FeeTable struct {
	Default   decimal.Decimal
	Overrides map[model.FeeKey]decimal.Decimal
}

// Lookup returns the override for key or the default fee.
func (t FeeTable) Lookup(key model.FeeKey) decimal.Decimal {
	if fee, ok := t.Overrides[key]; ok {
		return model.RoundCents(fee)
	}
	return model.RoundCents(t.Default)
}

// Delivery is the delivery selection of the cart session.
type Delivery struct {
	Mode model.DeliveryMode
	Key  model.FeeKey
	Fees FeeTable
}

// Pickup is a delivery selection without fee.
func Pickup() Delivery {
	return Delivery{Mode: model.DeliveryModePickup}
}

// Compute prices the lines. A nil or malformed coupon yields no discount.
func Compute(lines []model.CartLine, coupon *model.Coupon, delivery Delivery) model.Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	subtotal = model.RoundCents(subtotal)

	discount := Discount(subtotal, coupon)
	adjusted := subtotal.Sub(discount)
	if adjusted.IsNegative() {
		adjusted = decimal.Zero
	}

	fee := decimal.Zero
	if delivery.Mode == model.DeliveryModeDeliver {
		fee = delivery.Fees.Lookup(delivery.Key)
	}

	return model.Totals{
		Subtotal:         subtotal,
		Discount:         discount,
		AdjustedSubtotal: adjusted,
		DeliveryFee:      fee,
		Total:            model.RoundCents(adjusted.Add(fee)),
	}
}

// Discount computes the coupon discount over subtotal, rounded to cents.
func Discount(subtotal decimal.Decimal, coupon *model.Coupon) decimal.Decimal {
	if coupon == nil || coupon.Magnitude.IsNegative() {
		return decimal.Zero
	}
	switch coupon.Kind {
	case model.DiscountPercentage:
		return model.RoundCents(subtotal.Mul(coupon.Magnitude).Div(hundred))
	case model.DiscountFixed:
		return model.RoundCents(decimal.Min(coupon.Magnitude, subtotal))
	}
	return decimal.Zero
}
