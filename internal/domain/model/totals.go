package model

import "github.com/shopspring/decimal"

// Totals is the itemized result of pricing a cart.
type Totals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	AdjustedSubtotal decimal.Decimal `json:"adjusted_subtotal"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	Total            decimal.Decimal `json:"total"`
}
