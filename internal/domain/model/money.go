package model

import "github.com/shopspring/decimal"

// RoundCents rounds a monetary amount to two fraction digits.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
