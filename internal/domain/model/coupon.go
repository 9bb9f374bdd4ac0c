package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountKind selects how a coupon magnitude is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Coupon is a discount code attached to the cart session.
type Coupon struct {
	Code      string          `json:"code"`
	Kind      DiscountKind    `json:"kind"`
	Magnitude decimal.Decimal `json:"magnitude"`
	Uses      int             `json:"uses"`
	MaxUses   *int            `json:"max_uses,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Active    bool            `json:"active"`
}

// NormalizeCouponCode folds a code for case-insensitive comparison.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
