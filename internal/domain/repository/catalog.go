package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// ProductRepository gives access to the catalog and product stock.
type ProductRepository interface {
	List(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// CouponRepository looks coupons up by case-insensitive code.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}

// DeliveryFeeRepository lists per district/city fee overrides.
type DeliveryFeeRepository interface {
	Overrides(ctx context.Context) (map[model.FeeKey]decimal.Decimal, error)
}
