package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
)

// CheckCoupon reports why coupon can not be used at now, or nil.
func CheckCoupon(c model.Coupon, now time.Time) error {
	reason := domainErrors.CouponReason("")
	switch {
	case !c.Active:
		reason = domainErrors.CouponInactive
	case c.ExpiresAt != nil && !now.Before(*c.ExpiresAt):
		reason = domainErrors.CouponExpired
	case c.MaxUses != nil && c.Uses >= *c.MaxUses:
		reason = domainErrors.CouponExhausted
	default:
		return nil
	}
	return &domainErrors.CouponError{Code: c.Code, Reason: reason}
}

func lookupCoupon(ctx context.Context, coupons repository.CouponRepository, code string, now time.Time) (*model.Coupon, error) {
	normalized := model.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, &domainErrors.CouponError{Code: code, Reason: domainErrors.CouponNotFound}
	}
	c, err := coupons.GetByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, &domainErrors.CouponError{Code: normalized, Reason: domainErrors.CouponNotFound}
		}
		return nil, fmt.Errorf("lookup coupon: %w", err)
	}
	if err := CheckCoupon(*c, now); err != nil {
		return nil, err
	}
	return c, nil
}
