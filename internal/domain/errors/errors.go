package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCoupon      = errors.New("invalid coupon")
	ErrStockExceeded      = errors.New("stock exceeded")
	ErrInvalidLine        = errors.New("invalid cart line")
	ErrConflictIgnored    = errors.New("transition already resolved")
	ErrIllegalTransition  = errors.New("illegal status transition")
)

// ValidationError reports the first submission precondition that failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CouponReason explains why a coupon was refused.
type CouponReason string

const (
	CouponNotFound  CouponReason = "not_found"
	CouponExpired   CouponReason = "expired"
	CouponExhausted CouponReason = "exhausted"
	CouponInactive  CouponReason = "inactive"
)

// CouponError reports a coupon that can not be applied.
type CouponError struct {
	Code   string
	Reason CouponReason
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon %q: %s", e.Code, e.Reason)
}

func (e *CouponError) Is(target error) bool {
	return target == ErrInvalidCoupon
}
