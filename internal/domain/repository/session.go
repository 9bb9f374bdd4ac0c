package repository

import (
	"context"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// SessionRepository persists customer sessions (cart, coupon, tracked order).
type SessionRepository interface {
	Load(ctx context.Context, customerID int64) (*model.SessionState, error)
	Save(ctx context.Context, state model.SessionState) error
	Delete(ctx context.Context, customerID int64) error
}
