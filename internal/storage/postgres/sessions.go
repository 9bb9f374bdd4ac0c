package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

func (r *sessionRepository) Load(ctx context.Context, customerID int64) (*model.SessionState, error) {
	const query = `SELECT cart, tracked_order_id, updated_at FROM sessions WHERE customer_id=$1`
	state := model.SessionState{CustomerID: customerID}
	var cart []byte
	err := r.storage.pool.QueryRow(ctx, query, customerID).Scan(&cart, &state.TrackedOrderID, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	state.Cart = cart
	return &state, nil
}

func (r *sessionRepository) Save(ctx context.Context, state model.SessionState) error {
	const query = `INSERT INTO sessions (customer_id, cart, tracked_order_id, updated_at)
                   VALUES ($1, $2, $3, $4)
                   ON CONFLICT (customer_id) DO UPDATE
                   SET cart = EXCLUDED.cart,
                       tracked_order_id = EXCLUDED.tracked_order_id,
                       updated_at = EXCLUDED.updated_at`
	cart := string(state.Cart)
	if cart == "" {
		cart = "{}"
	}
	_, err := r.storage.pool.Exec(ctx, query, state.CustomerID, cart, state.TrackedOrderID, state.UpdatedAt)
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, customerID int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM sessions WHERE customer_id=$1`, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
