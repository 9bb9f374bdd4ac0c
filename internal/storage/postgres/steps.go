package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

const stepColumns = `id, order_id, step, status, COALESCE(product_id, 0), quantity,
                     COALESCE(coupon_code, ''), attempts, last_error, updated_at`

func scanStep(row pgx.Row) (*model.OrderStep, error) {
	var s model.OrderStep
	if err := row.Scan(&s.ID, &s.OrderID, &s.Step, &s.Status, &s.ProductID, &s.Quantity,
		&s.CouponCode, &s.Attempts, &s.LastError, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stepRepository) Record(ctx context.Context, step model.OrderStep) (*model.OrderStep, error) {
	const query = `INSERT INTO order_steps (order_id, step, status, product_id, quantity, coupon_code)
                   VALUES ($1, $2, $3, NULLIF($4, 0), $5, NULLIF($6, ''))
                   ON CONFLICT (order_id, step) DO UPDATE SET step = EXCLUDED.step
                   RETURNING ` + stepColumns
	if step.Status == "" {
		step.Status = model.StepPending
	}
	return scanStep(r.storage.pool.QueryRow(ctx, query,
		step.OrderID, step.Step, string(step.Status), step.ProductID, step.Quantity, step.CouponCode))
}

// Apply flips the step to done and performs its side effect in the same
// transaction. A step that is already done is a no-op.
func (r *stepRepository) Apply(ctx context.Context, stepID int64) error {
	const claim = `UPDATE order_steps SET status='done', last_error='', updated_at=NOW()
                   WHERE id=$1 AND status IN ('pending', 'failed')
                   RETURNING step, COALESCE(product_id, 0), quantity, COALESCE(coupon_code, '')`
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var (
			step, coupon string
			productID    int64
			quantity     int
		)
		err := tx.QueryRow(ctx, claim, stepID).Scan(&step, &productID, &quantity, &coupon)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		switch {
		case model.IsDecrementStock(step):
			tag, err := tx.Exec(ctx, `UPDATE products SET stock = GREATEST(stock - $2, 0) WHERE id=$1`, productID, quantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("decrement stock of product %d: %w", productID, domainErrors.ErrNotFound)
			}
		case step == model.StepConsumeCoupon:
			const consume = `UPDATE coupons SET uses = uses + 1
                             WHERE code=$1 AND (max_uses IS NULL OR uses < max_uses)`
			tag, err := tx.Exec(ctx, consume, coupon)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				r.storage.logger.Warn("coupon use not counted",
					slog.String("coupon", coupon),
					slog.Int64("step_id", stepID),
				)
			}
		}
		return nil
	})
}

func (r *stepRepository) MarkFailed(ctx context.Context, stepID int64, cause string, maxAttempts int) (model.StepStatus, error) {
	const query = `UPDATE order_steps
                   SET attempts = attempts + 1,
                       last_error = $2,
                       status = CASE WHEN attempts + 1 >= $3 THEN 'abandoned' ELSE 'failed' END,
                       updated_at = NOW()
                   WHERE id=$1 AND status <> 'done'
                   RETURNING status`
	var status model.StepStatus
	err := r.storage.pool.QueryRow(ctx, query, stepID, cause, maxAttempts).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainErrors.ErrNotFound
		}
		return "", err
	}
	return status, nil
}

// ListRetryable claims failed steps, and pending steps left behind by a crashed
// submission, by touching updated_at so concurrent retriers skip them.
func (r *stepRepository) ListRetryable(ctx context.Context, limit int) ([]model.OrderStep, error) {
	const selectQuery = `SELECT ` + stepColumns + `
                         FROM order_steps
                         WHERE status = 'failed'
                            OR (status = 'pending' AND updated_at < NOW() - INTERVAL '1 minute')
                         ORDER BY updated_at, id
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`

	var steps []model.OrderStep
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		for rows.Next() {
			s, err := scanStep(rows)
			if err != nil {
				rows.Close()
				return err
			}
			steps = append(steps, *s)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, s := range steps {
			if _, err := tx.Exec(ctx, `UPDATE order_steps SET updated_at=NOW() WHERE id=$1`, s.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *stepRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.OrderStep, error) {
	const query = `SELECT ` + stepColumns + ` FROM order_steps WHERE order_id=$1 ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderStep
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
