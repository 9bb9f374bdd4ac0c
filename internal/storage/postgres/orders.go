package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/lifecycle"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

const orderColumns = `id, customer_id, customer_name, customer_phone, address, mode, payment_method,
                      change_for::text, total::text, description, lines, status,
                      COALESCE(idempotency_key, ''), created_at, status_changed_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                        model.Order
		changeFor, total, status string
		lines                    []byte
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerPhone, &o.Address, &o.Mode, &o.PaymentMethod,
		&changeFor, &total, &o.Description, &lines, &status,
		&o.IdempotencyKey, &o.CreatedAt, &o.StatusChangedAt)
	if err != nil {
		return nil, err
	}
	if o.Status, err = lifecycle.Parse(status); err != nil {
		return nil, fmt.Errorf("order %d: %w", o.ID, err)
	}
	if o.ChangeFor, err = parseMoney("change_for", changeFor); err != nil {
		return nil, err
	}
	if o.Total, err = parseMoney("total", total); err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &o.Lines); err != nil {
			return nil, fmt.Errorf("decode order lines: %w", err)
		}
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order model.Order) (*model.Order, bool, error) {
	const query = `INSERT INTO orders (customer_id, customer_name, customer_phone, address, mode, payment_method,
                                      change_for, total, description, lines, status, idempotency_key)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
                   ON CONFLICT (customer_id, idempotency_key) DO NOTHING
                   RETURNING id, status, created_at, status_changed_at`
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return nil, false, fmt.Errorf("encode order lines: %w", err)
	}
	if order.Status == "" {
		order.Status = model.OrderStatusNew
	}

	err = r.storage.pool.QueryRow(ctx, query,
		order.CustomerID, order.CustomerName, order.CustomerPhone, order.Address,
		string(order.Mode), string(order.PaymentMethod),
		moneyArg(order.ChangeFor), moneyArg(order.Total), order.Description, string(lines),
		string(order.Status), order.IdempotencyKey,
	).Scan(&order.ID, &order.Status, &order.CreatedAt, &order.StatusChangedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.GetByIdempotencyKey(ctx, order.CustomerID, order.IdempotencyKey)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return &order, true, nil
}

func (r *orderRepository) GetByIdempotencyKey(ctx context.Context, customerID int64, key string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE customer_id=$1 AND idempotency_key=$2`
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, query, customerID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	o, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID int64, limit int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders WHERE customer_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`
	return r.list(ctx, query, customerID, limit)
}

func (r *orderRepository) ListWindow(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + `
                   FROM orders WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at, id`
	return r.list(ctx, query, from, to)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdateStatusIf(ctx context.Context, id int64, from, to model.OrderStatus) (int64, error) {
	const query = `UPDATE orders SET status=$3, status_changed_at=NOW() WHERE id=$1 AND status=$2`
	tag, err := r.storage.pool.Exec(ctx, query, id, string(from), string(to))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
