package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// --- ProductRepository implementation ---

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	const query = `SELECT id, name, price::text, stock FROM products WHERE active ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	index := make(map[int64]int)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		index[p.ID] = len(products)
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	options, err := r.options(ctx, `SELECT id, product_id, group_name, name, price_delta::text FROM product_options ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for productID, opts := range options {
		if i, ok := index[productID]; ok {
			products[i].Options = opts
		}
	}
	addons, err := r.addons(ctx, `SELECT id, product_id, name, price_delta::text FROM product_addons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	for productID, list := range addons {
		if i, ok := index[productID]; ok {
			products[i].Addons = list
		}
	}
	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	const query = `SELECT id, name, price::text, stock FROM products WHERE id=$1 AND active`
	p, err := scanProduct(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	options, err := r.options(ctx, `SELECT id, product_id, group_name, name, price_delta::text
                                    FROM product_options WHERE product_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	addons, err := r.addons(ctx, `SELECT id, product_id, name, price_delta::text
                                  FROM product_addons WHERE product_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	p.Options = options[id]
	p.Addons = addons[id]
	return p, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p     model.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Stock); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = parseMoney("price", price); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) options(ctx context.Context, query string, args ...any) (map[int64][]model.Option, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.Option)
	for rows.Next() {
		var (
			o         model.Option
			productID int64
			delta     string
		)
		if err := rows.Scan(&o.ID, &productID, &o.Group, &o.Name, &delta); err != nil {
			return nil, err
		}
		if o.PriceDelta, err = parseMoney("price_delta", delta); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) addons(ctx context.Context, query string, args ...any) (map[int64][]model.Addon, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.Addon)
	for rows.Next() {
		var (
			a         model.Addon
			productID int64
			delta     string
		)
		if err := rows.Scan(&a.ID, &productID, &a.Name, &delta); err != nil {
			return nil, err
		}
		if a.PriceDelta, err = parseMoney("price_delta", delta); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- CouponRepository implementation ---

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	const query = `SELECT code, kind, magnitude::text, uses, max_uses, expires_at, active FROM coupons WHERE code=$1`
	var (
		c         model.Coupon
		magnitude string
	)
	err := r.storage.pool.QueryRow(ctx, query, model.NormalizeCouponCode(code)).
		Scan(&c.Code, &c.Kind, &magnitude, &c.Uses, &c.MaxUses, &c.ExpiresAt, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if c.Magnitude, err = parseMoney("magnitude", magnitude); err != nil {
		return nil, err
	}
	return &c, nil
}

// --- DeliveryFeeRepository implementation ---

func (r *deliveryFeeRepository) Overrides(ctx context.Context) (map[model.FeeKey]decimal.Decimal, error) {
	const query = `SELECT district, city, fee::text FROM delivery_fees`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fees := make(map[model.FeeKey]decimal.Decimal)
	for rows.Next() {
		var district, city, raw string
		if err := rows.Scan(&district, &city, &raw); err != nil {
			return nil, err
		}
		fee, err := parseMoney("fee", raw)
		if err != nil {
			return nil, err
		}
		fees[model.NewFeeKey(district, city)] = fee
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fees, nil
}
