package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

const customerColumns = `id, login, password_hash, name, phone, street, number, district, city, complement, role, created_at`

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.Login, &c.PasswordHash, &c.Name, &c.Phone,
		&c.Address.Street, &c.Address.Number, &c.Address.District, &c.Address.City, &c.Address.Complement,
		&c.Role, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) Create(ctx context.Context, c model.Customer) (*model.Customer, error) {
	const query = `INSERT INTO customers (login, password_hash, name, phone, street, number, district, city, complement, role)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, created_at`
	if c.Role == "" {
		c.Role = model.RoleCustomer
	}
	err := r.storage.pool.QueryRow(ctx, query, c.Login, c.PasswordHash, c.Name, c.Phone,
		c.Address.Street, c.Address.Number, c.Address.District, c.Address.City, c.Address.Complement,
		string(c.Role)).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) GetByLogin(ctx context.Context, login string) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE login=$1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, login))
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return scanCustomer(r.storage.pool.QueryRow(ctx, query, id))
}

func (r *customerRepository) UpdateProfile(ctx context.Context, id int64, name, phone string, address model.Address) error {
	const query = `UPDATE customers
                   SET name=$2, phone=$3, street=$4, number=$5, district=$6, city=$7, complement=$8
                   WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, name, phone,
		address.Street, address.Number, address.District, address.City, address.Complement)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}
