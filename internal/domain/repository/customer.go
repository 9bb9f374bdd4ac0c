package repository

import (
	"context"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// CustomerRepository describes persistence operations for customers.
type CustomerRepository interface {
	Create(ctx context.Context, c model.Customer) (*model.Customer, error)
	GetByLogin(ctx context.Context, login string) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	// UpdateProfile replaces name, phone and address of the customer.
	UpdateProfile(ctx context.Context, id int64, name, phone string, address model.Address) error
}
