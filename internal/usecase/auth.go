package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/domain/repository"
	pkgAuth "github.com/polkiloo/bakehouse/internal/pkg/auth"
)

// RegisterInput carries the storefront sign-up form.
type RegisterInput struct {
	Login    string
	Password string
	Name     string
	Phone    string
	Address  model.Address
}

// AuthUseCase handles customer accounts and token management.
type AuthUseCase struct {
	customers repository.CustomerRepository
	hasher    pkgAuth.PasswordHasher
	tokens    pkgAuth.Strategy
	settings  Settings
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(customers repository.CustomerRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy, settings Settings) *AuthUseCase {
	return &AuthUseCase{customers: customers, hasher: hasher, tokens: strategy, settings: settings}
}

// Register creates a new customer and returns auth token.
func (u *AuthUseCase) Register(ctx context.Context, in RegisterInput) (*model.Customer, string, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", domainErrors.NewValidationError("name", "required")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, pkgAuth.ErrWeakPassword) {
			return nil, "", domainErrors.NewValidationError("password", "too short")
		}
		return nil, "", err
	}

	role := model.RoleCustomer
	if u.settings.isStaff(login) {
		role = model.RoleStaff
	}

	customer, err := u.customers.Create(ctx, model.Customer{
		Login:        login,
		PasswordHash: hash,
		Name:         name,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      in.Address,
		Role:         role,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(customer.ID, customer.Role)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.Customer, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	customer, err := u.customers.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(customer.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(customer.ID, customer.Role)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// ParseToken extracts the token claims.
func (u *AuthUseCase) ParseToken(token string) (pkgAuth.Claims, error) {
	if token == "" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches customer by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return u.customers.GetByID(ctx, id)
}

// UpdateProfile replaces contact data and delivery address.
func (u *AuthUseCase) UpdateProfile(ctx context.Context, id int64, name, phone string, address model.Address) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainErrors.NewValidationError("name", "required")
	}
	if err := u.customers.UpdateProfile(ctx, id, name, strings.TrimSpace(phone), address); err != nil {
		return nil, err
	}
	return u.customers.GetByID(ctx, id)
}
