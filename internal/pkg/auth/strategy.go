package auth

import (
	"errors"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

var ErrInvalidToken = errors.New("invalid auth token")

// Claims identifies the session owner carried by a token.
type Claims struct {
	CustomerID int64
	Role       model.Role
}

// Strategy issues and verifies session tokens.
type Strategy interface {
	IssueToken(customerID int64, role model.Role) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
