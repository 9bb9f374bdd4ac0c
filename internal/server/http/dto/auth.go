package dto

import (
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// AuthRequest describes login/password payload.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RegisterRequest is the storefront sign-up form.
type RegisterRequest struct {
	Login    string        `json:"login"`
	Password string        `json:"password"`
	Name     string        `json:"name"`
	Phone    string        `json:"phone"`
	Address  model.Address `json:"address"`
}

// TokenResponse carries an issued auth token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ProfileRequest replaces the contact data of the customer.
type ProfileRequest struct {
	Name    string        `json:"name"`
	Phone   string        `json:"phone"`
	Address model.Address `json:"address"`
}

// ProfileResponse describes the authenticated customer.
type ProfileResponse struct {
	ID        int64         `json:"id"`
	Login     string        `json:"login"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Address   model.Address `json:"address"`
	Role      string        `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
}
