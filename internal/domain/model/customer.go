package model

import (
	"strings"
	"time"
)

// Role distinguishes storefront customers from back-office staff.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

// Address is the delivery address kept on the customer profile.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district"`
	City       string `json:"city"`
	Complement string `json:"complement,omitempty"`
}

// IsComplete reports whether the address is usable for a delivery.
func (a Address) IsComplete() bool {
	return len(strings.TrimSpace(a.Street)) >= 3 &&
		strings.TrimSpace(a.District) != "" &&
		strings.TrimSpace(a.City) != ""
}

// String renders the address in a single line for the order row.
func (a Address) String() string {
	parts := []string{strings.TrimSpace(a.Street)}
	if n := strings.TrimSpace(a.Number); n != "" {
		parts[0] += ", " + n
	}
	if c := strings.TrimSpace(a.Complement); c != "" {
		parts = append(parts, c)
	}
	parts = append(parts, strings.TrimSpace(a.District), strings.TrimSpace(a.City))
	return strings.Join(parts, " - ")
}

// Customer represents a registered storefront account.
type Customer struct {
	ID           int64
	Login        string
	PasswordHash string
	Name         string
	Phone        string
	Address      Address
	Role         Role
	CreatedAt    time.Time
}
