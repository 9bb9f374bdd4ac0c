package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ProductRef is the product snapshot carried by a cart line.
type ProductRef struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// Customization is the set of chosen options, addons and free text of a line.
type Customization struct {
	Options []Option `json:"options,omitempty"`
	Addons  []Addon  `json:"addons,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// IsEmpty reports whether nothing was customized.
func (c Customization) IsEmpty() bool {
	return len(c.Options) == 0 && len(c.Addons) == 0 && strings.TrimSpace(c.Note) == ""
}

// CartLine is one entry of the cart.
type CartLine struct {
	Product       ProductRef    `json:"product"`
	Quantity      int           `json:"quantity"`
	Customization Customization `json:"customization"`
}

// UnitPrice is the base price plus every chosen option and addon delta.
func (l CartLine) UnitPrice() decimal.Decimal {
	price := l.Product.Price
	for _, o := range l.Customization.Options {
		price = price.Add(o.PriceDelta)
	}
	for _, a := range l.Customization.Addons {
		price = price.Add(a.PriceDelta)
	}
	return RoundCents(price)
}

// Total is the line unit price times quantity, rounded to cents.
func (l CartLine) Total() decimal.Decimal {
	return RoundCents(l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
}
