package model

import "github.com/shopspring/decimal"

// Option is one choice inside a mutually exclusive option group.
type Option struct {
	ID         int64           `json:"id"`
	Group      string          `json:"group"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// Addon is an independently toggleable extra.
type Addon struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// Product is a catalog entry with its currently known stock.
type Product struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
	Options []Option        `json:"options,omitempty"`
	Addons  []Addon         `json:"addons,omitempty"`
}

// FindOption looks up an option of the product by id.
func (p Product) FindOption(id int64) (Option, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// FindAddon looks up an addon of the product by id.
func (p Product) FindAddon(id int64) (Addon, bool) {
	for _, a := range p.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}
