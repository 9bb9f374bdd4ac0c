// Package cart holds the ordered line items of a customer session.
package cart

import (
	"encoding/json"
	"fmt"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// Cart is the in-memory cart plus the coupon applied to it.
type Cart struct {
	Lines  []model.CartLine   `json:"lines"`
	Coupon *model.Coupon      `json:"coupon,omitempty"`
	Mode   model.DeliveryMode `json:"mode,omitempty"`
}

// AddItem adds one unit of product. Plain additions merge into an existing
// uncustomized line of the same product; customized ones always append.
func (c *Cart) AddItem(product model.Product, custom model.Customization) error {
	return c.AddQuantity(product, custom, 1)
}

// AddQuantity adds qty units of product as a single line, or rejects all of them.
func (c *Cart) AddQuantity(product model.Product, custom model.Customization, qty int) error {
	if qty < 1 {
		return domainErrors.ErrInvalidLine
	}
	if c.quantityOf(product.ID)+qty > product.Stock {
		return domainErrors.ErrStockExceeded
	}

	ref := model.ProductRef{ID: product.ID, Name: product.Name, Price: product.Price, Stock: product.Stock}
	c.refreshStock(product.ID, product.Stock)

	if custom.IsEmpty() {
		for i := range c.Lines {
			l := &c.Lines[i]
			if l.Product.ID == product.ID && l.Customization.IsEmpty() {
				l.Quantity += qty
				l.Product = ref
				return nil
			}
		}
		custom = model.Customization{}
	}

	c.Lines = append(c.Lines, model.CartLine{Product: ref, Quantity: qty, Customization: custom})
	return nil
}

// Increment adds one unit to the line at index.
func (c *Cart) Increment(index int) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	if c.quantityOf(line.Product.ID)+1 > line.Product.Stock {
		return domainErrors.ErrStockExceeded
	}
	line.Quantity++
	return nil
}

// Decrement removes one unit from the line at index, dropping the line at zero.
func (c *Cart) Decrement(index int) error {
	line, err := c.line(index)
	if err != nil {
		return err
	}
	if line.Quantity <= 1 {
		c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
		return nil
	}
	line.Quantity--
	return nil
}

// RefreshStock records the latest known stock of a product on every line of it.
func (c *Cart) RefreshStock(productID int64, stock int) {
	c.refreshStock(productID, stock)
}

// DeliveryMode is the selected mode, deliver unless pickup was chosen.
func (c *Cart) DeliveryMode() model.DeliveryMode {
	if c.Mode == model.DeliveryModePickup {
		return model.DeliveryModePickup
	}
	return model.DeliveryModeDeliver
}

// SetMode selects deliver or pickup.
func (c *Cart) SetMode(mode model.DeliveryMode) error {
	if !mode.Valid() {
		return domainErrors.NewValidationError("mode", "unknown delivery mode")
	}
	c.Mode = mode
	return nil
}

// Clear empties the cart and drops the coupon. The delivery mode is kept.
func (c *Cart) Clear() {
	c.Lines = nil
	c.Coupon = nil
}

// ApplyCoupon attaches coupon, replacing any previous one.
func (c *Cart) ApplyCoupon(coupon model.Coupon) {
	c.Coupon = &coupon
}

// RemoveCoupon detaches the coupon.
func (c *Cart) RemoveCoupon() {
	c.Coupon = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the total number of units in the cart.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Marshal encodes the cart for durable storage.
func (c *Cart) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal decodes a stored cart. Empty input yields an empty cart.
func Unmarshal(data []byte) (*Cart, error) {
	c := &Cart{}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

func (c *Cart) line(index int) (*model.CartLine, error) {
	if index < 0 || index >= len(c.Lines) {
		return nil, domainErrors.ErrInvalidLine
	}
	return &c.Lines[index], nil
}

func (c *Cart) quantityOf(productID int64) int {
	n := 0
	for _, l := range c.Lines {
		if l.Product.ID == productID {
			n += l.Quantity
		}
	}
	return n
}

func (c *Cart) refreshStock(productID int64, stock int) {
	for i := range c.Lines {
		if c.Lines[i].Product.ID == productID {
			c.Lines[i].Product.Stock = stock
		}
	}
}
