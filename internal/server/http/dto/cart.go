package dto

// AddItemRequest selects a product and its customization by catalog ids.
type AddItemRequest struct {
	ProductID int64   `json:"product_id"`
	OptionIDs []int64 `json:"option_ids"`
	AddonIDs  []int64 `json:"addon_ids"`
	Note      string  `json:"note"`
}

// CouponRequest carries a coupon code.
type CouponRequest struct {
	Code string `json:"code"`
}

// ModeRequest selects deliver or pickup.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// ChoiceResponse is an applied option or addon.
type ChoiceResponse struct {
	ID         int64  `json:"id"`
	Group      string `json:"group,omitempty"`
	Name       string `json:"name"`
	PriceDelta string `json:"price_delta"`
}

// LineResponse is one cart line with its derived prices.
type LineResponse struct {
	Index       int              `json:"index"`
	ProductID   int64            `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	Stock       int              `json:"stock"`
	UnitPrice   string           `json:"unit_price"`
	Total       string           `json:"total"`
	Options     []ChoiceResponse `json:"options,omitempty"`
	Addons      []ChoiceResponse `json:"addons,omitempty"`
	Note        string           `json:"note,omitempty"`
}

// CouponResponse is the coupon attached to the cart.
type CouponResponse struct {
	Code      string `json:"code"`
	Kind      string `json:"kind"`
	Magnitude string `json:"magnitude"`
}

// TotalsResponse is the itemized price of the cart.
type TotalsResponse struct {
	Subtotal         string `json:"subtotal"`
	Discount         string `json:"discount"`
	AdjustedSubtotal string `json:"adjusted_subtotal"`
	DeliveryFee      string `json:"delivery_fee"`
	Total            string `json:"total"`
}

// CartResponse is the priced cart.
type CartResponse struct {
	Lines     []LineResponse  `json:"lines"`
	Coupon    *CouponResponse `json:"coupon,omitempty"`
	Mode      string          `json:"mode"`
	ItemCount int             `json:"item_count"`
	Totals    TotalsResponse  `json:"totals"`
}
