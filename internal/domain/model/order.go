package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes the order lifecycle stage. Values are the stored strings.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "novo"
	OrderStatusPreparing OrderStatus = "preparando"
	OrderStatusReady     OrderStatus = "pronto"
	OrderStatusDelivered OrderStatus = "entregue"
	OrderStatusCancelled OrderStatus = "cancelado"
)

// DeliveryMode tells whether the order is delivered or picked up.
type DeliveryMode string

const (
	DeliveryModeDeliver DeliveryMode = "deliver"
	DeliveryModePickup  DeliveryMode = "pickup"
)

// Valid reports whether the mode is deliver or pickup.
func (m DeliveryMode) Valid() bool {
	return m == DeliveryModeDeliver || m == DeliveryModePickup
}

// PaymentMethod is the way the customer pays on delivery or pickup.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
)

// Valid reports whether the payment method is one of the accepted ones.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentPix:
		return true
	}
	return false
}

// OrderLine is the snapshot of a cart line stored with the order.
type OrderLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	OptionIDs   []int64         `json:"option_ids,omitempty"`
	AddonIDs    []int64         `json:"addon_ids,omitempty"`
	Note        string          `json:"note,omitempty"`
}

// Order is the persisted receipt. Only Status and StatusChangedAt change after creation.
type Order struct {
	ID              int64
	CustomerID      int64
	CustomerName    string
	CustomerPhone   string
	Address         string
	Mode            DeliveryMode
	PaymentMethod   PaymentMethod
	ChangeFor       decimal.Decimal
	Total           decimal.Decimal
	Description     string
	Lines           []OrderLine
	Status          OrderStatus
	IdempotencyKey  string
	CreatedAt       time.Time
	StatusChangedAt time.Time
}
