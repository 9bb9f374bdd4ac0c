package dto

import "time"

// SubmitRequest is the checkout form.
type SubmitRequest struct {
	Mode          string `json:"mode"`
	PaymentMethod string `json:"payment_method"`
	ChangeFor     string `json:"change_for"`
	Note          string `json:"note"`
}

// StepResponse is one entry of the submission saga log.
type StepResponse struct {
	Step      string `json:"step"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
}

// SubmitResponse identifies the created order.
type SubmitResponse struct {
	OrderID        int64          `json:"order_id"`
	Created        bool           `json:"created"`
	Totals         TotalsResponse `json:"totals"`
	PartialFailure bool           `json:"partial_failure"`
	Steps          []StepResponse `json:"steps,omitempty"`
}

// TransitionResponse reports the status after advance or cancel.
type TransitionResponse struct {
	OrderID int64  `json:"order_id"`
	Applied bool   `json:"applied"`
	Status  string `json:"status"`
}

// OrderLineResponse is a line of a stored order.
type OrderLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// OrderResponse is an order with its display fields.
type OrderResponse struct {
	ID              int64               `json:"id"`
	Status          string              `json:"status"`
	Label           string              `json:"label"`
	Stage           int                 `json:"stage"`
	Terminal        bool                `json:"terminal"`
	CustomerName    string              `json:"customer_name"`
	CustomerPhone   string              `json:"customer_phone"`
	Address         string              `json:"address"`
	Mode            string              `json:"mode"`
	PaymentMethod   string              `json:"payment_method"`
	ChangeFor       string              `json:"change_for,omitempty"`
	Total           string              `json:"total"`
	Description     string              `json:"description"`
	Lines           []OrderLineResponse `json:"lines,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	StatusChangedAt time.Time           `json:"status_changed_at"`
}

// SkippedItemResponse is a line that could not be re-added.
type SkippedItemResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Reason      string `json:"reason"`
}

// RepeatResponse summarizes "repeat last order".
type RepeatResponse struct {
	OrderID int64                 `json:"order_id"`
	Added   int                   `json:"added"`
	Skipped []SkippedItemResponse `json:"skipped"`
}

// StatusResponse is the rendered state of a tracked order.
type StatusResponse struct {
	OrderID         int64     `json:"order_id"`
	Status          string    `json:"status"`
	Label           string    `json:"label"`
	Stage           int       `json:"stage"`
	Terminal        bool      `json:"terminal"`
	CanCancel       bool      `json:"can_cancel"`
	StatusChangedAt time.Time `json:"status_changed_at"`
}

// ErrorResponse describes a refused request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}
