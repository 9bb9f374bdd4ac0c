package model

import (
	"strconv"
	"strings"
	"time"
)

// StepStatus tracks one step of the order submission saga.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepDone      StepStatus = "done"
	StepFailed    StepStatus = "failed"
	StepAbandoned StepStatus = "abandoned"
)

const (
	StepInsertOrder    = "insert_order"
	StepConsumeCoupon  = "consume_coupon"
	stepDecrementStock = "decrement_stock:"
)

// DecrementStockStep names the stock step of one product.
func DecrementStockStep(productID int64) string {
	return stepDecrementStock + strconv.FormatInt(productID, 10)
}

// IsDecrementStock reports whether step is a stock step.
func IsDecrementStock(step string) bool {
	return strings.HasPrefix(step, stepDecrementStock)
}

// OrderStep is a row of the submission saga log.
type OrderStep struct {
	ID         int64
	OrderID    int64
	Step       string
	Status     StepStatus
	ProductID  int64
	Quantity   int
	CouponCode string
	Attempts   int
	LastError  string
	UpdatedAt  time.Time
}
