package model

import (
	"encoding/json"
	"time"
)

// SessionState is the durable form of a customer session.
type SessionState struct {
	CustomerID     int64
	Cart           json.RawMessage
	TrackedOrderID *int64
	UpdatedAt      time.Time
}
