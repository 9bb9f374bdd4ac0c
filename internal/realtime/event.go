// Package realtime turns order table changes into subscriber callbacks and
// drives the customer tracker and the staff dashboard from them.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/polkiloo/bakehouse/internal/domain/model"
)

// OrdersTable is the only table with change notifications.
const OrdersTable = "orders"

// EventType tags the change carried by an Event.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
	// EventResync tells subscribers that notifications may have been lost
	// and their state must be refetched.
	EventResync EventType = "resync"
)

// OrderRow is the part of an order row carried by a notification.
type OrderRow struct {
	ID              int64             `json:"id"`
	CustomerID      int64             `json:"customer_id"`
	Status          model.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	StatusChangedAt time.Time         `json:"status_changed_at"`
}

// Event is a change of one row. Insert carries New, delete carries Old,
// update carries both. Resync carries neither.
type Event struct {
	Type  EventType
	Table string
	New   *OrderRow
	Old   *OrderRow
}

// OrderID returns the id of the changed row, or 0 for a resync.
func (e Event) OrderID() int64 {
	switch {
	case e.New != nil:
		return e.New.ID
	case e.Old != nil:
		return e.Old.ID
	}
	return 0
}

// Filter narrows a subscription. Zero values match everything.
type Filter struct {
	OrderID int64
	Types   []EventType
}

// Match reports whether the event passes the filter. Resync always passes.
func (f Filter) Match(e Event) bool {
	if e.Type == EventResync {
		return true
	}
	if f.OrderID != 0 && e.OrderID() != f.OrderID {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == e.Type {
			return true
		}
	}
	return false
}

type notification struct {
	Op              EventType         `json:"op"`
	Table           string            `json:"table"`
	ID              int64             `json:"id"`
	CustomerID      int64             `json:"customer_id"`
	Status          model.OrderStatus `json:"status"`
	OldStatus       model.OrderStatus `json:"old_status"`
	CreatedAt       time.Time         `json:"created_at"`
	StatusChangedAt time.Time         `json:"status_changed_at"`
}

// DecodeNotification parses the payload sent by the orders trigger.
func DecodeNotification(payload string) (Event, error) {
	var n notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Event{}, fmt.Errorf("decode notification: %w", err)
	}
	row := func(status model.OrderStatus) *OrderRow {
		return &OrderRow{
			ID:              n.ID,
			CustomerID:      n.CustomerID,
			Status:          status,
			CreatedAt:       n.CreatedAt,
			StatusChangedAt: n.StatusChangedAt,
		}
	}

	e := Event{Type: n.Op, Table: n.Table}
	switch n.Op {
	case EventInsert:
		e.New = row(n.Status)
	case EventUpdate:
		e.New = row(n.Status)
		e.Old = row(n.OldStatus)
	case EventDelete:
		e.Old = row(n.OldStatus)
	default:
		return Event{}, fmt.Errorf("decode notification: unknown op %q", n.Op)
	}
	if e.Table == "" {
		e.Table = OrdersTable
	}
	return e, nil
}
