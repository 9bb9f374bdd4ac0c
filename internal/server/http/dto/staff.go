package dto

import "time"

// DashboardOrderResponse is one row of the staff board.
type DashboardOrderResponse struct {
	OrderResponse
	Next        string `json:"next,omitempty"`
	CanAdvance  bool   `json:"can_advance"`
	TimeInStage int64  `json:"time_in_stage_seconds"`
}

// SnapshotResponse is the state of one day of orders.
type SnapshotResponse struct {
	Date        string                   `json:"date"`
	Orders      []DashboardOrderResponse `json:"orders"`
	Counts      map[string]int           `json:"counts"`
	GeneratedAt time.Time                `json:"generated_at"`
}
