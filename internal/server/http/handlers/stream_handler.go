package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bakehouse/internal/realtime"
)

const (
	streamTrack     = "track"
	streamDashboard = "dashboard"
)

// StreamHandler serves the server-sent event endpoints.
type StreamHandler struct {
	orders  OrderFacade
	staff   StaffFacade
	streams StreamRecorder
}

// NewStreamHandler constructs StreamHandler. streams may be nil.
func NewStreamHandler(orders OrderFacade, staff StaffFacade, streams StreamRecorder) *StreamHandler {
	return &StreamHandler{orders: orders, staff: staff, streams: streams}
}

func (h *StreamHandler) opened(kind string) func() {
	if h.streams == nil {
		return func() {}
	}
	return h.streams.StreamOpened(kind)
}

func startStream(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

// Track handles GET /api/orders/track. Without an id the session's tracked
// order is followed; with no tracked order the history is sent and the stream ends.
func (h *StreamHandler) Track(c *gin.Context) {
	var orderID int64
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid id")
			return
		}
		orderID = id
	}

	ctx, cancel := realtime.StreamContext(c.Request.Context())
	defer cancel()
	updates, err := h.orders.Track(ctx, CurrentCustomerID(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer h.opened(streamTrack)()

	startStream(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case u, ok := <-updates:
			if !ok {
				return false
			}
			switch u.Kind {
			case realtime.TrackHistory:
				c.SSEvent(string(u.Kind), toHistoryResponse(u.History))
			default:
				c.SSEvent(string(u.Kind), toStatusResponse(u.Status))
			}
			return true
		}
	})
}

// StopTracking handles DELETE /api/orders/track.
func (h *StreamHandler) StopTracking(c *gin.Context) {
	if err := h.orders.StopTracking(c.Request.Context(), CurrentCustomerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard handles GET /api/staff/orders/stream.
func (h *StreamHandler) Dashboard(c *gin.Context) {
	day, err := h.staff.Day(c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}

	ctx, cancel := realtime.StreamContext(c.Request.Context())
	defer cancel()
	snapshots, err := h.staff.WatchDashboard(ctx, day)
	if err != nil {
		writeError(c, err)
		return
	}
	defer h.opened(streamDashboard)()

	startStream(c)
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", toSnapshotResponse(&snap))
			return true
		}
	})
}
