package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StaffHandler serves the back-office board.
type StaffHandler struct {
	facade StaffFacade
}

// NewStaffHandler constructs StaffHandler.
func NewStaffHandler(facade StaffFacade) *StaffHandler {
	return &StaffHandler{facade: facade}
}

// Orders handles GET /api/staff/orders.
func (h *StaffHandler) Orders(c *gin.Context) {
	day, err := h.facade.Day(c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	snap, err := h.facade.Dashboard(c.Request.Context(), day)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSnapshotResponse(snap))
}

// Advance handles POST /api/staff/orders/:id/advance.
func (h *StaffHandler) Advance(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.facade.Advance(c.Request.Context(), orderID)
	writeTransition(c, result, err)
}
