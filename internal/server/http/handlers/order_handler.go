package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/bakehouse/internal/domain/errors"
	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/server/http/dto"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

// IdempotencyHeader carries the client generated submission key.
const IdempotencyHeader = "Idempotency-Key"

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Submit handles POST /api/orders.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	changeFor := decimal.Zero
	if raw := strings.TrimSpace(req.ChangeFor); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(c, domainErrors.NewValidationError("change_for", "not a number"))
			return
		}
		changeFor = parsed
	}

	result, err := h.facade.Submit(c.Request.Context(), CurrentCustomerID(c), usecase.SubmitInput{
		Mode:           model.DeliveryMode(req.Mode),
		PaymentMethod:  model.PaymentMethod(req.PaymentMethod),
		ChangeFor:      changeFor,
		Note:           req.Note,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyHeader)),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	c.JSON(status, toSubmitResponse(result))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.facade.Cancel(c.Request.Context(), CurrentCustomerID(c), orderID)
	writeTransition(c, result, err)
}

// History handles GET /api/orders/history.
func (h *OrderHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.facade.History(c.Request.Context(), CurrentCustomerID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistoryResponse(entries))
}

// RepeatLast handles POST /api/orders/repeat-last.
func (h *OrderHandler) RepeatLast(c *gin.Context) {
	result, err := h.facade.RepeatLast(c.Request.Context(), CurrentCustomerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRepeatResponse(result))
}

// writeTransition reports a lost race as a normal outcome.
func writeTransition(c *gin.Context, result *usecase.TransitionResult, err error) {
	if err != nil && !(errors.Is(err, domainErrors.ErrConflictIgnored) && result != nil) {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse(result))
}
