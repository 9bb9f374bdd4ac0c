package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bakehouse/internal/domain/model"
	"github.com/polkiloo/bakehouse/internal/server/http/dto"
	"github.com/polkiloo/bakehouse/internal/usecase"
)

// CartHandler manages the session cart.
type CartHandler struct {
	facade CartFacade
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(facade CartFacade) *CartHandler {
	return &CartHandler{facade: facade}
}

func (h *CartHandler) respond(c *gin.Context, view *usecase.CartView, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

// View handles GET /api/cart.
func (h *CartHandler) View(c *gin.Context) {
	view, err := h.facade.Cart(c.Request.Context(), CurrentCustomerID(c))
	h.respond(c, view, err)
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		badRequest(c, "product_id required")
		return
	}
	view, err := h.facade.AddItem(c.Request.Context(), CurrentCustomerID(c), usecase.AddItemInput{
		ProductID: req.ProductID,
		OptionIDs: req.OptionIDs,
		AddonIDs:  req.AddonIDs,
		Note:      req.Note,
	})
	h.respond(c, view, err)
}

// Increment handles POST /api/cart/items/:index/increment.
func (h *CartHandler) Increment(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	view, err := h.facade.IncrementItem(c.Request.Context(), CurrentCustomerID(c), index)
	h.respond(c, view, err)
}

// Decrement handles POST /api/cart/items/:index/decrement.
func (h *CartHandler) Decrement(c *gin.Context) {
	index, ok := lineIndex(c)
	if !ok {
		return
	}
	view, err := h.facade.DecrementItem(c.Request.Context(), CurrentCustomerID(c), index)
	h.respond(c, view, err)
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(c *gin.Context) {
	view, err := h.facade.ClearCart(c.Request.Context(), CurrentCustomerID(c))
	h.respond(c, view, err)
}

// SetMode handles PUT /api/cart/mode.
func (h *CartHandler) SetMode(c *gin.Context) {
	var req dto.ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	view, err := h.facade.SetMode(c.Request.Context(), CurrentCustomerID(c), model.DeliveryMode(req.Mode))
	h.respond(c, view, err)
}

// ApplyCoupon handles POST /api/cart/coupon.
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req dto.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	view, err := h.facade.ApplyCoupon(c.Request.Context(), CurrentCustomerID(c), req.Code)
	h.respond(c, view, err)
}

// RemoveCoupon handles DELETE /api/cart/coupon.
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	view, err := h.facade.RemoveCoupon(c.Request.Context(), CurrentCustomerID(c))
	h.respond(c, view, err)
}

func lineIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid index")
		return 0, false
	}
	return index, true
}
