package handler

import (
	checkoutapp "github.com/pharmacy/backend/internal/application/checkout"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout HTTP requests
type CheckoutHandler struct {
	BaseHandler
	checkout *checkoutapp.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkoutapp.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkoutService}
}

// Checkout turns the customer's cart into an order and opens the payment window
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), uid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

type resumeCheckoutRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

// Resume re-opens the payment window for an order that is ready for payment
func (h *CheckoutHandler) Resume(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req resumeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	orderID, err := parseUUID(req.OrderID)
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	result, err := h.checkout.Resume(c.Request.Context(), uid, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
