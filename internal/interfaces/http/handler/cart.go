package handler

import (
	cartapp "github.com/pharmacy/backend/internal/application/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler handles shopping cart HTTP requests
type CartHandler struct {
	BaseHandler
	cart *cartapp.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cartapp.Service) *CartHandler {
	return &CartHandler{cart: cartService}
}

// Get returns the customer's cart
func (h *CartHandler) Get(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	snapshot, err := h.cart.Get(c.Request.Context(), uid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// AddItem adds quantity of a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	productID, err := parseUUID(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	snapshot, err := h.cart.AddItem(c.Request.Context(), uid, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// UpdateItem sets the quantity of a cart line; zero removes it
func (h *CartHandler) UpdateItem(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	snapshot, err := h.cart.UpdateItem(c.Request.Context(), uid, productID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// RemoveItem deletes a cart line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	productID, err := pathID(c, "productId")
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	snapshot, err := h.cart.RemoveItem(c.Request.Context(), uid, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.cart.Clear(c.Request.Context(), uid); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
