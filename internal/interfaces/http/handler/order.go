package handler

import (
	"time"

	orderapp "github.com/pharmacy/backend/internal/application/order"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderHandler handles customer order HTTP requests
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orderService}
}

// OrderItemResponse is the wire form of an order line
type OrderItemResponse struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// OrderResponse is the wire form of an order
type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	Status               string              `json:"status"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	RequiresPrescription bool                `json:"requires_prescription"`
	PaidAt               *time.Time          `json:"paid_at,omitempty"`
	CancellationReason   string              `json:"cancellation_reason,omitempty"`
	Items                []OrderItemResponse `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			LineTotal:       item.LineTotal(),
		})
	}
	return OrderResponse{
		ID:                   o.ID,
		Status:               o.Status.String(),
		TotalAmount:          o.TotalAmount,
		RequiresPrescription: o.RequiresPrescription,
		PaidAt:               o.PaidAt,
		CancellationReason:   o.CancellationReason,
		Items:                items,
		CreatedAt:            o.CreatedAt,
	}
}

// List returns the customer's order history, newest first
func (h *OrderHandler) List(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req struct {
		Offset int `form:"offset" binding:"min=0"`
		Limit  int `form:"limit" binding:"min=0,max=100"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	orders, err := h.orders.List(c.Request.Context(), uid, req.Offset, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, toOrderResponse(&orders[i]))
	}
	h.SuccessWithMeta(c, responses, req.Offset, req.Limit, len(responses))
}

// Get returns one of the customer's orders
func (h *OrderHandler) Get(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	o, err := h.orders.Get(c.Request.Context(), uid, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// GetActive returns the customer's in-flight order, if any
func (h *OrderHandler) GetActive(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	o, err := h.orders.GetActive(c.Request.Context(), uid)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Cancel cancels one of the customer's unpaid orders
func (h *OrderHandler) Cancel(c *gin.Context) {
	uid, err := userID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.orders.Cancel(c.Request.Context(), uid, orderID, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
