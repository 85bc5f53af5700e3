package handler

import (
	"time"

	inventoryapp "github.com/pharmacy/backend/internal/application/inventory"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryHandler handles stock management HTTP requests
type InventoryHandler struct {
	BaseHandler
	inventory *inventoryapp.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventoryapp.Service) *InventoryHandler {
	return &InventoryHandler{inventory: inventoryService}
}

// BatchResponse is the wire form of a stock batch
type BatchResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	BatchNumber     string          `json:"batch_number"`
	InitialQuantity int             `json:"initial_quantity"`
	CurrentQuantity int             `json:"current_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Blocked         bool            `json:"blocked"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toBatchResponse(b *inventory.Batch) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		ProductID:       b.ProductID,
		BatchNumber:     b.BatchNumber,
		InitialQuantity: b.InitialQuantity,
		CurrentQuantity: b.CurrentQuantity,
		UnitPrice:       b.UnitPrice,
		ExpiryDate:      b.ExpiryDate,
		Blocked:         b.Blocked,
		CreatedAt:       b.CreatedAt,
	}
}

type registerBatchRequest struct {
	ProductID   string     `json:"product_id" binding:"required,uuid"`
	BatchNumber string     `json:"batch_number" binding:"required"`
	Quantity    int        `json:"quantity" binding:"required,min=1"`
	UnitPrice   string     `json:"unit_price" binding:"required,decimal"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

// RegisterBatch records a stock intake
func (h *InventoryHandler) RegisterBatch(c *gin.Context) {
	var req registerBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	productID, err := parseUUID(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}
	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		h.BadRequest(c, "Invalid unit price")
		return
	}

	batch, err := h.inventory.RegisterBatch(c.Request.Context(), inventoryapp.RegisterBatchInput{
		ProductID:   productID,
		BatchNumber: req.BatchNumber,
		Quantity:    req.Quantity,
		UnitPrice:   unitPrice,
		ExpiryDate:  req.ExpiryDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBatchResponse(batch))
}

// ListBatches returns all batches of a product
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	productID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	batches, err := h.inventory.ListBatches(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]BatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, toBatchResponse(&batches[i]))
	}
	h.Success(c, responses)
}

// Stock returns a product's sellable quantity
func (h *InventoryHandler) Stock(c *gin.Context) {
	productID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}

	available, err := h.inventory.AvailableStock(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"product_id": productID, "available": available})
}

// BlockBatch takes a batch out of sale
func (h *InventoryHandler) BlockBatch(c *gin.Context) {
	batchID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch id")
		return
	}
	if err := h.inventory.BlockBatch(c.Request.Context(), batchID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnblockBatch returns a batch to sale
func (h *InventoryHandler) UnblockBatch(c *gin.Context) {
	batchID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid batch id")
		return
	}
	if err := h.inventory.UnblockBatch(c.Request.Context(), batchID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
