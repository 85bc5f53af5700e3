package handler

import (
	"time"

	catalogapp "github.com/pharmacy/backend/internal/application/catalog"
	inventoryapp "github.com/pharmacy/backend/internal/application/inventory"
	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler handles catalog HTTP requests
type ProductHandler struct {
	BaseHandler
	catalog   *catalogapp.Service
	inventory *inventoryapp.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *catalogapp.Service, inventoryService *inventoryapp.Service) *ProductHandler {
	return &ProductHandler{
		catalog:   catalogService,
		inventory: inventoryService,
	}
}

// ProductResponse is the wire form of a catalog product
type ProductResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Slug                 string    `json:"slug"`
	Category             string    `json:"category"`
	Description          string    `json:"description,omitempty"`
	ActiveIngredients    string    `json:"active_ingredients,omitempty"`
	StorageCondition     string    `json:"storage_condition,omitempty"`
	PrescriptionRequired bool      `json:"prescription_required"`
	AgeRestriction       int       `json:"age_restriction,omitempty"`
	IsActive             bool      `json:"is_active"`
	AvailableStock       *int      `json:"available_stock,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Slug:                 p.Slug,
		Category:             string(p.Category),
		Description:          p.Description,
		ActiveIngredients:    p.ActiveIngredients,
		StorageCondition:     p.StorageCondition,
		PrescriptionRequired: p.PrescriptionRequired,
		AgeRestriction:       p.AgeRestriction,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
	}
}

type listProductsRequest struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Offset   int    `form:"offset" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0,max=100"`
}

// List returns the storefront product listing
func (h *ProductHandler) List(c *gin.Context) {
	var req listProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	products, err := h.catalog.ListStorefront(c.Request.Context(), catalog.StorefrontFilter{
		Category: catalog.Category(req.Category),
		Search:   req.Search,
		Offset:   req.Offset,
		Limit:    req.Limit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}
	h.SuccessWithMeta(c, responses, req.Offset, req.Limit, len(responses))
}

// GetBySlug returns a single storefront product with its availability
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := toProductResponse(product)
	available, err := h.inventory.AvailableStock(c.Request.Context(), product.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp.AvailableStock = &available

	h.Success(c, resp)
}

type createProductRequest struct {
	Name                 string `json:"name" binding:"required"`
	Category             string `json:"category" binding:"required"`
	Description          string `json:"description"`
	ActiveIngredients    string `json:"active_ingredients"`
	StorageCondition     string `json:"storage_condition"`
	PrescriptionRequired bool   `json:"prescription_required"`
	AgeRestriction       int    `json:"age_restriction" binding:"min=0"`
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), catalogapp.CreateProductInput{
		Name:                 req.Name,
		Category:             catalog.Category(req.Category),
		Description:          req.Description,
		ActiveIngredients:    req.ActiveIngredients,
		StorageCondition:     req.StorageCondition,
		PrescriptionRequired: req.PrescriptionRequired,
		AgeRestriction:       req.AgeRestriction,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toProductResponse(product))
}

// ListAll returns every product, active or not
func (h *ProductHandler) ListAll(c *gin.Context) {
	var req listProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	products, err := h.catalog.ListAll(c.Request.Context(), req.Offset, req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}
	h.SuccessWithMeta(c, responses, req.Offset, req.Limit, len(responses))
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetActive toggles storefront visibility for a product
func (h *ProductHandler) SetActive(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid product id")
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.catalog.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProductResponse(product))
}
