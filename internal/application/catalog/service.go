package catalog

import (
	"context"
	"errors"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages the product catalog: admin CRUD and the storefront view
type Service struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewService creates a catalog service
func NewService(products catalog.ProductRepository, logger *zap.Logger) *Service {
	return &Service{products: products, logger: logger}
}

// CreateProductInput carries a new catalog entry
type CreateProductInput struct {
	Name                 string
	Category             catalog.Category
	Description          string
	ActiveIngredients    string
	StorageCondition     string
	PrescriptionRequired bool
	AgeRestriction       int
}

// CreateProduct adds a product to the catalog. The slug is derived from the
// name and must be unique.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*catalog.Product, error) {
	product, err := catalog.NewProduct(input.Name, input.Category, input.PrescriptionRequired)
	if err != nil {
		return nil, err
	}
	product.Description = input.Description
	product.ActiveIngredients = input.ActiveIngredients
	product.StorageCondition = input.StorageCondition
	product.AgeRestriction = input.AgeRestriction

	existing, err := s.products.FindBySlug(ctx, product.Slug)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_SLUG", "A product with this name already exists")
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug))
	return product, nil
}

// GetProduct returns a product by id
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}

// GetBySlug returns a product by its storefront slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	return s.products.FindBySlug(ctx, slug)
}

// ListStorefront returns active products for customers
func (s *Service) ListStorefront(ctx context.Context, filter catalog.StorefrontFilter) ([]catalog.Product, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.products.FindStorefront(ctx, filter)
}

// ListAll returns every product for administration
func (s *Service) ListAll(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.products.FindAll(ctx, offset, limit)
}

// SetActive flips the product's storefront visibility
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if active {
		product.Activate()
	} else {
		product.Deactivate()
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}
