package persistence

import (
	"context"
	"errors"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// NewGormProductRepository creates a new product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID retrieves a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySlug retrieves a product by its storefront slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindStorefront returns active products matching the filter
func (r *GormProductRepository) FindStorefront(ctx context.Context, filter catalog.StorefrontFilter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var products []catalog.Product
	err := query.Order("name ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&products).Error
	return products, err
}

// FindAll returns all products, active or not
func (r *GormProductRepository) FindAll(ctx context.Context, offset, limit int) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Save persists a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}
