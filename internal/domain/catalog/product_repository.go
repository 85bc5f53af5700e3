package catalog

import (
	"context"

	"github.com/google/uuid"
)

// StorefrontFilter narrows storefront product listings
type StorefrontFilter struct {
	Category Category
	Search   string
	Offset   int
	Limit    int
}

// ProductRepository provides access to catalog products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindStorefront returns active products matching the filter
	FindStorefront(ctx context.Context, filter StorefrontFilter) ([]Product, error)

	// FindAll returns all products, active or not (admin listing)
	FindAll(ctx context.Context, offset, limit int) ([]Product, error)

	Save(ctx context.Context, product *Product) error
}
