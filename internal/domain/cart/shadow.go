package cart

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ShadowItem is the durable copy of one cart line. The cache copy is
// authoritative for reads; these rows only exist so an evicted cart can be
// rebuilt.
type ShadowItem struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity  int       `gorm:"not null"`
}

// TableName returns the database table name
func (ShadowItem) TableName() string {
	return "cart_items"
}

// ShadowRepository persists the durable cart copy
type ShadowRepository interface {
	// Replace swaps the customer's shadow rows for the given lines in one
	// transaction
	Replace(ctx context.Context, userID uuid.UUID, lines []Line) error

	// Find returns the customer's shadow lines
	Find(ctx context.Context, userID uuid.UUID) ([]Line, error)

	// Clear removes all shadow rows for the customer
	Clear(ctx context.Context, userID uuid.UUID) error
}
