package persistence

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCartShadowRepository implements cart.ShadowRepository using GORM
type GormCartShadowRepository struct {
	db *gorm.DB
}

var _ cart.ShadowRepository = (*GormCartShadowRepository)(nil)

// NewGormCartShadowRepository creates a new cart shadow repository
func NewGormCartShadowRepository(db *gorm.DB) *GormCartShadowRepository {
	return &GormCartShadowRepository{db: db}
}

// Replace swaps the customer's shadow rows for the given lines in one transaction
func (r *GormCartShadowRepository) Replace(ctx context.Context, userID uuid.UUID, lines []cart.Line) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&cart.ShadowItem{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		items := make([]cart.ShadowItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, cart.ShadowItem{
				BaseEntity: shared.NewBaseEntity(),
				UserID:     userID,
				ProductID:  line.ProductID,
				Quantity:   line.Quantity,
			})
		}
		return tx.Create(&items).Error
	})
}

// Find returns the customer's shadow lines
func (r *GormCartShadowRepository) Find(ctx context.Context, userID uuid.UUID) ([]cart.Line, error) {
	var items []cart.ShadowItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	lines := make([]cart.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, cart.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines, nil
}

// Clear removes all shadow rows for the customer
func (r *GormCartShadowRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&cart.ShadowItem{}).Error
}
