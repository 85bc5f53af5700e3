package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements inventory.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

var _ inventory.BatchRepository = (*GormBatchRepository)(nil)

// NewGormBatchRepository creates a new batch repository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID retrieves a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByBatchNumber retrieves a batch by its unique batch number
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*inventory.Batch, error) {
	var batch inventory.Batch
	if err := r.db.WithContext(ctx).First(&batch, "batch_number = ?", batchNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProduct returns every batch for a product, blocked and expired included
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("COALESCE(expiry_date, '9999-12-31') ASC, created_at ASC").
		Find(&batches).Error
	return batches, err
}

// FindSellableFEFO returns deductable batches ordered soonest expiry first
func (r *GormBatchRepository) FindSellableFEFO(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	var batches []inventory.Batch
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND blocked = ? AND current_quantity > 0", productID, false).
		Where("expiry_date IS NULL OR expiry_date > ?", time.Now()).
		Order("COALESCE(expiry_date, '9999-12-31') ASC, created_at ASC").
		Find(&batches).Error
	return batches, err
}

// FindLatestRestockTarget returns the unblocked batch with the latest expiry
// for a product. Batches without an expiry date count as latest.
func (r *GormBatchRepository) FindLatestRestockTarget(ctx context.Context, productID uuid.UUID) (*inventory.Batch, error) {
	var batch inventory.Batch
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND blocked = ?", productID, false).
		Order("COALESCE(expiry_date, '9999-12-31') DESC, created_at DESC").
		First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// Save persists a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveAll persists multiple batches
func (r *GormBatchRepository) SaveAll(ctx context.Context, batches []*inventory.Batch) error {
	for _, batch := range batches {
		if err := r.db.WithContext(ctx).Save(batch).Error; err != nil {
			return err
		}
	}
	return nil
}
