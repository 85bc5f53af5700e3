package persistence

import (
	"context"
	"errors"

	"github.com/pharmacy/backend/internal/domain/prescription"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPrescriptionRepository implements prescription.PrescriptionRepository using GORM
type GormPrescriptionRepository struct {
	db *gorm.DB
}

var _ prescription.PrescriptionRepository = (*GormPrescriptionRepository)(nil)

// NewGormPrescriptionRepository creates a new prescription repository
func NewGormPrescriptionRepository(db *gorm.DB) *GormPrescriptionRepository {
	return &GormPrescriptionRepository{db: db}
}

// FindByID retrieves a prescription by its ID
func (r *GormPrescriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByOrderID retrieves the prescription bound to an order
func (r *GormPrescriptionRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	if err := r.db.WithContext(ctx).First(&p, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindPending returns unreviewed submissions, oldest first
func (r *GormPrescriptionRepository) FindPending(ctx context.Context, offset, limit int) ([]prescription.Prescription, error) {
	var prescriptions []prescription.Prescription
	err := r.db.WithContext(ctx).
		Where("status = ?", prescription.StatusPending).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&prescriptions).Error
	return prescriptions, err
}

// Save persists a prescription
func (r *GormPrescriptionRepository) Save(ctx context.Context, p *prescription.Prescription) error {
	return r.db.WithContext(ctx).Save(p).Error
}
