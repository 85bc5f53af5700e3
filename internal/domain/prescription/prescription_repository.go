package prescription

import (
	"context"

	"github.com/google/uuid"
)

// PrescriptionRepository provides access to prescription submissions
type PrescriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*Prescription, error)

	// FindPending returns unreviewed submissions, oldest first
	FindPending(ctx context.Context, offset, limit int) ([]Prescription, error)

	Save(ctx context.Context, prescription *Prescription) error
}
