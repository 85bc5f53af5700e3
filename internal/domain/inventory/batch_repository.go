package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository provides access to stock batches
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	FindByBatchNumber(ctx context.Context, batchNumber string) (*Batch, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Batch, error)

	// FindSellableFEFO returns unblocked, unexpired batches with remaining
	// stock for a product, ordered soonest expiry first. Batches with no
	// expiry date sort last.
	FindSellableFEFO(ctx context.Context, productID uuid.UUID) ([]Batch, error)

	// FindLatestRestockTarget returns the unblocked batch with the latest
	// expiry date for a product, the one returned units go back into.
	FindLatestRestockTarget(ctx context.Context, productID uuid.UUID) (*Batch, error)

	Save(ctx context.Context, batch *Batch) error
	SaveAll(ctx context.Context, batches []*Batch) error
}
