package inventory

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeductFEFO removes quantity units of a product, draining the soonest
// expiring sellable batches first. The whole request fails when aggregate
// availability falls short; no partial deduction is left behind. Callers run
// this inside the transaction that settles the order.
func DeductFEFO(ctx context.Context, repo inventory.BatchRepository, productID uuid.UUID, productName string, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduction quantity must be positive")
	}

	batches, err := repo.FindSellableFEFO(ctx, productID)
	if err != nil {
		return err
	}

	available := 0
	for i := range batches {
		available += batches[i].CurrentQuantity
	}
	if available < quantity {
		return shared.NewInsufficientStockError(productName, quantity, available)
	}

	remaining := quantity
	touched := make([]*inventory.Batch, 0, len(batches))
	for i := range batches {
		if remaining == 0 {
			break
		}
		remaining -= batches[i].Deduct(remaining)
		touched = append(touched, &batches[i])
	}

	return repo.SaveAll(ctx, touched)
}

// Restock returns quantity units of a product to stock after a refund. The
// units go into the unblocked batch with the latest expiry so they are sold
// last.
func Restock(ctx context.Context, repo inventory.BatchRepository, productID uuid.UUID, quantity int) error {
	batch, err := repo.FindLatestRestockTarget(ctx, productID)
	if err != nil {
		return err
	}
	if err := batch.Restock(quantity); err != nil {
		return err
	}
	return repo.Save(ctx, batch)
}
