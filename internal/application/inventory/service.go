package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/pharmacy/backend/internal/domain/catalog"
	"github.com/pharmacy/backend/internal/domain/inventory"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service manages stock batches: intake, blocking, and availability queries.
// Stock movements tied to payments go through the transactional helpers in
// stock.go instead so they commit with the order.
type Service struct {
	batches  inventory.BatchRepository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewService creates an inventory service
func NewService(batches inventory.BatchRepository, products catalog.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		batches:  batches,
		products: products,
		logger:   logger,
	}
}

// RegisterBatchInput carries a stock intake
type RegisterBatchInput struct {
	ProductID   uuid.UUID
	BatchNumber string
	Quantity    int
	UnitPrice   decimal.Decimal
	ExpiryDate  *time.Time
}

// RegisterBatch records a stock intake as a new batch. Receiving stock for an
// inactive product reactivates it.
func (s *Service) RegisterBatch(ctx context.Context, input RegisterBatchInput) (*inventory.Batch, error) {
	existing, err := s.batches.FindByBatchNumber(ctx, input.BatchNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_BATCH", "Batch number already exists")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	batch, err := inventory.NewBatch(input.ProductID, input.BatchNumber, input.Quantity, input.UnitPrice, input.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if err := s.batches.Save(ctx, batch); err != nil {
		return nil, err
	}

	if !product.IsActive {
		product.Activate()
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
		s.logger.Info("product reactivated by stock intake",
			zap.String("product_id", product.ID.String()),
			zap.String("batch_number", batch.BatchNumber))
	}

	s.logger.Info("batch registered",
		zap.String("batch_id", batch.ID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.Int("quantity", input.Quantity))
	return batch, nil
}

// AvailableStock sums remaining quantity across sellable batches
func (s *Service) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	batches, err := s.batches.FindSellableFEFO(ctx, productID)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range batches {
		total += batches[i].CurrentQuantity
	}
	return total, nil
}

// ListBatches returns all batches for a product, blocked and expired included
func (s *Service) ListBatches(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	return s.batches.FindByProduct(ctx, productID)
}

// BlockBatch excludes a batch from sale (recall, damage)
func (s *Service) BlockBatch(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return err
	}
	batch.Block()
	if err := s.batches.Save(ctx, batch); err != nil {
		return err
	}
	s.logger.Warn("batch blocked", zap.String("batch_id", batchID.String()))
	return nil
}

// UnblockBatch returns a blocked batch to sale
func (s *Service) UnblockBatch(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.batches.FindByID(ctx, batchID)
	if err != nil {
		return err
	}
	batch.Unblock()
	return s.batches.Save(ctx, batch)
}
