package inventory

import (
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Batch is a lot of stock for a product received in a single intake. Each
// batch carries its own expiry date and unit price; deduction walks batches
// first-expired-first-out.
type Batch struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchNumber     string          `gorm:"size:100;not null;uniqueIndex"`
	InitialQuantity int             `gorm:"not null"`
	CurrentQuantity int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ExpiryDate      *time.Time      `gorm:"index"`
	Blocked         bool            `gorm:"not null;default:false"`
}

// TableName returns the database table name
func (Batch) TableName() string {
	return "stock_batches"
}

// NewBatch creates a batch from an intake. CurrentQuantity starts at the
// intake quantity.
func NewBatch(productID uuid.UUID, batchNumber string, quantity int, unitPrice decimal.Decimal, expiryDate *time.Time) (*Batch, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &Batch{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		BatchNumber:     batchNumber,
		InitialQuantity: quantity,
		CurrentQuantity: quantity,
		UnitPrice:       unitPrice,
		ExpiryDate:      expiryDate,
	}, nil
}

// IsExpired checks whether the batch has passed its expiry date
func (b *Batch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && !b.ExpiryDate.After(now)
}

// IsSellable reports whether units may be deducted from this batch
func (b *Batch) IsSellable(now time.Time) bool {
	return !b.Blocked && b.CurrentQuantity > 0 && !b.IsExpired(now)
}

// Deduct removes up to quantity units from the batch and returns how many
// were actually removed. Deducting more than the batch holds caps at the
// remaining quantity rather than failing; the caller spreads the remainder
// over later batches.
func (b *Batch) Deduct(quantity int) int {
	if quantity <= 0 || b.CurrentQuantity <= 0 {
		return 0
	}
	deducted := quantity
	if deducted > b.CurrentQuantity {
		deducted = b.CurrentQuantity
	}
	b.CurrentQuantity -= deducted
	b.UpdatedAt = time.Now()
	return deducted
}

// Restock adds units back to the batch. CurrentQuantity may exceed
// InitialQuantity after a return.
func (b *Batch) Restock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}
	b.CurrentQuantity += quantity
	b.UpdatedAt = time.Now()
	return nil
}

// Block excludes the batch from availability and deduction (recalls, damage)
func (b *Batch) Block() {
	b.Blocked = true
	b.UpdatedAt = time.Now()
}

// Unblock returns the batch to normal availability
func (b *Batch) Unblock() {
	b.Blocked = false
	b.UpdatedAt = time.Now()
}
