package order

import (
	"fmt"
	"time"

	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is an order line. Quantity and price are snapshotted at checkout and
// never change afterwards, price moves on the batch do not reprice the order.
type Item struct {
	shared.BaseEntity
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity        int             `gorm:"not null"`
	PriceAtPurchase decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

// TableName returns the database table name
func (Item) TableName() string {
	return "order_items"
}

// LineTotal returns quantity times the purchase-time unit price
func (i *Item) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root of the order ledger. All status changes go
// through the transition methods so the state machine stays enforced.
type Order struct {
	shared.BaseEntity
	CustomerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status               Status          `gorm:"size:32;not null;index"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	RequiresPrescription bool            `gorm:"not null;default:false"`
	PaymentIntentID      string          `gorm:"size:255;index"`
	PaidAt               *time.Time
	CancellationReason   string `gorm:"size:500"`
	Items                []Item `gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name
func (Order) TableName() string {
	return "orders"
}

// NewOrder starts an empty order for a checkout in progress. Items and the
// total are filled in before the enclosing transaction commits.
func NewOrder(customerID uuid.UUID) *Order {
	return &Order{
		BaseEntity:  shared.NewBaseEntity(),
		CustomerID:  customerID,
		Status:      StatusCheckoutStarted,
		TotalAmount: decimal.Zero,
	}
}

// AddItem appends a priced line and grows the order total
func (o *Order) AddItem(productID uuid.UUID, quantity int, priceAtPurchase decimal.Decimal) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	item := Item{
		BaseEntity:      shared.NewBaseEntity(),
		OrderID:         o.ID,
		ProductID:       productID,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.TotalAmount.Add(item.LineTotal())
	o.UpdatedAt = time.Now()
	return nil
}

// transitionTo moves the order to target if the state machine allows it
func (o *Order) transitionTo(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError(
			fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// FinishCheckout settles the post-build status: awaiting prescription review
// when any line needs one, otherwise straight to payment.
func (o *Order) FinishCheckout() error {
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Order has no items")
	}
	if o.RequiresPrescription {
		return o.transitionTo(StatusAwaitingPrescription)
	}
	return o.transitionTo(StatusReadyForPayment)
}

// ApprovePrescription releases the order for payment after pharmacist approval
func (o *Order) ApprovePrescription() error {
	return o.transitionTo(StatusReadyForPayment)
}

// MarkPaid records a confirmed payment
func (o *Order) MarkPaid() error {
	if err := o.transitionTo(StatusPaid); err != nil {
		return err
	}
	now := time.Now()
	o.PaidAt = &now
	return nil
}

// Cancel moves the order to CANCELLED with an optional reason
func (o *Order) Cancel(reason string) error {
	if err := o.transitionTo(StatusCancelled); err != nil {
		return err
	}
	o.CancellationReason = reason
	return nil
}

// BeginRefund marks a paid order as waiting for the processor to settle the
// refund
func (o *Order) BeginRefund() error {
	return o.transitionTo(StatusRefundPending)
}

// MarkRefunded records the processor-confirmed refund
func (o *Order) MarkRefunded() error {
	return o.transitionTo(StatusRefunded)
}

// IsOwnedBy checks order ownership for customer-facing operations
func (o *Order) IsOwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID == customerID
}
