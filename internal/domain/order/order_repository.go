package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository provides access to orders and their items
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate loads the order with a row lock so concurrent
	// webhook deliveries serialize on it. Only valid inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByPaymentIntentID resolves the order a processor refund event
	// refers to when the event carries no order metadata.
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)

	// FindActiveByCustomer returns the customer's order in an active
	// (checkout-blocking) status, or shared.ErrNotFound.
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*Order, error)

	// FindByCustomer returns the customer's orders, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]Order, error)

	Save(ctx context.Context, order *Order) error
}
