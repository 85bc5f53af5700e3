package order

import (
	"context"

	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Canceller performs the cancellation side effects owned by the payment
// reconciler (best-effort upstream intent cancel, session cleanup)
type Canceller interface {
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) error
}

// Service is the customer-facing view of the order ledger
type Service struct {
	orders    order.OrderRepository
	canceller Canceller
	logger    *zap.Logger
}

// NewService creates an order service
func NewService(orders order.OrderRepository, canceller Canceller, logger *zap.Logger) *Service {
	return &Service{
		orders:    orders,
		canceller: canceller,
		logger:    logger,
	}
}

// Get returns one of the customer's orders
func (s *Service) Get(ctx context.Context, customerID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

// List returns the customer's orders, newest first
func (s *Service) List(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]order.Order, error) {
	return s.orders.FindByCustomer(ctx, customerID, offset, limit)
}

// GetActive returns the customer's checkout-blocking order, if any
func (s *Service) GetActive(ctx context.Context, customerID uuid.UUID) (*order.Order, error) {
	return s.orders.FindActiveByCustomer(ctx, customerID)
}

// Cancel cancels the customer's own pre-payment order. Paid and terminal
// orders refuse with a state error.
func (s *Service) Cancel(ctx context.Context, customerID, orderID uuid.UUID, reason string) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsOwnedBy(customerID) {
		return shared.ErrForbidden
	}
	if !o.Status.IsCancellable() {
		return shared.NewInvalidStateError("Order can no longer be cancelled")
	}
	if reason == "" {
		reason = "cancelled by customer"
	}
	return s.canceller.Cancel(ctx, orderID, reason)
}
