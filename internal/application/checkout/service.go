package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/pharmacy/backend/internal/domain/cart"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// NextStep tells the client what the customer does after checkout
type NextStep string

const (
	NextStepUploadPrescription NextStep = "UPLOAD_PRESCRIPTION"
	NextStepPay                NextStep = "PAY"
)

// Result is the outcome of a successful checkout or resume
type Result struct {
	OrderID   uuid.UUID       `json:"order_id"`
	Status    order.Status    `json:"status"`
	Total     decimal.Decimal `json:"total_amount"`
	ExpiresIn int             `json:"expires_in"`
	NextStep  NextStep        `json:"next_step"`
}

// CartStore is the slice of the cart service checkout needs: read the
// snapshot going into the order and clear it once the order commits.
type CartStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.Snapshot, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ServiceConfig wires the checkout orchestrator
type ServiceConfig struct {
	Cart       CartStore
	Sessions   SessionStore
	TxScope    TransactionScope
	SessionTTL time.Duration
	Logger     *zap.Logger
}

// Service converts a cart snapshot into an order. Stock and prescription
// rules are validated inside one transaction; the payment session opens only
// after that transaction commits.
type Service struct {
	cart       CartStore
	sessions   SessionStore
	txScope    TransactionScope
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewService creates a checkout service
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		cart:       cfg.Cart,
		sessions:   cfg.Sessions,
		txScope:    cfg.TxScope,
		sessionTTL: ttl,
		logger:     cfg.Logger,
	}
}

// Checkout turns the customer's cart into an order. At most one active order
// may exist per customer: the in-transaction existence check gives the
// friendly error, and a partial unique index over active orders makes the
// database refuse the insert when two checkouts race past that check.
func (s *Service) Checkout(ctx context.Context, customerID uuid.UUID) (*Result, error) {
	snapshot, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if snapshot.IsEmpty() {
		return nil, shared.NewDomainError("EMPTY_CART", "Cannot checkout an empty cart")
	}

	var newOrder *order.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		active, err := repos.Orders().FindActiveByCustomer(ctx, customerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if active != nil {
			return shared.NewInvalidStateError("Customer already has an active order")
		}

		newOrder = order.NewOrder(customerID)

		for _, line := range snapshot.Lines {
			product, err := repos.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if product.PrescriptionRequired {
				newOrder.RequiresPrescription = true
			}

			batches, err := repos.Batches().FindSellableFEFO(ctx, line.ProductID)
			if err != nil {
				return err
			}
			available := 0
			for i := range batches {
				available += batches[i].CurrentQuantity
			}
			if available < line.Quantity {
				return shared.NewInsufficientStockError(product.Name, line.Quantity, available)
			}

			// price is locked in from the soonest-expiring batch
			if err := newOrder.AddItem(product.ID, line.Quantity, batches[0].UnitPrice); err != nil {
				return err
			}
		}

		if err := newOrder.FinishCheckout(); err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, newOrder); err != nil {
			// the partial unique index on active orders catches the race
			// the existence check above cannot see
			if errors.Is(err, shared.ErrAlreadyExists) {
				return shared.NewInvalidStateError("Customer already has an active order")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session := Session{
		OrderID:              newOrder.ID,
		Amount:               newOrder.TotalAmount,
		RequiresPrescription: newOrder.RequiresPrescription,
	}
	if err := s.sessions.Put(ctx, customerID, session, s.sessionTTL); err != nil {
		return nil, err
	}

	if err := s.cart.Clear(ctx, customerID); err != nil {
		s.logger.Warn("failed to clear cart after checkout",
			zap.String("customer_id", customerID.String()), zap.Error(err))
	}

	s.logger.Info("checkout completed",
		zap.String("order_id", newOrder.ID.String()),
		zap.String("customer_id", customerID.String()),
		zap.String("status", newOrder.Status.String()),
		zap.String("total", newOrder.TotalAmount.String()))

	return s.result(newOrder), nil
}

// Resume re-opens the payment window for an order whose previous session
// lapsed. Only the owner may resume, and only while the order is ready for
// payment.
func (s *Service) Resume(ctx context.Context, customerID, orderID uuid.UUID) (*Result, error) {
	var resumed *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(customerID) {
			return shared.ErrForbidden
		}
		if o.Status != order.StatusReadyForPayment {
			return shared.NewInvalidStateError("Order is not ready for payment")
		}
		resumed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	session := Session{
		OrderID:              resumed.ID,
		Amount:               resumed.TotalAmount,
		RequiresPrescription: resumed.RequiresPrescription,
	}
	if err := s.sessions.Put(ctx, customerID, session, s.sessionTTL); err != nil {
		return nil, err
	}
	return s.result(resumed), nil
}

func (s *Service) result(o *order.Order) *Result {
	next := NextStepPay
	if o.Status == order.StatusAwaitingPrescription {
		next = NextStepUploadPrescription
	}
	return &Result{
		OrderID:   o.ID,
		Status:    o.Status,
		Total:     o.TotalAmount,
		ExpiresIn: int(s.sessionTTL.Seconds()),
		NextStep:  next,
	}
}
