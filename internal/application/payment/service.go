package payment

import (
	"context"
	"fmt"

	"github.com/pharmacy/backend/internal/application/checkout"
	"github.com/pharmacy/backend/internal/application/notification"
	"github.com/pharmacy/backend/internal/domain/order"
	"github.com/pharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	inventoryapp "github.com/pharmacy/backend/internal/application/inventory"
)

// InvoiceRenderer produces the receipt attached to the payment confirmation
type InvoiceRenderer interface {
	Render(ctx context.Context, o *order.Order) ([]byte, string, error)
}

// ServiceConfig wires the payment reconciler
type ServiceConfig struct {
	Gateway     Gateway
	Orders      order.OrderRepository
	TxScope     TransactionScope
	Idempotency shared.IdempotencyStore
	Sessions    checkout.SessionStore
	Cart        checkout.CartStore
	Notifier    notification.Notifier
	Invoices    InvoiceRenderer
	Currency    string
	Logger      *zap.Logger
}

// Service creates payment intents and reconciles asynchronous processor
// events against the order ledger. Event handling is idempotent: redelivered
// events deduct stock and flip order state at most once.
type Service struct {
	gateway     Gateway
	orders      order.OrderRepository
	txScope     TransactionScope
	idempotency shared.IdempotencyStore
	sessions    checkout.SessionStore
	cart        checkout.CartStore
	notifier    notification.Notifier
	invoices    InvoiceRenderer
	currency    string
	logger      *zap.Logger
}

// NewService creates a payment service
func NewService(cfg ServiceConfig) *Service {
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		gateway:     cfg.Gateway,
		orders:      cfg.Orders,
		txScope:     cfg.TxScope,
		idempotency: cfg.Idempotency,
		sessions:    cfg.Sessions,
		cart:        cfg.Cart,
		notifier:    cfg.Notifier,
		invoices:    cfg.Invoices,
		currency:    currency,
		logger:      cfg.Logger,
	}
}

// CreateIntent opens (or reuses) a processor intent for an order that is
// ready for payment inside a live checkout session. Retried client calls get
// the same intent back.
func (s *Service) CreateIntent(ctx context.Context, customerID, orderID uuid.UUID) (*Intent, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.IsOwnedBy(customerID) {
		return nil, shared.ErrForbidden
	}
	if o.Status != order.StatusReadyForPayment {
		return nil, shared.NewInvalidStateError("Order is not ready for payment")
	}

	session, ok, err := s.sessions.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !ok || session.OrderID != o.ID {
		return nil, shared.NewInvalidStateError("Checkout session expired, resume checkout first")
	}

	if o.PaymentIntentID != "" {
		intent, err := s.gateway.RetrieveIntent(ctx, o.PaymentIntentID)
		if err == nil {
			return intent, nil
		}
		s.logger.Warn("stored payment intent not retrievable, creating a new one",
			zap.String("order_id", o.ID.String()),
			zap.String("intent_id", o.PaymentIntentID),
			zap.Error(err))
	}

	intent, err := s.gateway.CreateIntent(ctx, CreateIntentParams{
		AmountMinor:    minorUnits(o.TotalAmount),
		Currency:       s.currency,
		OrderID:        o.ID,
		CustomerID:     o.CustomerID,
		IdempotencyKey: fmt.Sprintf("payment-order-%s", o.ID),
	})
	if err != nil {
		return nil, err
	}

	o.PaymentIntentID = intent.ID
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("payment intent created",
		zap.String("order_id", o.ID.String()),
		zap.String("intent_id", intent.ID))
	return intent, nil
}

// HandleEvent is the single entrypoint for processor webhooks. The event id
// is recorded first so a redelivered event short-circuits as a duplicate;
// when handling fails the record is released again, otherwise the retry the
// processor sends after our error response would be swallowed.
func (s *Service) HandleEvent(ctx context.Context, event *Event) (*HandleResult, error) {
	fresh, err := s.idempotency.MarkProcessed(ctx, event.ID, shared.DefaultEventTTL)
	if err != nil {
		return nil, err
	}
	if !fresh {
		s.logger.Info("duplicate webhook event", zap.String("event_id", event.ID))
		return &HandleResult{Status: HandleDuplicate}, nil
	}

	result, err := s.dispatchEvent(ctx, event)
	if err != nil {
		if relErr := s.idempotency.Release(ctx, event.ID); relErr != nil {
			s.logger.Error("failed to release event after handling error",
				zap.String("event_id", event.ID), zap.Error(relErr))
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) dispatchEvent(ctx context.Context, event *Event) (*HandleResult, error) {
	switch event.Type {
	case EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	case EventChargeRefunded, EventRefundUpdated:
		return s.handleRefundSettled(ctx, event)
	default:
		s.logger.Debug("ignoring webhook event",
			zap.String("event_id", event.ID), zap.String("type", event.Type))
		return &HandleResult{Status: HandleIgnored}, nil
	}
}

// handlePaymentSucceeded marks the order paid and deducts stock in one
// transaction. The row lock serializes concurrent deliveries for the same
// order; the loser sees PAID and no-ops.
func (s *Service) handlePaymentSucceeded(ctx context.Context, event *Event) (*HandleResult, error) {
	orderID, err := orderIDFromMetadata(event)
	if err != nil {
		return nil, err
	}

	result := &HandleResult{Status: HandleOK, OrderID: orderID.String()}
	var paidOrder *order.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == order.StatusPaid {
			result.Status = HandleAlreadyProcessed
			return nil
		}

		for _, item := range o.Items {
			product, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := inventoryapp.DeductFEFO(ctx, repos.Batches(), item.ProductID, product.Name, item.Quantity); err != nil {
				return err
			}
		}

		if err := o.MarkPaid(); err != nil {
			return err
		}
		if o.PaymentIntentID == "" {
			o.PaymentIntentID = event.IntentID()
		}
		paidOrder = o
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if result.Status != HandleOK {
		return result, nil
	}

	if err := s.sessions.Delete(ctx, paidOrder.CustomerID); err != nil {
		s.logger.Warn("failed to delete checkout session",
			zap.String("order_id", paidOrder.ID.String()), zap.Error(err))
	}
	if err := s.cart.Clear(ctx, paidOrder.CustomerID); err != nil {
		s.logger.Warn("failed to clear cart after payment",
			zap.String("order_id", paidOrder.ID.String()), zap.Error(err))
	}
	s.sendReceipt(ctx, paidOrder)

	s.logger.Info("order paid",
		zap.String("order_id", paidOrder.ID.String()),
		zap.String("event_id", event.ID))
	return result, nil
}

// handlePaymentFailed returns a not-yet-paid order to the payable state so
// the customer can retry
func (s *Service) handlePaymentFailed(ctx context.Context, event *Event) (*HandleResult, error) {
	orderID, err := orderIDFromMetadata(event)
	if err != nil {
		return nil, err
	}

	result := &HandleResult{Status: HandleOK, OrderID: orderID.String()}
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == order.StatusPaid {
			result.Status = HandleAlreadyProcessed
			return nil
		}
		// a failed attempt leaves the order payable; anything not in the
		// payable state (cancelled in the meantime) is left alone
		if o.Status != order.StatusReadyForPayment {
			result.Status = HandleIgnored
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment failed, order left retriable",
		zap.String("order_id", orderID.String()),
		zap.String("event_id", event.ID))
	return result, nil
}

// handleRefundSettled restocks every line and marks the order refunded. The
// order is resolved by intent reference since refund events carry no
// metadata of ours.
func (s *Service) handleRefundSettled(ctx context.Context, event *Event) (*HandleResult, error) {
	intentID := event.IntentID()
	if intentID == "" {
		return nil, shared.NewDomainError("INVALID_EVENT", "Refund event carries no intent reference")
	}

	result := &HandleResult{Status: HandleOK}
	var refundedOrder *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByPaymentIntentID(ctx, intentID)
		if err != nil {
			return err
		}
		result.OrderID = o.ID.String()
		if o.Status == order.StatusRefunded {
			result.Status = HandleAlreadyProcessed
			return nil
		}

		for _, item := range o.Items {
			if err := inventoryapp.Restock(ctx, repos.Batches(), item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := o.MarkRefunded(); err != nil {
			return err
		}
		refundedOrder = o
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	if result.Status != HandleOK {
		return result, nil
	}

	s.notify(ctx, notification.Message{
		CustomerID: refundedOrder.CustomerID,
		Subject:    "Order refunded",
		Body:       fmt.Sprintf("Your order %s has been refunded in full.", refundedOrder.ID),
	})
	s.logger.Info("order refunded",
		zap.String("order_id", refundedOrder.ID.String()),
		zap.String("event_id", event.ID))
	return result, nil
}

// Refund initiates a refund for a paid order, for the given amount or the
// full total when amount is nil. The idempotency key is derived from the
// order id so repeated admin clicks reach the processor as one refund.
func (s *Service) Refund(ctx context.Context, orderID uuid.UUID, amount *decimal.Decimal) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status != order.StatusPaid {
		return shared.NewInvalidStateError("Only paid orders can be refunded")
	}

	refundAmount := o.TotalAmount
	if amount != nil {
		if !amount.IsPositive() || amount.GreaterThan(o.TotalAmount) {
			return shared.NewDomainError("INVALID_AMOUNT",
				"Refund amount must be positive and at most the order total")
		}
		refundAmount = *amount
	}

	key := fmt.Sprintf("refund-order-%s", o.ID)
	if err := s.gateway.CreateRefund(ctx, o.PaymentIntentID, minorUnits(refundAmount), key); err != nil {
		return err
	}

	if err := o.BeginRefund(); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}

	s.logger.Info("refund initiated",
		zap.String("order_id", o.ID.String()),
		zap.String("amount", refundAmount.String()))
	return nil
}

// Cancel cancels a pre-payment order. A paid order must be refunded instead.
// Cancelling the outstanding intent upstream is best-effort; a processor
// failure there does not block the local cancellation.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID, reason string) error {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == order.StatusPaid {
		return shared.NewInvalidStateError("Paid orders must be refunded, not cancelled")
	}

	if o.PaymentIntentID != "" {
		key := fmt.Sprintf("cancel-order-%s", o.ID)
		if err := s.gateway.CancelIntent(ctx, o.PaymentIntentID, key); err != nil {
			s.logger.Warn("best-effort intent cancellation failed",
				zap.String("order_id", o.ID.String()),
				zap.String("intent_id", o.PaymentIntentID),
				zap.Error(err))
		}
	}

	if err := o.Cancel(reason); err != nil {
		return err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, o.CustomerID); err != nil {
		s.logger.Warn("failed to delete checkout session",
			zap.String("order_id", o.ID.String()), zap.Error(err))
	}

	s.logger.Info("order cancelled",
		zap.String("order_id", o.ID.String()),
		zap.String("reason", reason))
	return nil
}

// sendReceipt notifies the customer of the successful payment, with the
// rendered invoice attached when rendering succeeds
func (s *Service) sendReceipt(ctx context.Context, o *order.Order) {
	msg := notification.Message{
		CustomerID: o.CustomerID,
		Subject:    "Payment received",
		Body:       fmt.Sprintf("Your payment of %s for order %s was received.", o.TotalAmount, o.ID),
	}
	if s.invoices != nil {
		data, contentType, err := s.invoices.Render(ctx, o)
		if err != nil {
			s.logger.Warn("invoice rendering failed",
				zap.String("order_id", o.ID.String()), zap.Error(err))
		} else {
			msg.Attachment = &notification.Attachment{
				Filename:    fmt.Sprintf("invoice-%s.html", o.ID),
				ContentType: contentType,
				Data:        data,
			}
		}
	}
	s.notify(ctx, msg)
}

func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("payment notification failed", zap.Error(err))
	}
}

func orderIDFromMetadata(event *Event) (uuid.UUID, error) {
	raw, ok := event.Data.Object.Metadata["order_id"]
	if !ok {
		return uuid.Nil, shared.NewDomainError("INVALID_EVENT", "Event metadata carries no order_id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.NewDomainError("INVALID_EVENT", "Event metadata order_id is not a valid id")
	}
	return id, nil
}

// minorUnits converts a decimal amount to the processor's integer minor-unit
// representation (cents)
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
