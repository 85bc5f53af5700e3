package payment

import (
	"context"
	"encoding/json"
	"fmt"

	paymentapp "github.com/pharmacy/backend/internal/application/payment"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/refund"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// StripeGateway implements the payment gateway against the Stripe API
type StripeGateway struct {
	webhookSecret string
	logger        *zap.Logger
}

var _ paymentapp.Gateway = (*StripeGateway)(nil)

// NewStripeGateway configures the Stripe client and returns a gateway.
// The secret key is set process-wide, as the Stripe SDK expects.
func NewStripeGateway(secretKey, webhookSecret string, logger *zap.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe: secret key is required")
	}
	stripe.Key = secretKey

	return &StripeGateway{
		webhookSecret: webhookSecret,
		logger:        logger,
	}, nil
}

// CreateIntent opens a payment intent for an order. The idempotency key makes
// a retried call return the intent created by the first attempt instead of
// opening a second one.
func (g *StripeGateway) CreateIntent(ctx context.Context, p paymentapp.CreateIntentParams) (*paymentapp.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.AmountMinor),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		"order_id":    p.OrderID.String(),
		"customer_id": p.CustomerID.String(),
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("failed to create payment intent",
			zap.String("order_id", p.OrderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}

	g.logger.Info("payment intent created",
		zap.String("order_id", p.OrderID.String()),
		zap.String("intent_id", intent.ID))
	return convertIntent(intent), nil
}

// RetrieveIntent fetches the current state of an intent
func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*paymentapp.Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve payment intent: %w", err)
	}
	return convertIntent(intent), nil
}

// CancelIntent voids an open intent
func (g *StripeGateway) CancelIntent(ctx context.Context, intentID, idempotencyKey string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	if _, err := paymentintent.Cancel(intentID, params); err != nil {
		return fmt.Errorf("stripe: failed to cancel payment intent: %w", err)
	}
	return nil
}

// CreateRefund refunds a settled intent for the given minor-unit amount
func (g *StripeGateway) CreateRefund(ctx context.Context, intentID string, amountMinor int64, idempotencyKey string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amountMinor),
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	r, err := refund.New(params)
	if err != nil {
		return fmt.Errorf("stripe: failed to create refund: %w", err)
	}

	g.logger.Info("refund created",
		zap.String("intent_id", intentID),
		zap.String("refund_id", r.ID))
	return nil
}

// VerifyWebhook checks the delivery signature and decodes the event payload.
// A bad signature is a hard error; the caller must answer 400 so Stripe
// retries only genuinely undelivered events.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*paymentapp.Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	event := &paymentapp.Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}
	if err := json.Unmarshal(stripeEvent.Data.Raw, &event.Data.Object); err != nil {
		return nil, fmt.Errorf("failed to decode webhook object: %w", err)
	}
	return event, nil
}

func convertIntent(intent *stripe.PaymentIntent) *paymentapp.Intent {
	return &paymentapp.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}
}
