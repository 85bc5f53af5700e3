package payment

import (
	"context"

	"github.com/google/uuid"
)

// Intent is the reconciler's view of a processor payment intent
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// CreateIntentParams carries everything the processor needs to open an
// intent. Amounts are in the currency's minor unit.
type CreateIntentParams struct {
	AmountMinor    int64
	Currency       string
	OrderID        uuid.UUID
	CustomerID     uuid.UUID
	IdempotencyKey string
}

// Gateway abstracts the payment processor. Every mutating call takes a
// caller-derived idempotency key so upstream retries never duplicate money
// movement.
type Gateway interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	CancelIntent(ctx context.Context, intentID, idempotencyKey string) error
	CreateRefund(ctx context.Context, intentID string, amountMinor int64, idempotencyKey string) error
}
