package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session binds a customer to an order for the duration of the payment
// window. An expired session blocks payment-intent creation until checkout
// is resumed.
type Session struct {
	OrderID              uuid.UUID       `json:"order_id"`
	Amount               decimal.Decimal `json:"amount"`
	RequiresPrescription bool            `json:"requires_prescription"`
}

// SessionStore keeps checkout sessions with a TTL, keyed by customer
type SessionStore interface {
	Put(ctx context.Context, customerID uuid.UUID, session Session, ttl time.Duration) error
	Get(ctx context.Context, customerID uuid.UUID) (*Session, bool, error)
	Delete(ctx context.Context, customerID uuid.UUID) error
}

// DefaultSessionTTL is the payment window opened by a successful checkout
const DefaultSessionTTL = 15 * time.Minute
