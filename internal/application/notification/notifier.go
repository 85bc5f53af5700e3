package notification

import (
	"context"

	"github.com/google/uuid"
)

// Attachment is an optional file sent along with a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a customer-facing notification. Delivery is fire-and-forget;
// the sender never fails the operation that produced the message.
type Message struct {
	// CustomerID identifies the addressee; the delivery channel resolves it
	// to a concrete address. Recipient, when set, overrides the lookup.
	CustomerID uuid.UUID
	Recipient  string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Notifier delivers messages to customers
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
