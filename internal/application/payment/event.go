package payment

// Processor event types the reconciler reacts to. Everything else is
// acknowledged and ignored.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
	EventRefundUpdated    = "charge.refund.updated"
)

// EventObject is the processor object an event wraps: a payment intent or a
// charge. For intent events ID is the intent reference; for charge events the
// intent reference arrives in PaymentIntent instead.
type EventObject struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// Event is the webhook payload after signature verification. Delivery is
// at-least-once and possibly reordered.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object EventObject `json:"object"`
	} `json:"data"`
}

// IntentID resolves the payment intent reference regardless of whether the
// event wraps an intent or a charge
func (e *Event) IntentID() string {
	if e.Data.Object.PaymentIntent != "" {
		return e.Data.Object.PaymentIntent
	}
	return e.Data.Object.ID
}

// HandleStatus classifies the outcome of processing one webhook event.
// Duplicates and unknown types are successes, not errors, so the processor
// stops redelivering.
type HandleStatus string

const (
	HandleOK               HandleStatus = "ok"
	HandleDuplicate        HandleStatus = "duplicate"
	HandleAlreadyProcessed HandleStatus = "already_processed"
	HandleIgnored          HandleStatus = "ignored"
)

// HandleResult is the outcome of HandleEvent
type HandleResult struct {
	Status  HandleStatus
	OrderID string
}
