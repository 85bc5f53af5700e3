package order

// Status represents the lifecycle state of an order
type Status string

const (
	StatusCreated              Status = "CREATED"
	StatusCheckoutStarted      Status = "CHECKOUT_STARTED"
	StatusAwaitingPrescription Status = "AWAITING_PRESCRIPTION"
	StatusPrescriptionRejected Status = "PRESCRIPTION_REJECTED"
	StatusReadyForPayment      Status = "READY_FOR_PAYMENT"
	StatusPaid                 Status = "PAID"
	StatusRefundPending        Status = "REFUND_PENDING"
	StatusRefunded             Status = "REFUNDED"
	StatusCancelled            Status = "CANCELLED"
	StatusFulfilled            Status = "FULFILLED"
)

// IsValid checks if the status is a known Status
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusCheckoutStarted, StatusAwaitingPrescription,
		StatusPrescriptionRejected, StatusReadyForPayment, StatusPaid,
		StatusRefundPending, StatusRefunded, StatusCancelled, StatusFulfilled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// validTransitions defines the allowed state machine transitions
var validTransitions = map[Status][]Status{
	StatusCreated:              {StatusCheckoutStarted, StatusCancelled},
	StatusCheckoutStarted:      {StatusAwaitingPrescription, StatusReadyForPayment, StatusCancelled},
	StatusAwaitingPrescription: {StatusPrescriptionRejected, StatusReadyForPayment, StatusCancelled},
	StatusPrescriptionRejected: {StatusCancelled},
	StatusReadyForPayment:      {StatusPaid, StatusCancelled},
	StatusPaid:                 {StatusRefundPending, StatusRefunded, StatusFulfilled},
	StatusRefundPending:        {StatusRefunded},
	StatusRefunded:             {},
	StatusCancelled:            {},
	StatusFulfilled:            {},
}

// CanTransitionTo checks whether the state machine allows moving to target
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist from this status
func (s Status) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// IsCancellable reports whether a customer or admin may still cancel the
// order. Paid and terminal orders cannot be cancelled, only refunded.
func (s Status) IsCancellable() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// ActiveStatuses are the states in which an order blocks the customer from
// starting a new checkout. At most one order per customer may be in any of
// these states.
var ActiveStatuses = []Status{
	StatusCheckoutStarted,
	StatusAwaitingPrescription,
	StatusPrescriptionRejected,
	StatusReadyForPayment,
}
