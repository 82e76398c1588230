package domain

import "time"

// Order status values for locally tracked orders.
const (
	OrderStatusCreated             = "created"
	OrderStatusPendingConfirmation = "pending_confirmation"
)

// OrderCreationState models the one-shot order-creation transition.
// The creation call may only fire once per payment-session instance;
// modelling it as an explicit state rather than a boolean flag makes the
// in-flight window visible to callers.
type OrderCreationState int

const (
	CreationNotStarted OrderCreationState = iota
	CreationInFlight
	CreationDone
	CreationFailed
)

// String returns the state name for logging.
func (s OrderCreationState) String() string {
	switch s {
	case CreationNotStarted:
		return "not_started"
	case CreationInFlight:
		return "in_flight"
	case CreationDone:
		return "done"
	case CreationFailed:
		return "failed"
	}
	return "unknown"
}

// OrderDraft is the local record of a created order. It is created by exactly
// one successful order-creation call and immutable thereafter except for
// Status transitions driven by user confirmation.
type OrderDraft struct {
	ID            string
	APIOrderID    int64
	APIToken      string
	PixCode       string
	PaymentMethod PaymentMethod
	TotalCents    int64
	Status        string
	CreatedAt     time.Time
}
