package models

import "time"

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusProcessing     OrderStatus = "processing"
	StatusPacked         OrderStatus = "packed"
	StatusReady          OrderStatus = "ready"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// TransitionCause records which actor fired a status transition. COD orders
// may only reach "delivered" through CauseDeliveryVerified.
type TransitionCause string

const (
	CauseFarmer           TransitionCause = "farmer"
	CauseAdmin            TransitionCause = "admin"
	CauseSystem           TransitionCause = "system"
	CauseBuyerCancel      TransitionCause = "buyer_cancel"
	CauseDeliveryVerified TransitionCause = "delivery_verified"
)

// statusSteps is the single lookup table for progress rendering. Step numbers
// are fixed per status and never inferred from the history log, since legacy
// orders may have gaps in statusHistory.
var statusSteps = map[OrderStatus]int{
	StatusPlaced:         1,
	StatusProcessing:     2,
	StatusPacked:         3,
	StatusReady:          4,
	StatusOutForDelivery: 5,
	StatusDelivered:      6,
	StatusCancelled:      -1,
}

// StatusStep maps a status to its progress ordinal: 1-6 along the happy path,
// -1 for cancelled, 0 for anything unknown.
func StatusStep(status OrderStatus) int {
	if step, ok := statusSteps[status]; ok {
		return step
	}
	return 0
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValidStatus reports whether status is one of the known fulfillment states.
func IsValidStatus(status OrderStatus) bool {
	_, ok := statusSteps[status]
	return ok
}

// CanTransition reports whether moving from one status to another is legal.
// The happy path is strictly forward (skipping intermediate states is allowed,
// regression never is). Cancellation is only permitted before the order is
// committed to fulfillment, i.e. from placed, processing, packed or ready.
func CanTransition(from, to OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if !IsValidStatus(to) || to == from {
		return false
	}
	if to == StatusCancelled {
		return StatusStep(from) >= statusSteps[StatusPlaced] && StatusStep(from) <= statusSteps[StatusReady]
	}
	return StatusStep(to) > StatusStep(from)
}

// Transition advances the order to the given status and appends exactly one
// record to its status history. For COD orders the delivered transition is
// refused unless it is caused by a successful delivery verification.
func (o *Order) Transition(to OrderStatus, cause TransitionCause, now time.Time) error {
	if o.OrderStatus.IsTerminal() {
		return ErrOrderTerminal
	}
	if !CanTransition(o.OrderStatus, to) {
		return ErrInvalidTransition
	}
	if to == StatusDelivered && o.PaymentMethod == PaymentMethodCOD && cause != CauseDeliveryVerified {
		return ErrVerificationRequired
	}
	o.OrderStatus = to
	o.StatusHistory = append(o.StatusHistory, StatusEvent{
		OrderID:   o.ID,
		Status:    to,
		Cause:     cause,
		Timestamp: now,
	})
	return nil
}

// CurrentStep returns the progress ordinal of the order's current status.
func (o *Order) CurrentStep() int {
	return StatusStep(o.OrderStatus)
}
