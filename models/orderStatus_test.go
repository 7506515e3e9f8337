package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var happyPath = []OrderStatus{
	StatusPlaced,
	StatusProcessing,
	StatusPacked,
	StatusReady,
	StatusOutForDelivery,
	StatusDelivered,
}

func newPlacedOrder(paymentMethod string) *Order {
	now := time.Now()
	return &Order{
		PaymentMethod: paymentMethod,
		PaymentStatus: PaymentStatusPaid,
		OrderStatus:   StatusPlaced,
		StatusHistory: []StatusEvent{{Status: StatusPlaced, Timestamp: now}},
	}
}

func TestHappyPathTransitions(t *testing.T) {
	order := newPlacedOrder(PaymentMethodCard)
	now := time.Now()

	for _, next := range happyPath[1:] {
		require.NoError(t, order.Transition(next, CauseFarmer, now))
		assert.Equal(t, next, order.OrderStatus)
	}

	// One history entry per transition, last entry matches current status.
	require.Len(t, order.StatusHistory, len(happyPath))
	assert.Equal(t, order.OrderStatus, order.StatusHistory[len(order.StatusHistory)-1].Status)
}

func TestNoBackwardTransitions(t *testing.T) {
	for i, from := range happyPath {
		for _, to := range happyPath[:i] {
			assert.False(t, CanTransition(from, to), "%s -> %s should be illegal", from, to)
		}
	}
}

func TestForwardSkipsAllowed(t *testing.T) {
	// Not every intermediate status is guaranteed to be recorded; a farmer
	// may jump straight from placed to ready.
	order := newPlacedOrder(PaymentMethodCard)
	require.NoError(t, order.Transition(StatusReady, CauseFarmer, time.Now()))
	assert.Equal(t, StatusReady, order.OrderStatus)
	assert.Len(t, order.StatusHistory, 2)
}

func TestCancellationWindow(t *testing.T) {
	cancellable := []OrderStatus{StatusPlaced, StatusProcessing, StatusPacked, StatusReady}
	for _, from := range cancellable {
		assert.True(t, CanTransition(from, StatusCancelled), "%s should be cancellable", from)
	}

	committed := []OrderStatus{StatusOutForDelivery, StatusDelivered, StatusCancelled}
	for _, from := range committed {
		assert.False(t, CanTransition(from, StatusCancelled), "%s should not be cancellable", from)
	}
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	for _, terminal := range []OrderStatus{StatusDelivered, StatusCancelled} {
		order := newPlacedOrder(PaymentMethodCard)
		order.OrderStatus = terminal
		for _, to := range happyPath {
			err := order.Transition(to, CauseAdmin, time.Now())
			assert.ErrorIs(t, err, ErrOrderTerminal)
		}
	}
}

func TestIllegalTransitionLeavesHistoryUntouched(t *testing.T) {
	order := newPlacedOrder(PaymentMethodCard)
	require.NoError(t, order.Transition(StatusPacked, CauseFarmer, time.Now()))

	err := order.Transition(StatusProcessing, CauseFarmer, time.Now())
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusPacked, order.OrderStatus)
	assert.Len(t, order.StatusHistory, 2)
}

func TestCODDeliveredRequiresVerificationCause(t *testing.T) {
	order := newPlacedOrder(PaymentMethodCOD)
	require.NoError(t, order.Transition(StatusOutForDelivery, CauseFarmer, time.Now()))

	err := order.Transition(StatusDelivered, CauseFarmer, time.Now())
	require.ErrorIs(t, err, ErrVerificationRequired)
	assert.Equal(t, StatusOutForDelivery, order.OrderStatus)

	require.NoError(t, order.Transition(StatusDelivered, CauseDeliveryVerified, time.Now()))
	assert.Equal(t, StatusDelivered, order.OrderStatus)
}

func TestNonCODDeliveredWithoutVerification(t *testing.T) {
	order := newPlacedOrder(PaymentMethodUPI)
	require.NoError(t, order.Transition(StatusOutForDelivery, CauseFarmer, time.Now()))
	require.NoError(t, order.Transition(StatusDelivered, CauseFarmer, time.Now()))
	assert.Equal(t, StatusDelivered, order.OrderStatus)
}

func TestTransitionRecordsCause(t *testing.T) {
	order := newPlacedOrder(PaymentMethodCard)
	require.NoError(t, order.Transition(StatusProcessing, CauseFarmer, time.Now()))

	last := order.StatusHistory[len(order.StatusHistory)-1]
	assert.Equal(t, CauseFarmer, last.Cause)

	// An admin cancelling on the buyer's behalf is logged as an admin action,
	// not a buyer one.
	require.NoError(t, order.Transition(StatusCancelled, CauseAdmin, time.Now()))
	last = order.StatusHistory[len(order.StatusHistory)-1]
	assert.Equal(t, StatusCancelled, last.Status)
	assert.Equal(t, CauseAdmin, last.Cause)
}

func TestStatusStepLookup(t *testing.T) {
	steps := map[OrderStatus]int{
		StatusPlaced:         1,
		StatusProcessing:     2,
		StatusPacked:         3,
		StatusReady:          4,
		StatusOutForDelivery: 5,
		StatusDelivered:      6,
		StatusCancelled:      -1,
	}
	for status, want := range steps {
		assert.Equal(t, want, StatusStep(status))
	}
	assert.Equal(t, 0, StatusStep(OrderStatus("shipped")))
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	order := newPlacedOrder(PaymentMethodCard)
	err := order.Transition(OrderStatus("shipped"), CauseAdmin, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
