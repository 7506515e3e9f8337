package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for the auth-related HTTP statuses. A 401 additionally
// fires the client's session-invalidated callback; a 403 is terminal for the
// caller and must not trigger any redirect loop.
var (
	ErrAuthenticationRequired = errors.New("session expired, please log in again")
	ErrAuthorization          = errors.New("only buyers can make payments")
)

// ValidationError reports missing delivery details. It is raised before any
// network call is made, so the caller can fix the input and retry freely.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayUnavailableError means the payment gateway session could not be
// opened. The user may retry or fall back to cash on delivery.
type GatewayUnavailableError struct {
	Err error
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("payment gateway unavailable: %v", e.Err)
}

func (e *GatewayUnavailableError) Unwrap() error {
	return e.Err
}

// codePaymentVerificationFailed is the error code the server attaches when
// it rejects a gateway confirmation, as opposed to plain input validation.
const codePaymentVerificationFailed = "payment_verification_failed"

// PaymentVerificationError means the gateway confirmation was rejected
// (signature mismatch or gateway-reported failure). The attempt cannot be
// salvaged; the user must restart payment.
type PaymentVerificationError struct {
	Message string
}

func (e *PaymentVerificationError) Error() string {
	return e.Message
}

// OrderError carries the server-supplied message for any other non-2xx
// response.
type OrderError struct {
	StatusCode int
	Message    string
}

func (e *OrderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("order request failed with status %d", e.StatusCode)
}
