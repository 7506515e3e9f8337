package models

import "errors"

var (
	ErrInvalidTransition      = errors.New("illegal order status transition")
	ErrOrderTerminal          = errors.New("order is in a terminal state")
	ErrVerificationRequired   = errors.New("COD orders must be verified with the code before marking as delivered")
	ErrCodeAlreadyIssued      = errors.New("verification code already issued for this order")
	ErrNoVerificationRequired = errors.New("this order does not require verification")
	ErrAlreadyVerified        = errors.New("this order is already verified")
	ErrCodeMismatch           = errors.New("invalid verification code")
	ErrCodeExpired            = errors.New("verification code has expired")
	ErrNotVerifiableState     = errors.New("this order cannot be verified in its current state")
)
