package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "test_secret"
	sig := SignPayment("order_abc", "pay_123", secret)

	assert.True(t, VerifyPaymentSignature("order_abc", "pay_123", sig, secret))
}

func TestVerifyPaymentSignatureMismatch(t *testing.T) {
	const secret = "test_secret"
	sig := SignPayment("order_abc", "pay_123", secret)

	assert.False(t, VerifyPaymentSignature("order_abc", "pay_999", sig, secret))
	assert.False(t, VerifyPaymentSignature("order_xyz", "pay_123", sig, secret))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_123", sig, "other_secret"))
	assert.False(t, VerifyPaymentSignature("order_abc", "pay_123", "not-a-signature", secret))
}
