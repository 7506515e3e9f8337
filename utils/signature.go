package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment derives the gateway signature for a completed payment:
// hex(HMAC-SHA256("<orderId>|<paymentId>", secret)).
func SignPayment(orderId, paymentId, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderId + "|" + paymentId))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature recomputes the signature from the gateway order and
// payment ids and compares it against the one the gateway callback supplied.
func VerifyPaymentSignature(orderId, paymentId, signature, secret string) bool {
	expected := SignPayment(orderId, paymentId, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
