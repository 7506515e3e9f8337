package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// Charset for delivery codes: uppercase alphanumerics minus the characters
// people misread over the phone (0/O, 1/I/L).
const codeCharset = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateCode returns a random hex token of byteLen bytes, used for
// activation and reset tokens.
func GenerateCode(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateDeliveryCode returns a short human-communicable code for COD
// hand-off confirmation. This is a convenience code, not a security token.
func GenerateDeliveryCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate delivery code: %w", err)
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}
