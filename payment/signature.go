package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature reports whether suppliedSignature is the hex-encoded
// HMAC-SHA256 of "orderID|paymentID" under secret. This is the trust
// boundary that stops a client from fabricating a payment-success claim:
// only the provider knows the shared secret. The comparison is constant
// time.
func VerifySignature(orderID, paymentID, suppliedSignature string, secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	supplied, err := hex.DecodeString(suppliedSignature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, supplied)
}
