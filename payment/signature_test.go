package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signFor(t *testing.T, orderID, paymentID string, secret []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Match(t *testing.T) {
	secret := []byte("test-key-secret")
	sig := signFor(t, "order_N5XJbB8eAqz1Ak", "pay_N5XKQ7lB4ZzR2m", secret)

	if !VerifySignature("order_N5XJbB8eAqz1Ak", "pay_N5XKQ7lB4ZzR2m", sig, secret) {
		t.Error("Expected a matching signature to verify")
	}
}

func TestVerifySignature_SingleBitMutation(t *testing.T) {
	secret := []byte("test-key-secret")
	sig := signFor(t, "order_N5XJbB8eAqz1Ak", "pay_N5XKQ7lB4ZzR2m", secret)

	// Flip one bit in every byte position, one at a time
	raw, _ := hex.DecodeString(sig)
	for i := range raw {
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01

		if VerifySignature("order_N5XJbB8eAqz1Ak", "pay_N5XKQ7lB4ZzR2m", hex.EncodeToString(mutated), secret) {
			t.Errorf("Expected mutated signature (byte %d) to fail verification", i)
		}
	}
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	sig := signFor(t, "order_1", "pay_1", []byte("secret-a"))

	if VerifySignature("order_1", "pay_1", sig, []byte("secret-b")) {
		t.Error("Expected signature under a different secret to fail")
	}
}

func TestVerifySignature_MalformedInputs(t *testing.T) {
	secret := []byte("test-key-secret")
	sig := signFor(t, "order_1", "pay_1", secret)

	cases := []struct {
		name      string
		signature string
	}{
		{"empty", ""},
		{"not hex", "zzzz"},
		{"truncated", sig[:16]},
		{"swapped ids", signFor(t, "pay_1", "order_1", secret)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifySignature("order_1", "pay_1", tc.signature, secret) {
				t.Errorf("Expected %s signature to fail verification", tc.name)
			}
		})
	}
}
