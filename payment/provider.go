package payment

import (
	"context"
	"errors"
)

// StatusCaptured is the provider payment status that means money was
// actually received. Every other status is treated as not captured.
const StatusCaptured = "captured"

var ErrProviderUnavailable = errors.New("payment provider unavailable")

// ProviderOrder is the provider-side order handle returned when an order
// is minted with the gateway.
type ProviderOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Receipt  string `json:"receipt"`
}

// Provider is the payment gateway surface the order flow depends on.
// Amounts are integers in the currency's minor unit (paise for INR).
type Provider interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*ProviderOrder, error)
	FetchPaymentStatus(ctx context.Context, paymentID string) (string, error)
}
