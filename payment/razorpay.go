package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Aniket8745/real-estate-api/circuitbreaker"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// RazorpayProvider implements Provider against the Razorpay Orders and
// Payments APIs. All calls run behind a circuit breaker and surface
// ErrProviderUnavailable so the HTTP layer can answer with a retryable 5xx.
type RazorpayProvider struct {
	client  *razorpay.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewRazorpayProvider(keyID, keySecret string, logger *zap.Logger) *RazorpayProvider {
	client := razorpay.NewClient(keyID, keySecret)
	client.SetTimeout(10)

	return &RazorpayProvider{
		client:  client,
		breaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second),
		logger:  logger,
	}
}

func (p *RazorpayProvider) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*ProviderOrder, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	var body map[string]interface{}
	err := p.breaker.Execute(ctx, func() error {
		var callErr error
		body, callErr = p.client.Order.Create(data, nil)
		return callErr
	})
	if err != nil {
		p.logger.Error("Razorpay order creation failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	order := &ProviderOrder{
		Currency: currency,
		Amount:   amount,
	}
	if id, ok := body["id"].(string); ok {
		order.ID = id
	}
	if status, ok := body["status"].(string); ok {
		order.Status = status
	}
	if rcpt, ok := body["receipt"].(string); ok {
		order.Receipt = rcpt
	}
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: response missing order id", ErrProviderUnavailable)
	}

	return order, nil
}

func (p *RazorpayProvider) FetchPaymentStatus(ctx context.Context, paymentID string) (string, error) {
	var body map[string]interface{}
	err := p.breaker.Execute(ctx, func() error {
		var callErr error
		body, callErr = p.client.Payment.Fetch(paymentID, nil, nil)
		return callErr
	})
	if err != nil {
		p.logger.Error("Razorpay payment fetch failed", zap.String("payment_id", paymentID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	status, ok := body["status"].(string)
	if !ok {
		return "", fmt.Errorf("%w: response missing payment status", ErrProviderUnavailable)
	}
	return status, nil
}
