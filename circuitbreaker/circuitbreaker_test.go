package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errGateway = errors.New("gateway down")

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, func() error { return errGateway }); !errors.Is(err, errGateway) {
			t.Fatalf("Call %d: expected gateway error, got %v", i, err)
		}
	}

	if cb.GetState() != StateOpen {
		t.Errorf("Expected open state after %d failures, got %v", 3, cb.GetState())
	}

	err := cb.Execute(ctx, func() error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen while open, got %v", err)
	}
}

func TestCircuitBreaker_RecoversAfterResetTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	ctx := context.Background()

	cb.Execute(ctx, func() error { return errGateway })
	if cb.GetState() != StateOpen {
		t.Fatalf("Expected open state, got %v", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(ctx, func() error { return nil }); err != nil {
		t.Errorf("Expected half-open probe to succeed, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("Expected closed state after successful probe, got %v", cb.GetState())
	}
}

func TestCircuitBreaker_ReopensOnHalfOpenFailure(t *testing.T) {
	cb := NewCircuitBreaker(2, 10*time.Millisecond)
	ctx := context.Background()

	cb.Execute(ctx, func() error { return errGateway })
	cb.Execute(ctx, func() error { return errGateway })

	time.Sleep(20 * time.Millisecond)

	cb.Execute(ctx, func() error { return errGateway })
	if cb.GetState() != StateOpen {
		t.Errorf("Expected open state after half-open failure, got %v", cb.GetState())
	}
}

func TestCircuitBreaker_CancelledContext(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := cb.Execute(ctx, func() error { called = true; return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("Expected fn not to run with a cancelled context")
	}
}
