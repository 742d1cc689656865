package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// Order tracks an intended purchase of a listing. payment_status moves
// Pending -> Completed or Pending -> Failed exactly once; terminal rows are
// never rewritten.
type Order struct {
	ID              int           `json:"id"`
	ProviderOrderID string        `json:"provider_order_id"`
	ListingID       int           `json:"listing_id"`
	UserID          int           `json:"user_id"`
	Price           int64         `json:"price"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type CreateOrderRequest struct {
	ListingID int   `json:"listingId" binding:"required"`
	Amount    int64 `json:"amount" binding:"required"`
}

// VerifyOrderRequest is the transient payment confirmation. It is never
// persisted; only the reconciled Order status is.
type VerifyOrderRequest struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	ListingID string `json:"listingId"`
}

type OrderEvent struct {
	OrderID         int           `json:"order_id"`
	ProviderOrderID string        `json:"provider_order_id"`
	ListingID       int           `json:"listing_id"`
	UserID          int           `json:"user_id"`
	Price           int64         `json:"price"`
	Status          PaymentStatus `json:"status"`
	EventType       string        `json:"event_type"` // order_created, order_completed, order_failed
}
