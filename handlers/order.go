package handlers

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/Aniket8745/real-estate-api/kafka"
	"github.com/Aniket8745/real-estate-api/middleware"
	"github.com/Aniket8745/real-estate-api/models"
	"github.com/Aniket8745/real-estate-api/payment"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const orderColumns = "id, provider_order_id, listing_id, user_id, price, payment_status, created_at, updated_at"

// minorUnitsPerRupee converts listing prices (whole rupees) to the paise
// amounts the provider expects.
const minorUnitsPerRupee = 100

type OrderHandler struct {
	db        *sql.DB
	provider  payment.Provider
	producer  sarama.SyncProducer
	topic     string
	keySecret []byte
	logger    *zap.Logger
}

func NewOrderHandler(
	db *sql.DB,
	provider payment.Provider,
	producer sarama.SyncProducer,
	topic string,
	keySecret []byte,
	logger *zap.Logger,
) *OrderHandler {
	return &OrderHandler{
		db:        db,
		provider:  provider,
		producer:  producer,
		topic:     topic,
		keySecret: keySecret,
		logger:    logger,
	}
}

// CreateOrder mints a provider-side order for a listing purchase and
// records it locally as Pending. The listing is the price authority: the
// client-sent amount must match it exactly.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "CreateOrder")
	defer span.End()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a positive integer in minor units"})
		return
	}

	userID, _ := middleware.UserID(c)
	span.SetAttributes(
		attribute.Int("user_id", userID),
		attribute.Int("listing_id", req.ListingID),
		attribute.Int64("amount", req.Amount),
	)

	var regularPrice, discountPrice int64
	var offer bool
	err := h.db.QueryRowContext(ctx,
		"SELECT regular_price, discount_price, offer FROM listings WHERE id = $1",
		req.ListingID,
	).Scan(&regularPrice, &discountPrice, &offer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch listing price", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	price := regularPrice
	if offer {
		price = discountPrice
	}
	if req.Amount != price*minorUnitsPerRupee {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount does not match listing price"})
		return
	}

	providerOrder, err := h.provider.CreateOrder(ctx, req.Amount, "INR", newReceipt())
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create provider order", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment order"})
		return
	}

	var order models.Order
	err = h.db.QueryRowContext(ctx,
		"INSERT INTO orders (provider_order_id, listing_id, user_id, price) VALUES ($1, $2, $3, $4) RETURNING "+orderColumns,
		providerOrder.ID, req.ListingID, userID, req.Amount,
	).Scan(&order.ID, &order.ProviderOrderID, &order.ListingID, &order.UserID,
		&order.Price, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to record pending order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	span.SetAttributes(attribute.Int("order.id", order.ID))
	h.publishEvent(ctx, order, "order_created")

	h.logger.Info("Order created",
		zap.Int("order_id", order.ID),
		zap.String("provider_order_id", providerOrder.ID),
	)
	c.JSON(http.StatusCreated, providerOrder)
}

// VerifyOrder reconciles a Pending order from a payment confirmation. The
// confirmation is only trusted after the HMAC signature check passes, and
// the final status comes from the provider's own record of the payment,
// never from the client's claim.
func (h *OrderHandler) VerifyOrder(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "VerifyOrder")
	defer span.End()

	var req models.VerifyOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Invalid payload",
			"error_description": "paymentId, orderId, listingId is required",
		})
		return
	}
	if req.PaymentID == "" || req.OrderID == "" || req.ListingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "Invalid payload",
			"error_description": "paymentId, orderId, listingId is required",
		})
		return
	}

	span.SetAttributes(
		attribute.String("provider_order_id", req.OrderID),
		attribute.String("payment_id", req.PaymentID),
	)

	signature := c.GetHeader("x-razorpay-signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing x-razorpay-signature header"})
		return
	}

	// Trust boundary: a mismatch means a malformed or forged request, so
	// the order must stay untouched. It is not an authoritative payment
	// failure.
	if !payment.VerifySignature(req.OrderID, req.PaymentID, signature, h.keySecret) {
		span.SetAttributes(attribute.Bool("signature.valid", false))
		h.logger.Warn("Payment signature mismatch",
			zap.String("provider_order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Payment verification failed"})
		return
	}

	providerStatus, err := h.provider.FetchPaymentStatus(ctx, req.PaymentID)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to fetch payment status", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to verify payment with provider"})
		return
	}
	span.SetAttributes(attribute.String("payment.status", providerStatus))

	newStatus := models.PaymentStatusFailed
	message := "Payment failed."
	eventType := "order_failed"
	if providerStatus == payment.StatusCaptured {
		newStatus = models.PaymentStatusCompleted
		message = "Payment confirmed."
		eventType = "order_completed"
	}

	// Conditional transition: only a Pending order moves. Matching zero
	// rows means the order is unknown or already terminal.
	var order models.Order
	err = h.db.QueryRowContext(ctx,
		"UPDATE orders SET payment_status = $1, updated_at = CURRENT_TIMESTAMP WHERE provider_order_id = $2 AND payment_status = 'Pending' RETURNING "+orderColumns,
		newStatus, req.OrderID,
	).Scan(&order.ID, &order.ProviderOrderID, &order.ListingID, &order.UserID,
		&order.Price, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		findErr := h.db.QueryRowContext(ctx,
			"SELECT "+orderColumns+" FROM orders WHERE provider_order_id = $1",
			req.OrderID,
		).Scan(&order.ID, &order.ProviderOrderID, &order.ListingID, &order.UserID,
			&order.Price, &order.PaymentStatus, &order.CreatedAt, &order.UpdatedAt)
		if errors.Is(findErr, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if findErr != nil {
			span.RecordError(findErr)
			h.logger.Error("Failed to look up order", zap.Error(findErr))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		// Already reconciled: strict idempotence, no re-transition even if
		// the provider now reports a different status.
		c.JSON(http.StatusOK, gin.H{"message": "Order already reconciled.", "order": order})
		return
	}
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to reconcile order", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	middleware.RecordOrderProcessed(string(order.PaymentStatus))
	h.publishEvent(ctx, order, eventType)

	h.logger.Info("Order reconciled",
		zap.Int("order_id", order.ID),
		zap.String("provider_order_id", order.ProviderOrderID),
		zap.String("payment_status", string(order.PaymentStatus)),
	)
	c.JSON(http.StatusOK, gin.H{"message": message, "order": order})
}

func (h *OrderHandler) publishEvent(ctx context.Context, order models.Order, eventType string) {
	event := models.OrderEvent{
		OrderID:         order.ID,
		ProviderOrderID: order.ProviderOrderID,
		ListingID:       order.ListingID,
		UserID:          order.UserID,
		Price:           order.Price,
		Status:          order.PaymentStatus,
		EventType:       eventType,
	}
	if err := kafka.PublishOrderEvent(ctx, h.producer, h.topic, event, h.logger); err != nil {
		// Don't fail the request, but log the error
		h.logger.Error("Failed to publish order event", zap.String("event_type", eventType), zap.Error(err))
	}
}

func newReceipt() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "receipt_" + hex.EncodeToString(b)
}
