package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Aniket8745/real-estate-api/cache"
	"github.com/Aniket8745/real-estate-api/middleware"
	"github.com/Aniket8745/real-estate-api/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const listingColumns = `id, user_ref, name, description, address, regular_price, discount_price,
	bathrooms, bedrooms, furnished, parking, type, offer, image_urls, created_at, updated_at`

type ListingHandler struct {
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewListingHandler(db *sql.DB, redisClient *redis.Client, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "CreateListing")
	defer span.End()

	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	span.SetAttributes(attribute.Int("user_id", userID))

	var listing models.Listing
	err := h.db.QueryRowContext(ctx,
		`INSERT INTO listings (user_ref, name, description, address, regular_price, discount_price,
			bathrooms, bedrooms, furnished, parking, type, offer, image_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+listingColumns,
		userID, req.Name, req.Description, req.Address, req.RegularPrice, req.DiscountPrice,
		req.Bathrooms, req.Bedrooms, req.Furnished, req.Parking, req.Type, req.Offer,
		pq.Array(req.ImageURLs),
	).Scan(&listing.ID, &listing.UserRef, &listing.Name, &listing.Description, &listing.Address,
		&listing.RegularPrice, &listing.DiscountPrice, &listing.Bathrooms, &listing.Bedrooms,
		&listing.Furnished, &listing.Parking, &listing.Type, &listing.Offer,
		pq.Array(&listing.ImageURLs), &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to create listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	span.SetAttributes(attribute.Int("listing.id", listing.ID))
	h.logger.Info("Listing created", zap.Int("listing_id", listing.ID))
	c.JSON(http.StatusCreated, listing)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "GetListing")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("listing.id", id))

	// Try to get from cache first
	cachedData, err := cache.GetListing(ctx, h.redisClient, id)
	if err == nil {
		var listing models.Listing
		if err := json.Unmarshal(cachedData, &listing); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			c.JSON(http.StatusOK, listing)
			return
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	listing, err := h.fetchListing(c, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	cache.SetListing(ctx, h.redisClient, id, listing, cache.ListingTTL)

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "UpdateListing")
	defer span.End()

	id := c.Param("id")
	listingID, err := strconv.Atoi(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	owner, err := h.listingOwner(c, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch listing owner", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	callerID, _ := middleware.UserID(c)
	if owner != callerID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You can only update your own listings"})
		return
	}

	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var listing models.Listing
	err = h.db.QueryRowContext(ctx,
		`UPDATE listings SET name = $1, description = $2, address = $3, regular_price = $4,
			discount_price = $5, bathrooms = $6, bedrooms = $7, furnished = $8, parking = $9,
			type = $10, offer = $11, image_urls = $12, updated_at = CURRENT_TIMESTAMP
		WHERE id = $13
		RETURNING `+listingColumns,
		req.Name, req.Description, req.Address, req.RegularPrice, req.DiscountPrice,
		req.Bathrooms, req.Bedrooms, req.Furnished, req.Parking, req.Type, req.Offer,
		pq.Array(req.ImageURLs), listingID,
	).Scan(&listing.ID, &listing.UserRef, &listing.Name, &listing.Description, &listing.Address,
		&listing.RegularPrice, &listing.DiscountPrice, &listing.Bathrooms, &listing.Bedrooms,
		&listing.Furnished, &listing.Parking, &listing.Type, &listing.Offer,
		pq.Array(&listing.ImageURLs), &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to update listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	cache.DeleteListing(ctx, h.redisClient, id)

	c.JSON(http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "DeleteListing")
	defer span.End()

	id := c.Param("id")
	listingID, err := strconv.Atoi(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return
	}

	owner, err := h.listingOwner(c, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		span.RecordError(err)
		h.logger.Error("Failed to fetch listing owner", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	callerID, _ := middleware.UserID(c)
	if owner != callerID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You can only delete your own listings"})
		return
	}

	if _, err := h.db.ExecContext(ctx, "DELETE FROM listings WHERE id = $1", listingID); err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to delete listing", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	cache.DeleteListing(ctx, h.redisClient, id)

	c.JSON(http.StatusOK, gin.H{"message": "Listing has been deleted"})
}

// SearchListings filters by free-text name match, listing type and amenity
// flags, with limit/offset paging and created_at or price ordering.
func (h *ListingHandler) SearchListings(c *gin.Context) {
	ctx, span := otel.Tracer("real-estate-api").Start(c.Request.Context(), "SearchListings")
	defer span.End()

	query := `SELECT ` + listingColumns + ` FROM listings WHERE name ILIKE $1`
	args := []interface{}{"%" + c.Query("searchTerm") + "%"}

	if t := c.Query("type"); t == string(models.ListingTypeRent) || t == string(models.ListingTypeSale) {
		args = append(args, t)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	for _, flag := range []string{"furnished", "parking", "offer"} {
		if c.Query(flag) == "true" {
			query += fmt.Sprintf(" AND %s = TRUE", flag)
		}
	}

	sortCol := "created_at"
	if c.Query("sort") == "regular_price" {
		sortCol = "regular_price"
	}
	direction := "DESC"
	if c.Query("order") == "asc" {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortCol, direction)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "9"))
	if err != nil || limit <= 0 {
		limit = 9
	}
	startIndex, err := strconv.Atoi(c.DefaultQuery("startIndex", "0"))
	if err != nil || startIndex < 0 {
		startIndex = 0
	}
	args = append(args, limit, startIndex)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("Failed to search listings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	listings := []models.Listing{}
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.UserRef, &l.Name, &l.Description, &l.Address,
			&l.RegularPrice, &l.DiscountPrice, &l.Bathrooms, &l.Bedrooms,
			&l.Furnished, &l.Parking, &l.Type, &l.Offer, pq.Array(&l.ImageURLs),
			&l.CreatedAt, &l.UpdatedAt); err != nil {
			span.RecordError(err)
			h.logger.Error("Failed to scan listing", zap.Error(err))
			continue
		}
		listings = append(listings, l)
	}

	span.SetAttributes(attribute.Int("listings.count", len(listings)))
	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) fetchListing(c *gin.Context, id string) (models.Listing, error) {
	var l models.Listing
	err := h.db.QueryRowContext(c.Request.Context(),
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id,
	).Scan(&l.ID, &l.UserRef, &l.Name, &l.Description, &l.Address,
		&l.RegularPrice, &l.DiscountPrice, &l.Bathrooms, &l.Bedrooms,
		&l.Furnished, &l.Parking, &l.Type, &l.Offer, pq.Array(&l.ImageURLs),
		&l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (h *ListingHandler) listingOwner(c *gin.Context, listingID int) (int, error) {
	var owner int
	err := h.db.QueryRowContext(c.Request.Context(),
		"SELECT user_ref FROM listings WHERE id = $1", listingID).Scan(&owner)
	return owner, err
}
