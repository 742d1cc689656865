package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/Aniket8745/real-estate-api/middleware"
	"github.com/Aniket8745/real-estate-api/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewFeedbackHandler(db *sql.DB, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{db: db, logger: logger}
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Param("listingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Listing ID is required"})
		return
	}

	var req models.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating and content are required"})
		return
	}
	if req.Rating == nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating and content are required"})
		return
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Rating must be between 1 and 5"})
		return
	}

	userID, _ := middleware.UserID(c)

	var feedback models.Feedback
	err = h.db.QueryRowContext(c.Request.Context(),
		`INSERT INTO feedback (listing_id, user_id, rating, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, listing_id, user_id, rating, content, created_at`,
		listingID, userID, *req.Rating, req.Content,
	).Scan(&feedback.ID, &feedback.ListingID, &feedback.UserID, &feedback.Rating,
		&feedback.Content, &feedback.CreatedAt)
	if err != nil {
		h.logger.Error("Failed to create feedback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	middleware.RecordFeedbackCreated()
	h.logger.Info("Feedback created",
		zap.Int("listing_id", listingID),
		zap.Int("user_id", userID),
		zap.Int("rating", *req.Rating),
	)
	c.JSON(http.StatusCreated, feedback)
}

// GetListingFeedbacks returns a listing's feedback with the reviewer's
// username and avatar joined in, newest first.
func (h *FeedbackHandler) GetListingFeedbacks(c *gin.Context) {
	listingID, err := strconv.Atoi(c.Param("listingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Listing ID is required"})
		return
	}

	rows, err := h.db.QueryContext(c.Request.Context(),
		`SELECT f.id, f.listing_id, f.user_id, f.rating, f.content, f.created_at,
			u.username, u.avatar
		FROM feedback f
		JOIN users u ON u.id = f.user_id
		WHERE f.listing_id = $1
		ORDER BY f.created_at DESC`,
		listingID,
	)
	if err != nil {
		h.logger.Error("Failed to fetch feedback", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	defer rows.Close()

	feedbacks := []models.ListingFeedback{}
	for rows.Next() {
		var f models.ListingFeedback
		if err := rows.Scan(&f.ID, &f.ListingID, &f.UserID, &f.Rating, &f.Content,
			&f.CreatedAt, &f.Username, &f.Avatar); err != nil {
			h.logger.Error("Failed to scan feedback", zap.Error(err))
			continue
		}
		feedbacks = append(feedbacks, f)
	}

	c.JSON(http.StatusOK, feedbacks)
}
