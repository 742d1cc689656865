package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/Aniket8745/real-estate-api/middleware"
	"github.com/Aniket8745/real-estate-api/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewUserHandler(db *sql.DB, logger *zap.Logger) *UserHandler {
	return &UserHandler{db: db, logger: logger}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	err = h.db.QueryRowContext(c.Request.Context(),
		"SELECT id, username, email, avatar, created_at, updated_at FROM users WHERE id = $1",
		userID,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("Failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	callerID, _ := middleware.UserID(c)
	if callerID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You can only update your own account"})
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passwordHash := ""
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		passwordHash = string(hashed)
	}

	// COALESCE/NULLIF keeps untouched fields at their current values
	var user models.User
	err = h.db.QueryRowContext(c.Request.Context(),
		`UPDATE users SET
			username = COALESCE(NULLIF($1, ''), username),
			email = COALESCE(NULLIF($2, ''), email),
			password_hash = COALESCE(NULLIF($3, ''), password_hash),
			avatar = COALESCE(NULLIF($4, ''), avatar),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING id, username, email, avatar, created_at, updated_at`,
		req.Username, req.Email, passwordHash, req.Avatar, userID,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Avatar, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.logger.Error("Failed to update user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	callerID, _ := middleware.UserID(c)
	if callerID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You can only delete your own account"})
		return
	}

	result, err := h.db.ExecContext(c.Request.Context(), "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		h.logger.Error("Failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User has been deleted"})
}

func (h *UserHandler) GetUserListings(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	callerID, _ := middleware.UserID(c)
	if callerID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "You can only view your own listings"})
		return
	}

	rows, err := h.db.QueryContext(c.Request.Context(),
		`SELECT id, user_ref, name, description, address, regular_price, discount_price,
			bathrooms, bedrooms, furnished, parking, type, offer, image_urls, created_at, updated_at
		FROM listings WHERE user_ref = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		h.logger.Error("Failed to fetch user listings", zap.Error(err))
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
			h.logger.Error("Failed to scan listing", zap.Error(err))
			continue
		}
		listings = append(listings, l)
	}

	c.JSON(http.StatusOK, listings)
}
