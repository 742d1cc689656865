package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aniket8745/real-estate-api/middleware"
	"github.com/Aniket8745/real-estate-api/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func setupUserTest(t *testing.T) (*UserHandler, sqlmock.Sqlmock, *gin.Engine) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewUserHandler(db, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, 7)
		c.Next()
	})
	router.GET("/user/get/:id", handler.GetUser)
	router.POST("/user/update/:id", handler.UpdateUser)
	router.DELETE("/user/delete/:id", handler.DeleteUser)
	router.GET("/user/listings/:id", handler.GetUserListings)

	return handler, mock, router
}

func TestUserHandler_GetUser_Success(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT id, username, email, avatar, created_at, updated_at FROM users WHERE id = \\$1").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "avatar", "created_at", "updated_at"}).
			AddRow(7, "testuser", "test@example.com", "https://example.com/a.png", time.Now(), time.Now()))

	req := httptest.NewRequest("GET", "/user/get/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	if bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Error("Response body must not contain password material")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestUserHandler_GetUser_NotFound(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("SELECT id, username, email, avatar, created_at, updated_at FROM users WHERE id = \\$1").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("GET", "/user/get/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUserHandler_UpdateUser_NotOwner(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	// Caller is user 7, trying to update user 8
	body, _ := json.Marshal(models.UpdateUserRequest{Username: "hijack"})
	req := httptest.NewRequest("POST", "/user/update/8", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls were made: %v", err)
	}
}

func TestUserHandler_UpdateUser_Success(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("UPDATE users SET").
		WithArgs("newname", "", "", "", 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "avatar", "created_at", "updated_at"}).
			AddRow(7, "newname", "test@example.com", "https://example.com/a.png", time.Now(), time.Now()))

	body, _ := json.Marshal(models.UpdateUserRequest{Username: "newname"})
	req := httptest.NewRequest("POST", "/user/update/7", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestUserHandler_DeleteUser_NotOwner(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	req := httptest.NewRequest("DELETE", "/user/delete/8", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls were made: %v", err)
	}
}

func TestUserHandler_GetUserListings_Success(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "user_ref", "name", "description", "address", "regular_price", "discount_price",
		"bathrooms", "bedrooms", "furnished", "parking", "type", "offer", "image_urls",
		"created_at", "updated_at",
	}).AddRow(3, 7, "Sea View Apartment", "2BHK near the beach", "12 Marine Drive",
		500, 0, 2, 2, true, false, "rent", false, "{https://example.com/1.jpg}",
		time.Now(), time.Now())

	mock.ExpectQuery("SELECT id, user_ref, name, description, address.+FROM listings WHERE user_ref = \\$1").
		WithArgs(7).
		WillReturnRows(rows)

	req := httptest.NewRequest("GET", "/user/listings/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var listings []models.Listing
	if err := json.Unmarshal(w.Body.Bytes(), &listings); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(listings) != 1 || listings[0].UserRef != 7 {
		t.Errorf("Unexpected listings: %+v", listings)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestUserHandler_GetUserListings_NotOwner(t *testing.T) {
	handler, mock, router := setupUserTest(t)
	defer handler.db.Close()

	req := httptest.NewRequest("GET", "/user/listings/8", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls were made: %v", err)
	}
}
