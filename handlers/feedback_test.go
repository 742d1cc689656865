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

func setupFeedbackTest(t *testing.T) (*FeedbackHandler, sqlmock.Sqlmock, *gin.Engine) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	handler := NewFeedbackHandler(db, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/feedback/listing/:listingId", handler.GetListingFeedbacks)
	router.POST("/feedback/listing/:listingId", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, 7)
		c.Next()
	}, handler.CreateFeedback)

	return handler, mock, router
}

func postFeedback(router *gin.Engine, listingID string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/feedback/listing/"+listingID, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFeedbackHandler_CreateFeedback_Success(t *testing.T) {
	handler, mock, router := setupFeedbackTest(t)
	defer handler.db.Close()

	mock.ExpectQuery("INSERT INTO feedback").
		WithArgs(3, 7, 4, "Great location, responsive owner").
		WillReturnRows(sqlmock.NewRows([]string{"id", "listing_id", "user_id", "rating", "content", "created_at"}).
			AddRow(1, 3, 7, 4, "Great location, responsive owner", time.Now()))

	body, _ := json.Marshal(map[string]interface{}{
		"rating":  4,
		"content": "Great location, responsive owner",
	})
	w := postFeedback(router, "3", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}

	var feedback models.Feedback
	if err := json.Unmarshal(w.Body.Bytes(), &feedback); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if feedback.Rating != 4 || feedback.ListingID != 3 || feedback.UserID != 7 {
		t.Errorf("Unexpected feedback record: %+v", feedback)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestFeedbackHandler_CreateFeedback_RatingOutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		rating interface{}
	}{
		{"zero", 0},
		{"six", 6},
		{"negative", -1},
		{"non-numeric", "five"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler, mock, router := setupFeedbackTest(t)
			defer handler.db.Close()

			body, _ := json.Marshal(map[string]interface{}{
				"rating":  tc.rating,
				"content": "Nice place",
			})
			w := postFeedback(router, "3", body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
			}

			// Out-of-range numeric ratings get the exact bounds message
			if _, isInt := tc.rating.(int); isInt && tc.rating != 0 {
				var resp map[string]string
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if resp["message"] != "Rating must be between 1 and 5" {
					t.Errorf("Expected bounds message, got %q", resp["message"])
				}
			}

			// No record may be created
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("Unexpected database calls were made: %v", err)
			}
		})
	}
}

func TestFeedbackHandler_CreateFeedback_ValidRatings(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		handler, mock, router := setupFeedbackTest(t)

		mock.ExpectQuery("INSERT INTO feedback").
			WithArgs(3, 7, rating, "Nice place").
			WillReturnRows(sqlmock.NewRows([]string{"id", "listing_id", "user_id", "rating", "content", "created_at"}).
				AddRow(1, 3, 7, rating, "Nice place", time.Now()))

		body, _ := json.Marshal(map[string]interface{}{
			"rating":  rating,
			"content": "Nice place",
		})
		w := postFeedback(router, "3", body)

		if w.Code != http.StatusCreated {
			t.Errorf("Rating %d: expected status %d, got %d", rating, http.StatusCreated, w.Code)
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Rating %d: database expectations were not met: %v", rating, err)
		}
		handler.db.Close()
	}
}

func TestFeedbackHandler_CreateFeedback_MissingFields(t *testing.T) {
	handler, mock, router := setupFeedbackTest(t)
	defer handler.db.Close()

	body, _ := json.Marshal(map[string]interface{}{"rating": 4})
	w := postFeedback(router, "3", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["message"] != "Rating and content are required" {
		t.Errorf("Expected required-fields message, got %q", resp["message"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls were made: %v", err)
	}
}

func TestFeedbackHandler_GetListingFeedbacks(t *testing.T) {
	handler, mock, router := setupFeedbackTest(t)
	defer handler.db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "listing_id", "user_id", "rating", "content", "created_at", "username", "avatar",
	}).
		AddRow(2, 3, 8, 5, "Would rent again", time.Now(), "priya", "https://example.com/priya.png").
		AddRow(1, 3, 7, 3, "Decent but noisy", time.Now(), "arjun", "https://example.com/arjun.png")

	mock.ExpectQuery("SELECT f.id, f.listing_id, f.user_id, f.rating, f.content, f.created_at").
		WithArgs(3).
		WillReturnRows(rows)

	req := httptest.NewRequest("GET", "/feedback/listing/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var feedbacks []models.ListingFeedback
	if err := json.Unmarshal(w.Body.Bytes(), &feedbacks); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(feedbacks) != 2 {
		t.Fatalf("Expected 2 feedback records, got %d", len(feedbacks))
	}
	if feedbacks[0].Username != "priya" || feedbacks[0].Avatar == "" {
		t.Errorf("Expected denormalized reviewer fields, got %+v", feedbacks[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}
