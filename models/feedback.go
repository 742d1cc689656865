package models

import "time"

type Feedback struct {
	ID        int       `json:"id"`
	ListingID int       `json:"listing_id"`
	UserID    int       `json:"user_id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingFeedback is a feedback record with the reviewer's public profile
// fields joined in for display.
type ListingFeedback struct {
	Feedback
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type CreateFeedbackRequest struct {
	Rating  *int   `json:"rating"`
	Content string `json:"content"`
}
