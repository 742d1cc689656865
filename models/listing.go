package models

import "time"

type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
)

type Listing struct {
	ID            int         `json:"id"`
	UserRef       int         `json:"user_ref"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	RegularPrice  int64       `json:"regular_price"`
	DiscountPrice int64       `json:"discount_price"`
	Bathrooms     int         `json:"bathrooms"`
	Bedrooms      int         `json:"bedrooms"`
	Furnished     bool        `json:"furnished"`
	Parking       bool        `json:"parking"`
	Type          ListingType `json:"type"`
	Offer         bool        `json:"offer"`
	ImageURLs     []string    `json:"image_urls"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type CreateListingRequest struct {
	Name          string      `json:"name" binding:"required"`
	Description   string      `json:"description" binding:"required"`
	Address       string      `json:"address" binding:"required"`
	RegularPrice  int64       `json:"regular_price" binding:"required,gt=0"`
	DiscountPrice int64       `json:"discount_price" binding:"gte=0"`
	Bathrooms     int         `json:"bathrooms" binding:"required,gt=0"`
	Bedrooms      int         `json:"bedrooms" binding:"required,gt=0"`
	Furnished     bool        `json:"furnished"`
	Parking       bool        `json:"parking"`
	Type          ListingType `json:"type" binding:"required,oneof=rent sale"`
	Offer         bool        `json:"offer"`
	ImageURLs     []string    `json:"image_urls" binding:"required,min=1"`
}
