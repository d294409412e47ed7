package model

import "time"

type Listing struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	City        string     `json:"city"`
	Address     string     `json:"address"`
	Bedrooms    int        `json:"bedrooms"`
	Bathrooms   int        `json:"bathrooms"`
	AreaSqm     int        `json:"area_sqm"`
	ImageURL    string     `json:"image_url,omitempty"`
	IsPublished bool       `json:"is_published"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListingQuery struct {
	City          string
	OwnerID       string
	PublishedOnly bool
	PendingOnly   bool
	Page          int
	Limit         int
}
