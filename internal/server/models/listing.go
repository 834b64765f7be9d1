package models

import "time"

type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingSold     ListingStatus = "sold"
	ListingArchived ListingStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingActive, ListingSold, ListingArchived:
		return true
	}
	return false
}

type Listing struct {
	ID          string        `json:"id"`
	SellerID    string        `json:"sellerId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	PriceCents  int64         `json:"priceCents"`
	Currency    string        `json:"currency"`
	Category    string        `json:"category"`
	Location    string        `json:"location"`
	Status      ListingStatus `json:"status"`
	ImageKey    string        `json:"imageKey,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ListingUpdate is a partial update; nil fields are left untouched.
type ListingUpdate struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	PriceCents  *int64         `json:"priceCents"`
	Currency    *string        `json:"currency"`
	Category    *string        `json:"category"`
	Location    *string        `json:"location"`
	Status      *ListingStatus `json:"status"`
	ImageKey    *string        `json:"-"`
}

// Apply copies the non-nil fields of u onto l.
func (u ListingUpdate) Apply(l *Listing) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.PriceCents != nil {
		l.PriceCents = *u.PriceCents
	}
	if u.Currency != nil {
		l.Currency = *u.Currency
	}
	if u.Category != nil {
		l.Category = *u.Category
	}
	if u.Location != nil {
		l.Location = *u.Location
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.ImageKey != nil {
		l.ImageKey = *u.ImageKey
	}
}
