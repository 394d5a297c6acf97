package models

import (
	"time"
)

const (
	ListingStatusActive  = "active"
	ListingStatusSold    = "sold"
	ListingStatusHidden  = "hidden"
	ListingStatusExpired = "expired"
)

const (
	ListingModeOffering = "offering"
	ListingModeSeeking  = "seeking"
)

// Price 0 means "free". There is no separate flag: a listing with an
// unset price and a deliberately free listing are indistinguishable.
type Listing struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       float64         `json:"price"`
	Location    string          `json:"location"`
	ListingMode string          `json:"listing_mode"`
	ListingType string          `json:"listing_type,omitempty"`
	UserID      int             `json:"user_id"`
	SellerName  string          `json:"seller_name"`
	SellerPhone string          `json:"seller_phone"`
	ImageURL    string          `json:"image_url"`
	Images      []string        `json:"images"`
	Variants    []ImageVariants `json:"variants,omitempty"`
	Status      string          `json:"status"`
	Views       int64           `json:"views"`
	Contacts    int64           `json:"contacts"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`

	RealEstate *RealEstateAttrs `json:"real_estate,omitempty"`
	Vehicle    *VehicleAttrs    `json:"vehicle,omitempty"`
	Job        *JobAttrs        `json:"job,omitempty"`
	Service    *ServiceAttrs    `json:"service,omitempty"`
}

// Category attribute bags. At most one of them is populated, keyed by the
// listing category; nothing enforces the exclusivity beyond the form layer.

type RealEstateAttrs struct {
	PropertyType string  `json:"property_type,omitempty"`
	Rooms        int     `json:"rooms,omitempty"`
	Area         float64 `json:"area,omitempty"`
	Furnished    bool    `json:"furnished,omitempty"`
}

type VehicleAttrs struct {
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Year         int    `json:"year,omitempty"`
	Mileage      int    `json:"mileage,omitempty"`
	Transmission string `json:"transmission,omitempty"`
}

type JobAttrs struct {
	Company    string `json:"company,omitempty"`
	Salary     string `json:"salary,omitempty"`
	Schedule   string `json:"schedule,omitempty"`
	Experience string `json:"experience,omitempty"`
}

type ServiceAttrs struct {
	ServiceType  string `json:"service_type,omitempty"`
	Availability string `json:"availability,omitempty"`
}

type ListingFilterRequest struct {
	Category     string   `json:"category"`
	ActiveFilter string   `json:"active_filter"`
	Location     string   `json:"location"`
	FreeOnly     bool     `json:"free_only"`
	PriceFrom    *float64 `json:"price_from"`
	PriceTo      *float64 `json:"price_to"`
	SortOption   string   `json:"sort"`
}

type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
}
