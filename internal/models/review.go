package models

import "time"

type Review struct {
	ID        int        `json:"id"`
	ListingID int        `json:"listing_id"`
	UserID    int        `json:"user_id"`
	UserName  string     `json:"user_name,omitempty"`
	Rating    float64    `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}
