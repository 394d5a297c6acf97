package models

import "time"

type Chat struct {
	ID        int `json:"id"`
	ListingID int `json:"listing_id"`
	BuyerID   int `json:"buyer_id"`
	SellerID  int `json:"seller_id"`
	Buyer     struct {
		Name       string  `json:"name"`
		AvatarPath *string `json:"avatar_path,omitempty"`
	} `json:"buyer"`
	Seller struct {
		Name       string  `json:"name"`
		AvatarPath *string `json:"avatar_path,omitempty"`
	} `json:"seller"`
	LastMessage string    `json:"last_message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
