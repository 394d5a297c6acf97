package models

import "time"

const (
	ComplaintStatusOpen      = "open"
	ComplaintStatusResolved  = "resolved"
	ComplaintStatusDismissed = "dismissed"
)

type Complaint struct {
	ID         int        `json:"id"`
	ListingID  int        `json:"listing_id"`
	UserID     int        `json:"user_id"`
	Reason     string     `json:"reason"`
	Details    string     `json:"details,omitempty"`
	Status     string     `json:"status"`
	ResolvedBy int        `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
