package models

import "time"

// Notification is a per-user entry in the notification feed, produced from
// domain events by the notification service.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      EventType `json:"type"`
	RFQID     string    `json:"rfqId"`
	BidID     string    `json:"bidId,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
