package models

import "time"

type EventType string // Domain event emitted by the engine

const (
	EventBidSubmitted EventType = "BidSubmitted"
	EventBidAccepted  EventType = "BidAccepted"
	EventBidRejected  EventType = "BidRejected"
	EventRFQAwarded   EventType = "RFQAwarded"
	EventRFQClosed    EventType = "RFQClosed"
	EventRFQCancelled EventType = "RFQCancelled"
)

// Event carries one domain occurrence to notification and messaging
// subscribers. Only the fields relevant to the event type are set.
type Event struct {
	Type         EventType `json:"type"`
	RFQID        string    `json:"rfqId"`
	BidID        string    `json:"bidId,omitempty"`
	SellerID     string    `json:"sellerId,omitempty"`
	BuyerID      string    `json:"buyerId,omitempty"`
	WinningBidID string    `json:"winningBidId,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
