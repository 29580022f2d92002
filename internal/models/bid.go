package models

import "time"

type (
	BidStatus    string // Lifecycle status of a bid
	BidCondition string // Condition of the offered hardware
)

const (
	PendingBid   BidStatus = "pending"   // Bid submitted, awaiting a decision
	AcceptedBid  BidStatus = "accepted"  // Bid chosen as the RFQ winner
	RejectedBid  BidStatus = "rejected"  // Bid passed over during the award
	WithdrawnBid BidStatus = "withdrawn" // Bid withdrawn by its seller

	NewCondition         BidCondition = "new"
	RefurbishedCondition BidCondition = "refurbished"
)

// Bid represents a seller's quote against one RFQ. SellerIsSMME is snapshotted
// at submission so later certification changes do not reshuffle an evaluation.
type Bid struct {
	ID           string       `json:"id"`
	RFQID        string       `json:"rfqId"`
	SellerID     string       `json:"sellerId"`
	UnitPrice    float64      `json:"unitPrice"`
	TotalAmount  float64      `json:"totalAmount"`
	DeliveryTime string       `json:"deliveryTime"`
	Warranty     string       `json:"warranty"`
	Condition    BidCondition `json:"condition"`
	Notes        string       `json:"notes,omitempty"`
	SellerIsSMME bool         `json:"sellerIsSmme"`
	Status       BidStatus    `json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// BidRequest represents the request body for submitting a bid.
type BidRequest struct {
	RFQID        string       `json:"rfqId"`
	SellerID     string       `json:"sellerId"`
	UnitPrice    float64      `json:"unitPrice"`
	DeliveryTime string       `json:"deliveryTime"`
	Warranty     string       `json:"warranty"`
	Condition    BidCondition `json:"condition"`
	Notes        string       `json:"notes,omitempty"`
	SellerIsSMME bool         `json:"sellerIsSmme"`
}

// EvaluationResult is the derived score of one bid within an RFQ's evaluation.
// Recomputed on demand, never persisted.
type EvaluationResult struct {
	BidID         string  `json:"bidId"`
	SellerID      string  `json:"sellerId"`
	TotalAmount   float64 `json:"totalAmount"`
	AdjustedPrice float64 `json:"adjustedPrice"`
	SMMEApplied   bool    `json:"smmeApplied"`
	Rank          int     `json:"rank"`
}

// AwardResult is the outcome of an award transaction.
type AwardResult struct {
	RFQ          *RFQ     `json:"rfq"`
	WinningBid   *Bid     `json:"winningBid"`
	RejectedBids []string `json:"rejectedBids"`
}
