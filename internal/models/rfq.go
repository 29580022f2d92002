package models

import "time"

type (
	RFQStatus     string // Lifecycle status of an RFQ
	RFQVisibility string // Who may view and bid on an RFQ
)

const (
	DraftRFQ     RFQStatus = "draft"     // RFQ saved but not yet open for bids
	ActiveRFQ    RFQStatus = "active"    // RFQ open for bids
	ClosedRFQ    RFQStatus = "closed"    // RFQ closed without an award
	AwardedRFQ   RFQStatus = "awarded"   // RFQ awarded to a winning bid
	CancelledRFQ RFQStatus = "cancelled" // RFQ cancelled by its buyer

	PublicRFQ RFQVisibility = "public" // Any seller may bid
	PanelRFQ  RFQVisibility = "panel"  // Only active panel members may bid
)

// RFQ represents a buyer's request for quotation. The specification fields
// (processor, RAM, storage, display) are opaque to the engine and only carried
// for display.
type RFQ struct {
	ID               string        `json:"id"`
	BuyerID          string        `json:"buyerId"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Processor        string        `json:"processor"`
	RAM              string        `json:"ram"`
	Storage          string        `json:"storage"`
	DisplaySize      string        `json:"displaySize"`
	DeliveryLocation string        `json:"deliveryLocation"`
	Quantity         int           `json:"quantity"`
	MinBudget        *float64      `json:"minBudget,omitempty"`
	MaxBudget        *float64      `json:"maxBudget,omitempty"`
	ClosingDate      time.Time     `json:"closingDate"`
	Visibility       RFQVisibility `json:"visibility"`
	PanelID          string        `json:"panelId,omitempty"`
	SMMEPreference   bool          `json:"smmePreference"`
	SMMEBonusPercent float64       `json:"smmeBonusPercent"`
	Status           RFQStatus     `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// RFQRequest represents the request body for creating an RFQ.
type RFQRequest struct {
	BuyerID          string        `json:"buyerId"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Processor        string        `json:"processor"`
	RAM              string        `json:"ram"`
	Storage          string        `json:"storage"`
	DisplaySize      string        `json:"displaySize"`
	DeliveryLocation string        `json:"deliveryLocation"`
	Quantity         int           `json:"quantity"`
	MinBudget        *float64      `json:"minBudget,omitempty"`
	MaxBudget        *float64      `json:"maxBudget,omitempty"`
	ClosingDate      time.Time     `json:"closingDate"`
	Visibility       RFQVisibility `json:"visibility"`
	PanelID          string        `json:"panelId,omitempty"`
	SMMEPreference   bool          `json:"smmePreference"`
	SMMEBonusPercent float64       `json:"smmeBonusPercent"`
	Draft            bool          `json:"draft"`
}

// Terminal reports whether no further status transition is possible.
func (s RFQStatus) Terminal() bool {
	return s == ClosedRFQ || s == AwardedRFQ || s == CancelledRFQ
}
