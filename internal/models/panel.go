package models

import "time"

type PanelMemberStatus string // Membership status of a seller on a panel

const (
	InvitedMember PanelMemberStatus = "invited" // Invited, not yet an authorized bidder
	ActiveMember  PanelMemberStatus = "active"  // Authorized to bid on panel RFQs
	RemovedMember PanelMemberStatus = "removed" // Removed from the panel
)

// Panel represents a buyer-curated allow-list of sellers.
type Panel struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// PanelMember represents one seller's membership on a panel.
type PanelMember struct {
	PanelID   string            `json:"panelId"`
	SellerID  string            `json:"sellerId"`
	Status    PanelMemberStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// PanelRequest represents the request body for creating a panel.
type PanelRequest struct {
	BuyerID string `json:"buyerId"`
	Name    string `json:"name"`
}
