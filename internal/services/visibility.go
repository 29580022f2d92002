package services

import (
	"context"

	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
)

// VisibilityResolver decides whether a seller may view and bid on an RFQ.
// Read-only; lifecycle gating (active status, deadline) lives elsewhere.
type VisibilityResolver struct {
	panels repository.PanelRepository
}

// NewVisibilityResolver creates a new VisibilityResolver.
func NewVisibilityResolver(panels repository.PanelRepository) *VisibilityResolver {
	return &VisibilityResolver{panels: panels}
}

// CanBid reports whether the seller is authorized to bid on the RFQ. Public
// RFQs admit everyone; panel RFQs admit only active members, so invited or
// removed sellers are refused.
func (v *VisibilityResolver) CanBid(ctx context.Context, rfq *models.RFQ, sellerID string) (bool, error) {
	if rfq.Visibility == models.PublicRFQ {
		return true, nil
	}
	return v.panels.IsActiveMember(ctx, rfq.PanelID, sellerID)
}
