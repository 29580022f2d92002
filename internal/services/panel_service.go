package services

import (
	"context"
	"time"

	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
	"github.com/procurelink/rfq-service/internal/utils"

	"github.com/google/uuid"
)

// allowedMemberTransition is the panel-membership state machine. Removal is
// terminal; a removed seller must be re-invited as a new record by the panel
// management flow, which is outside this service.
var allowedMemberTransition = map[models.PanelMemberStatus][]models.PanelMemberStatus{
	models.InvitedMember: {models.ActiveMember, models.RemovedMember},
	models.ActiveMember:  {models.RemovedMember},
	models.RemovedMember: {},
}

func memberTransitionAllowed(from, to models.PanelMemberStatus) bool {
	for _, status := range allowedMemberTransition[from] {
		if status == to {
			return true
		}
	}
	return false
}

// PanelService owns buyer-curated seller panels and their membership.
type PanelService struct {
	panels repository.PanelRepository
	nowFn  func() time.Time
}

// NewPanelService creates a new PanelService.
func NewPanelService(panels repository.PanelRepository) *PanelService {
	return &PanelService{panels: panels, nowFn: time.Now}
}

// CreatePanel validates and persists a new panel.
func (s *PanelService) CreatePanel(ctx context.Context, req models.PanelRequest) (*models.Panel, error) {
	if req.BuyerID == "" || req.Name == "" {
		return nil, models.NewValidation("missing required fields: buyerId or name")
	}
	panel := &models.Panel{
		ID:        uuid.New().String(),
		BuyerID:   req.BuyerID,
		Name:      req.Name,
		CreatedAt: s.nowFn().UTC(),
	}
	if err := s.panels.CreatePanel(ctx, panel); err != nil {
		return nil, err
	}
	return panel, nil
}

// GetBuyerPanels returns the acting buyer's panels.
func (s *PanelService) GetBuyerPanels(ctx context.Context, buyerID, limitStr, offsetStr string) ([]models.Panel, error) {
	if buyerID == "" {
		return nil, models.NewValidation("missing required query parameter: userId")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidation(err.Error())
	}
	return s.panels.GetBuyerPanels(ctx, buyerID, limit, offset)
}

// InviteMember adds a seller to the panel in invited status. Invited sellers
// are not yet authorized bidders.
func (s *PanelService) InviteMember(ctx context.Context, panelID, buyerID, sellerID string) (*models.PanelMember, error) {
	if sellerID == "" {
		return nil, models.NewValidation("missing required field: sellerId")
	}
	if _, err := s.ownedPanel(ctx, panelID, buyerID); err != nil {
		return nil, err
	}
	member := &models.PanelMember{
		PanelID:   panelID,
		SellerID:  sellerID,
		Status:    models.InvitedMember,
		CreatedAt: s.nowFn().UTC(),
	}
	if err := s.panels.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateMemberStatus moves a membership along invited -> active -> removed.
func (s *PanelService) UpdateMemberStatus(ctx context.Context, panelID, buyerID, sellerID, status string) (*models.PanelMember, error) {
	newStatus := models.PanelMemberStatus(status)
	if newStatus != models.ActiveMember && newStatus != models.RemovedMember {
		return nil, models.NewValidation("status must be 'active' or 'removed'")
	}
	if _, err := s.ownedPanel(ctx, panelID, buyerID); err != nil {
		return nil, err
	}

	member, err := s.panels.GetMember(ctx, panelID, sellerID)
	if err != nil {
		return nil, err
	}
	if !memberTransitionAllowed(member.Status, newStatus) {
		return nil, models.NewInvalidTransition("panel member", string(member.Status), string(newStatus))
	}
	return s.panels.UpdateMemberStatus(ctx, panelID, sellerID, newStatus)
}

// GetMembers returns the panel's membership records. Owner only.
func (s *PanelService) GetMembers(ctx context.Context, panelID, buyerID string) ([]models.PanelMember, error) {
	if _, err := s.ownedPanel(ctx, panelID, buyerID); err != nil {
		return nil, err
	}
	return s.panels.GetMembers(ctx, panelID)
}

func (s *PanelService) ownedPanel(ctx context.Context, panelID, buyerID string) (*models.Panel, error) {
	panel, err := s.panels.GetPanel(ctx, panelID)
	if err != nil {
		return nil, err
	}
	if buyerID == "" || panel.BuyerID != buyerID {
		return nil, models.NewNotAuthorized("only the owning buyer may manage this panel")
	}
	return panel, nil
}
