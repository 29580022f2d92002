package services

import (
	"context"
	"fmt"
	"time"

	"github.com/procurelink/rfq-service/internal/events"
	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
	"github.com/procurelink/rfq-service/internal/utils"

	"github.com/google/uuid"
)

// allowedRFQTransition is the RFQ lifecycle state machine. Closed, awarded and
// cancelled are terminal.
var allowedRFQTransition = map[models.RFQStatus][]models.RFQStatus{
	models.DraftRFQ:     {models.ActiveRFQ, models.CancelledRFQ},
	models.ActiveRFQ:    {models.ClosedRFQ, models.AwardedRFQ, models.CancelledRFQ},
	models.ClosedRFQ:    {},
	models.AwardedRFQ:   {},
	models.CancelledRFQ: {},
}

func rfqTransitionAllowed(from, to models.RFQStatus) bool {
	for _, status := range allowedRFQTransition[from] {
		if status == to {
			return true
		}
	}
	return false
}

// RFQService owns the RFQ lifecycle: creation, publishing, closing and
// cancellation, plus the buyer-side views over an RFQ's bids.
type RFQService struct {
	rfqs    repository.RFQRepository
	bids    repository.BidRepository
	panels  repository.PanelRepository
	locks   *RFQLocks
	emitter *events.Emitter
	nowFn   func() time.Time
}

// NewRFQService creates a new RFQService.
func NewRFQService(rfqs repository.RFQRepository, bids repository.BidRepository, panels repository.PanelRepository, locks *RFQLocks, emitter *events.Emitter) *RFQService {
	return &RFQService{
		rfqs:    rfqs,
		bids:    bids,
		panels:  panels,
		locks:   locks,
		emitter: emitter,
		nowFn:   time.Now,
	}
}

// CreateRFQ validates and persists a new RFQ in draft or active status.
func (s *RFQService) CreateRFQ(ctx context.Context, req models.RFQRequest) (*models.RFQ, error) {
	if req.BuyerID == "" || req.Title == "" {
		return nil, models.NewValidation("missing required fields: buyerId or title")
	}
	if req.Quantity < 1 {
		return nil, models.NewValidation("quantity must be at least 1")
	}
	now := s.nowFn()
	if !req.ClosingDate.After(now) {
		return nil, models.NewValidation("closing date must be in the future")
	}
	if req.Visibility != models.PublicRFQ && req.Visibility != models.PanelRFQ {
		return nil, models.NewValidation("visibility must be 'public' or 'panel'")
	}
	if req.SMMEPreference && (req.SMMEBonusPercent < 0 || req.SMMEBonusPercent > 100) {
		return nil, models.NewValidation("smme bonus percent must be between 0 and 100")
	}
	if req.MinBudget != nil && req.MaxBudget != nil && *req.MinBudget > *req.MaxBudget {
		return nil, models.NewValidation("min budget exceeds max budget")
	}

	panelID := ""
	if req.Visibility == models.PanelRFQ {
		if req.PanelID == "" {
			return nil, models.NewValidation("panel visibility requires a panelId")
		}
		panel, err := s.panels.GetPanel(ctx, req.PanelID)
		if err != nil {
			return nil, err
		}
		if panel.BuyerID != req.BuyerID {
			return nil, models.NewNotAuthorized("panel belongs to another buyer")
		}
		panelID = req.PanelID
	}

	status := models.ActiveRFQ
	if req.Draft {
		status = models.DraftRFQ
	}

	rfq := &models.RFQ{
		ID:               uuid.New().String(),
		BuyerID:          req.BuyerID,
		Title:            req.Title,
		Description:      req.Description,
		Processor:        req.Processor,
		RAM:              req.RAM,
		Storage:          req.Storage,
		DisplaySize:      req.DisplaySize,
		DeliveryLocation: req.DeliveryLocation,
		Quantity:         req.Quantity,
		MinBudget:        req.MinBudget,
		MaxBudget:        req.MaxBudget,
		ClosingDate:      req.ClosingDate,
		Visibility:       req.Visibility,
		PanelID:          panelID,
		SMMEPreference:   req.SMMEPreference,
		SMMEBonusPercent: req.SMMEBonusPercent,
		Status:           status,
		CreatedAt:        now.UTC(),
	}
	if err := s.rfqs.CreateRFQ(ctx, rfq); err != nil {
		return nil, err
	}
	return rfq, nil
}

// GetRFQ returns one RFQ with its status reconciled against the clock.
func (s *RFQService) GetRFQ(ctx context.Context, rfqID string) (*models.RFQ, error) {
	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	rfq, err := s.rfqs.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, rfq)
}

// GetRFQs returns a page of RFQs, optionally filtered by status. Draft RFQs
// never appear in the shared listing.
func (s *RFQService) GetRFQs(ctx context.Context, limitStr, offsetStr string, statuses []string) ([]models.RFQ, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidation(err.Error())
	}

	allowedStatuses := map[models.RFQStatus]bool{
		models.ActiveRFQ:    true,
		models.ClosedRFQ:    true,
		models.AwardedRFQ:   true,
		models.CancelledRFQ: true,
	}
	if len(statuses) == 0 {
		statuses = []string{string(models.ActiveRFQ)}
	}
	for _, status := range statuses {
		if !allowedStatuses[models.RFQStatus(status)] {
			return nil, models.NewValidation(fmt.Sprintf("unsupported status filter: %s", status))
		}
	}

	rfqs, err := s.rfqs.GetRFQs(ctx, limit, offset, statuses)
	if err != nil {
		return nil, err
	}
	return s.reconcileAll(ctx, rfqs)
}

// GetBuyerRFQs returns the RFQs owned by the acting buyer.
func (s *RFQService) GetBuyerRFQs(ctx context.Context, buyerID, limitStr, offsetStr string) ([]models.RFQ, error) {
	if buyerID == "" {
		return nil, models.NewValidation("missing required query parameter: userId")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidation(err.Error())
	}

	rfqs, err := s.rfqs.GetBuyerRFQs(ctx, buyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.reconcileAll(ctx, rfqs)
}

// PublishRFQ moves a draft RFQ to active. The closing deadline must still be
// in the future.
func (s *RFQService) PublishRFQ(ctx context.Context, rfqID, buyerID string) (*models.RFQ, error) {
	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	rfq, err := s.ownedRFQ(ctx, rfqID, buyerID)
	if err != nil {
		return nil, err
	}
	if !rfqTransitionAllowed(rfq.Status, models.ActiveRFQ) {
		return nil, models.NewInvalidTransition("rfq", string(rfq.Status), string(models.ActiveRFQ))
	}
	if !rfq.ClosingDate.After(s.nowFn()) {
		return nil, models.NewValidation("closing date has already passed")
	}
	return s.rfqs.UpdateRFQStatus(ctx, rfqID, models.ActiveRFQ)
}

// CloseRFQ closes an active RFQ early without awarding it.
func (s *RFQService) CloseRFQ(ctx context.Context, rfqID, buyerID string) (*models.RFQ, error) {
	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	rfq, err := s.ownedRFQ(ctx, rfqID, buyerID)
	if err != nil {
		return nil, err
	}
	rfq, err = s.reconcile(ctx, rfq)
	if err != nil {
		return nil, err
	}
	if !rfqTransitionAllowed(rfq.Status, models.ClosedRFQ) {
		return nil, models.NewInvalidTransition("rfq", string(rfq.Status), string(models.ClosedRFQ))
	}

	updated, err := s.rfqs.UpdateRFQStatus(ctx, rfqID, models.ClosedRFQ)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(models.Event{
		Type:       models.EventRFQClosed,
		RFQID:      rfqID,
		BuyerID:    rfq.BuyerID,
		OccurredAt: s.nowFn().UTC(),
	})
	return updated, nil
}

// CancelRFQ cancels a draft or active RFQ.
func (s *RFQService) CancelRFQ(ctx context.Context, rfqID, buyerID string) (*models.RFQ, error) {
	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	rfq, err := s.ownedRFQ(ctx, rfqID, buyerID)
	if err != nil {
		return nil, err
	}
	rfq, err = s.reconcile(ctx, rfq)
	if err != nil {
		return nil, err
	}
	if !rfqTransitionAllowed(rfq.Status, models.CancelledRFQ) {
		return nil, models.NewInvalidTransition("rfq", string(rfq.Status), string(models.CancelledRFQ))
	}

	updated, err := s.rfqs.UpdateRFQStatus(ctx, rfqID, models.CancelledRFQ)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(models.Event{
		Type:       models.EventRFQCancelled,
		RFQID:      rfqID,
		BuyerID:    rfq.BuyerID,
		OccurredAt: s.nowFn().UTC(),
	})
	return updated, nil
}

// GetRFQBids returns the RFQ's bids in submission order. Owner only.
func (s *RFQService) GetRFQBids(ctx context.Context, rfqID, buyerID string) ([]models.Bid, error) {
	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	if _, err := s.ownedRFQ(ctx, rfqID, buyerID); err != nil {
		return nil, err
	}
	return s.bids.GetRFQBids(ctx, rfqID)
}

// GetEvaluation returns the ranked evaluation of the RFQ's bids. Owner only.
func (s *RFQService) GetEvaluation(ctx context.Context, rfqID, buyerID string) ([]models.EvaluationResult, error) {
	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	rfq, err := s.ownedRFQ(ctx, rfqID, buyerID)
	if err != nil {
		return nil, err
	}
	bids, err := s.bids.GetRFQBids(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return RankBids(rfq, bids), nil
}

func (s *RFQService) ownedRFQ(ctx context.Context, rfqID, buyerID string) (*models.RFQ, error) {
	rfq, err := s.rfqs.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if buyerID == "" || rfq.BuyerID != buyerID {
		return nil, models.NewNotAuthorized("only the owning buyer may act on this rfq")
	}
	return rfq, nil
}

// reconcile applies the lazy deadline transition: an active RFQ whose closing
// date has passed becomes closed before anything else looks at it. Must be
// called while holding the RFQ's lock.
func (s *RFQService) reconcile(ctx context.Context, rfq *models.RFQ) (*models.RFQ, error) {
	return reconcileRFQ(ctx, s.rfqs, s.emitter, rfq, s.nowFn)
}

func (s *RFQService) reconcileAll(ctx context.Context, rfqs []models.RFQ) ([]models.RFQ, error) {
	for i := range rfqs {
		s.locks.Lock(rfqs[i].ID)
		rfq, err := s.reconcile(ctx, &rfqs[i])
		s.locks.Unlock(rfqs[i].ID)
		if err != nil {
			return nil, err
		}
		rfqs[i] = *rfq
	}
	return rfqs, nil
}

func reconcileRFQ(ctx context.Context, rfqs repository.RFQRepository, emitter *events.Emitter, rfq *models.RFQ, now func() time.Time) (*models.RFQ, error) {
	if rfq.Status != models.ActiveRFQ || now().Before(rfq.ClosingDate) {
		return rfq, nil
	}
	updated, err := rfqs.UpdateRFQStatus(ctx, rfq.ID, models.ClosedRFQ)
	if err != nil {
		return nil, err
	}
	emitter.Emit(models.Event{
		Type:       models.EventRFQClosed,
		RFQID:      rfq.ID,
		BuyerID:    rfq.BuyerID,
		OccurredAt: now().UTC(),
	})
	return updated, nil
}
