package services

import (
	"context"
	"time"

	"github.com/procurelink/rfq-service/internal/events"
	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
	"github.com/procurelink/rfq-service/internal/utils"

	"github.com/google/uuid"
)

// BidService coordinates bid submission and withdrawal. Both run inside the
// per-RFQ critical section so duplicate checks and the insert cannot
// interleave with a concurrent attempt on the same aggregate.
type BidService struct {
	rfqs       repository.RFQRepository
	bids       repository.BidRepository
	visibility *VisibilityResolver
	locks      *RFQLocks
	emitter    *events.Emitter
	nowFn      func() time.Time
}

// NewBidService creates a new BidService.
func NewBidService(rfqs repository.RFQRepository, bids repository.BidRepository, visibility *VisibilityResolver, locks *RFQLocks, emitter *events.Emitter) *BidService {
	return &BidService{
		rfqs:       rfqs,
		bids:       bids,
		visibility: visibility,
		locks:      locks,
		emitter:    emitter,
		nowFn:      time.Now,
	}
}

// SubmitBid admits one seller's bid against a live RFQ. Preconditions are
// checked in a fixed order so each failure mode surfaces its own error kind:
// RFQ exists, RFQ open, seller authorized, no open duplicate, fields valid.
func (s *BidService) SubmitBid(ctx context.Context, req models.BidRequest) (*models.Bid, error) {
	if req.RFQID == "" || req.SellerID == "" {
		return nil, models.NewValidation("missing required fields: rfqId or sellerId")
	}

	s.locks.Lock(req.RFQID)
	defer s.locks.Unlock(req.RFQID)

	rfq, err := s.rfqs.GetRFQ(ctx, req.RFQID)
	if err != nil {
		return nil, err
	}
	rfq, err = reconcileRFQ(ctx, s.rfqs, s.emitter, rfq, s.nowFn)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	if rfq.Status != models.ActiveRFQ || !now.Before(rfq.ClosingDate) {
		return nil, models.NewRFQClosed("rfq is not accepting bids")
	}

	authorized, err := s.visibility.CanBid(ctx, rfq, req.SellerID)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, models.NewNotAuthorized("seller is not authorized to bid on this rfq")
	}

	open, err := s.bids.HasOpenBid(ctx, req.RFQID, req.SellerID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, models.NewDuplicateBid("seller already has an open bid on this rfq")
	}

	if req.UnitPrice <= 0 {
		return nil, models.NewValidation("unit price must be positive")
	}
	if req.DeliveryTime == "" {
		return nil, models.NewValidation("delivery time is required")
	}
	if req.Condition != models.NewCondition && req.Condition != models.RefurbishedCondition {
		return nil, models.NewValidation("condition must be 'new' or 'refurbished'")
	}

	bid := &models.Bid{
		ID:           uuid.New().String(),
		RFQID:        req.RFQID,
		SellerID:     req.SellerID,
		UnitPrice:    req.UnitPrice,
		TotalAmount:  req.UnitPrice * float64(rfq.Quantity),
		DeliveryTime: req.DeliveryTime,
		Warranty:     req.Warranty,
		Condition:    req.Condition,
		Notes:        req.Notes,
		SellerIsSMME: req.SellerIsSMME,
		Status:       models.PendingBid,
		CreatedAt:    now.UTC(),
	}
	if err := s.bids.CreateBid(ctx, bid); err != nil {
		return nil, err
	}

	s.emitter.Emit(models.Event{
		Type:       models.EventBidSubmitted,
		RFQID:      rfq.ID,
		BidID:      bid.ID,
		SellerID:   bid.SellerID,
		BuyerID:    rfq.BuyerID,
		OccurredAt: now.UTC(),
	})
	return bid, nil
}

// WithdrawBid withdraws a pending bid. Legal only for the owning seller while
// the parent RFQ is still active; withdrawing an already-withdrawn bid is a
// hard failure rather than a no-op so caller bugs surface.
func (s *BidService) WithdrawBid(ctx context.Context, bidID, sellerID string) (*models.Bid, error) {
	if sellerID == "" {
		return nil, models.NewValidation("missing required query parameter: userId")
	}

	bid, err := s.bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(bid.RFQID)
	defer s.locks.Unlock(bid.RFQID)

	// Re-read inside the critical section; the first read only located the aggregate.
	bid, err = s.bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.SellerID != sellerID {
		return nil, models.NewNotAuthorized("only the submitting seller may withdraw this bid")
	}
	if bid.Status != models.PendingBid {
		return nil, models.NewInvalidTransition("bid", string(bid.Status), string(models.WithdrawnBid))
	}

	rfq, err := s.rfqs.GetRFQ(ctx, bid.RFQID)
	if err != nil {
		return nil, err
	}
	rfq, err = reconcileRFQ(ctx, s.rfqs, s.emitter, rfq, s.nowFn)
	if err != nil {
		return nil, err
	}
	if rfq.Status != models.ActiveRFQ {
		return nil, models.NewRFQClosed("rfq is no longer active")
	}

	return s.bids.UpdateBidStatus(ctx, bidID, models.WithdrawnBid)
}

// GetSellerBids returns the acting seller's bids, newest first.
func (s *BidService) GetSellerBids(ctx context.Context, sellerID, limitStr, offsetStr string) ([]models.Bid, error) {
	if sellerID == "" {
		return nil, models.NewValidation("missing required query parameter: userId")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidation(err.Error())
	}
	return s.bids.GetSellerBids(ctx, sellerID, limit, offset)
}

// CanBid resolves visibility for one seller against one RFQ.
func (s *BidService) CanBid(ctx context.Context, rfqID, sellerID string) (bool, error) {
	if sellerID == "" {
		return false, models.NewValidation("missing required query parameter: sellerId")
	}
	rfq, err := s.rfqs.GetRFQ(ctx, rfqID)
	if err != nil {
		return false, err
	}
	return s.visibility.CanBid(ctx, rfq, sellerID)
}
