package services

import (
	"context"
	"time"

	"github.com/procurelink/rfq-service/internal/events"
	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
)

// AwardService performs the award transaction: exactly one winning bid, every
// other open bid rejected, the RFQ closed as awarded, all or nothing.
type AwardService struct {
	rfqs    repository.RFQRepository
	bids    repository.BidRepository
	locks   *RFQLocks
	emitter *events.Emitter
	nowFn   func() time.Time
}

// NewAwardService creates a new AwardService.
func NewAwardService(rfqs repository.RFQRepository, bids repository.BidRepository, locks *RFQLocks, emitter *events.Emitter) *AwardService {
	return &AwardService{
		rfqs:    rfqs,
		bids:    bids,
		locks:   locks,
		emitter: emitter,
		nowFn:   time.Now,
	}
}

// AwardBid awards the RFQ to one pending bid on behalf of the owning buyer.
// The store applies the decision as a single transaction; events are emitted
// only after it commits, as BidAccepted, BidRejected per loser, RFQAwarded.
func (s *AwardService) AwardBid(ctx context.Context, rfqID, bidID, buyerID string) (*models.AwardResult, error) {
	if bidID == "" || buyerID == "" {
		return nil, models.NewValidation("missing required query parameters: bidId or userId")
	}

	s.locks.Lock(rfqID)
	defer s.locks.Unlock(rfqID)

	rfq, err := s.rfqs.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.BuyerID != buyerID {
		return nil, models.NewNotAuthorized("only the owning buyer may award this rfq")
	}
	rfq, err = reconcileRFQ(ctx, s.rfqs, s.emitter, rfq, s.nowFn)
	if err != nil {
		return nil, err
	}
	if rfq.Status != models.ActiveRFQ {
		return nil, models.NewInvalidTransition("rfq", string(rfq.Status), string(models.AwardedRFQ))
	}

	bid, err := s.bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.RFQID != rfqID {
		return nil, models.NewValidation("bid does not belong to this rfq")
	}
	if bid.Status != models.PendingBid {
		return nil, models.NewValidation("only a pending bid can be awarded")
	}

	result, err := s.bids.AwardRFQ(ctx, rfqID, bidID)
	if err != nil {
		return nil, err
	}

	occurred := s.nowFn().UTC()
	s.emitter.Emit(models.Event{
		Type:       models.EventBidAccepted,
		RFQID:      rfqID,
		BidID:      result.WinningBid.ID,
		SellerID:   result.WinningBid.SellerID,
		OccurredAt: occurred,
	})
	for _, rejectedID := range result.RejectedBids {
		s.emitter.Emit(models.Event{
			Type:       models.EventBidRejected,
			RFQID:      rfqID,
			BidID:      rejectedID,
			OccurredAt: occurred,
		})
	}
	s.emitter.Emit(models.Event{
		Type:         models.EventRFQAwarded,
		RFQID:        rfqID,
		BuyerID:      buyerID,
		WinningBidID: result.WinningBid.ID,
		OccurredAt:   occurred,
	})
	return result, nil
}
