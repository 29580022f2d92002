package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
	"github.com/procurelink/rfq-service/internal/utils"

	"github.com/google/uuid"
)

// Service turns domain events into per-user notification feed entries and
// serves the feed. The engine never waits on it: a failed write is logged and
// dropped, matching the fire-and-forget contract of the event emitter.
type Service struct {
	repo   repository.NotificationRepository
	bids   repository.BidRepository
	logger *log.Logger
	nowFn  func() time.Time
}

// NewService creates a new notification Service.
func NewService(repo repository.NotificationRepository, bids repository.BidRepository, logger *log.Logger) *Service {
	return &Service{
		repo:   repo,
		bids:   bids,
		logger: logger,
		nowFn:  time.Now,
	}
}

// HandleEvent is the emitter subscriber. It fans one domain event out into
// notifications for the users it concerns.
func (s *Service) HandleEvent(event models.Event) {
	ctx := context.Background()

	switch event.Type {
	case models.EventBidSubmitted:
		s.notify(ctx, event.BuyerID, event, "A new bid was submitted on your RFQ")
	case models.EventBidAccepted:
		s.notify(ctx, event.SellerID, event, "Your bid was accepted")
	case models.EventBidRejected:
		bid, err := s.bids.GetBid(ctx, event.BidID)
		if err != nil {
			s.logger.Printf("notification lookup for bid %s failed: %v", event.BidID, err)
			return
		}
		s.notify(ctx, bid.SellerID, event, "Your bid was not successful")
	case models.EventRFQAwarded:
		s.notify(ctx, event.BuyerID, event, "Your RFQ has been awarded")
	case models.EventRFQClosed:
		s.notify(ctx, event.BuyerID, event, "Your RFQ has closed")
		s.notifyOpenBidders(ctx, event, "An RFQ you bid on has closed")
	case models.EventRFQCancelled:
		s.notifyOpenBidders(ctx, event, "An RFQ you bid on was cancelled")
	}
}

func (s *Service) notifyOpenBidders(ctx context.Context, event models.Event, message string) {
	bids, err := s.bids.GetRFQBids(ctx, event.RFQID)
	if err != nil {
		s.logger.Printf("notification lookup for rfq %s failed: %v", event.RFQID, err)
		return
	}
	for _, bid := range bids {
		if bid.Status == models.PendingBid {
			e := event
			e.BidID = bid.ID
			s.notify(ctx, bid.SellerID, e, message)
		}
	}
}

func (s *Service) notify(ctx context.Context, userID string, event models.Event, message string) {
	if userID == "" {
		return
	}
	n := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      event.Type,
		RFQID:     event.RFQID,
		BidID:     event.BidID,
		Message:   fmt.Sprintf("%s (rfq %s)", message, event.RFQID),
		CreatedAt: s.nowFn().UTC(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.logger.Printf("failed to store notification for user %s: %v", userID, err)
	}
}

// GetUserNotifications returns one user's feed, newest first.
func (s *Service) GetUserNotifications(ctx context.Context, userID, limitStr, offsetStr string) ([]models.Notification, error) {
	if userID == "" {
		return nil, models.NewValidation("missing required query parameter: userId")
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidation(err.Error())
	}
	return s.repo.GetUserNotifications(ctx, userID, limit, offset)
}

// MarkRead marks one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	if userID == "" {
		return nil, models.NewValidation("missing required query parameter: userId")
	}
	return s.repo.MarkNotificationRead(ctx, notificationID, userID)
}
