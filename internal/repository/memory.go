package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/procurelink/rfq-service/internal/models"
)

// InMemoryStore implements every repository interface with plain maps. It is
// the store the tests run against; it enforces the same invariants as the
// Postgres implementations and applies the award as a staged commit so a fault
// mid-transaction leaves the aggregate untouched.
type InMemoryStore struct {
	mu            sync.RWMutex
	rfqs          map[string]models.RFQ
	bids          map[string]models.Bid
	panels        map[string]models.Panel
	members       map[string]map[string]models.PanelMember
	notifications map[string]models.Notification
	awardFault    error
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rfqs:          make(map[string]models.RFQ),
		bids:          make(map[string]models.Bid),
		panels:        make(map[string]models.Panel),
		members:       make(map[string]map[string]models.PanelMember),
		notifications: make(map[string]models.Notification),
	}
}

// FailNextAward makes the next AwardRFQ call fail after staging its changes.
// Fault-injection hook for rollback tests.
func (s *InMemoryStore) FailNextAward(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awardFault = err
}

func (s *InMemoryStore) CreateRFQ(_ context.Context, rfq *models.RFQ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rfqs[rfq.ID] = *rfq
	return nil
}

func (s *InMemoryStore) GetRFQ(_ context.Context, rfqID string) (*models.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rfq, ok := s.rfqs[rfqID]
	if !ok {
		return nil, models.NewNotFound("rfq not found")
	}
	return &rfq, nil
}

func (s *InMemoryStore) GetRFQs(_ context.Context, limit, offset int, statuses []string) ([]models.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	var rfqs []models.RFQ
	for _, rfq := range s.rfqs {
		if len(wanted) > 0 && !wanted[string(rfq.Status)] {
			continue
		}
		rfqs = append(rfqs, rfq)
	}
	sort.Slice(rfqs, func(i, j int) bool {
		if !rfqs[i].CreatedAt.Equal(rfqs[j].CreatedAt) {
			return rfqs[i].CreatedAt.After(rfqs[j].CreatedAt)
		}
		return rfqs[i].ID < rfqs[j].ID
	})
	return paginateRFQs(rfqs, limit, offset), nil
}

func (s *InMemoryStore) GetBuyerRFQs(_ context.Context, buyerID string, limit, offset int) ([]models.RFQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rfqs []models.RFQ
	for _, rfq := range s.rfqs {
		if rfq.BuyerID == buyerID {
			rfqs = append(rfqs, rfq)
		}
	}
	sort.Slice(rfqs, func(i, j int) bool {
		if !rfqs[i].CreatedAt.Equal(rfqs[j].CreatedAt) {
			return rfqs[i].CreatedAt.After(rfqs[j].CreatedAt)
		}
		return rfqs[i].ID < rfqs[j].ID
	})
	return paginateRFQs(rfqs, limit, offset), nil
}

func (s *InMemoryStore) UpdateRFQStatus(_ context.Context, rfqID string, status models.RFQStatus) (*models.RFQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rfq, ok := s.rfqs[rfqID]
	if !ok {
		return nil, models.NewNotFound("rfq not found")
	}
	rfq.Status = status
	s.rfqs[rfqID] = rfq
	return &rfq, nil
}

func (s *InMemoryStore) CreateBid(_ context.Context, bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bids {
		if existing.RFQID == bid.RFQID && existing.SellerID == bid.SellerID && existing.Status != models.WithdrawnBid {
			return models.NewDuplicateBid("seller already has an open bid on this rfq")
		}
	}
	s.bids[bid.ID] = *bid
	return nil
}

func (s *InMemoryStore) GetBid(_ context.Context, bidID string) (*models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bid, ok := s.bids[bidID]
	if !ok {
		return nil, models.NewNotFound("bid not found")
	}
	return &bid, nil
}

func (s *InMemoryStore) GetRFQBids(_ context.Context, rfqID string) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rfqBidsLocked(rfqID), nil
}

func (s *InMemoryStore) rfqBidsLocked(rfqID string) []models.Bid {
	var bids []models.Bid
	for _, bid := range s.bids {
		if bid.RFQID == rfqID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.Before(bids[j].CreatedAt)
		}
		return bids[i].ID < bids[j].ID
	})
	return bids
}

func (s *InMemoryStore) GetSellerBids(_ context.Context, sellerID string, limit, offset int) ([]models.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var bids []models.Bid
	for _, bid := range s.bids {
		if bid.SellerID == sellerID {
			bids = append(bids, bid)
		}
	}
	sort.Slice(bids, func(i, j int) bool {
		if !bids[i].CreatedAt.Equal(bids[j].CreatedAt) {
			return bids[i].CreatedAt.After(bids[j].CreatedAt)
		}
		return bids[i].ID < bids[j].ID
	})
	if offset >= len(bids) {
		return nil, nil
	}
	bids = bids[offset:]
	if limit > 0 && limit < len(bids) {
		bids = bids[:limit]
	}
	return bids, nil
}

func (s *InMemoryStore) HasOpenBid(_ context.Context, rfqID, sellerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, bid := range s.bids {
		if bid.RFQID == rfqID && bid.SellerID == sellerID && bid.Status != models.WithdrawnBid {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) UpdateBidStatus(_ context.Context, bidID string, status models.BidStatus) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid, ok := s.bids[bidID]
	if !ok {
		return nil, models.NewNotFound("bid not found")
	}
	bid.Status = status
	s.bids[bidID] = bid
	return &bid, nil
}

func (s *InMemoryStore) AwardRFQ(_ context.Context, rfqID, winningBidID string) (*models.AwardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	winner, ok := s.bids[winningBidID]
	if !ok || winner.RFQID != rfqID || winner.Status != models.PendingBid {
		return nil, models.NewNotFound("pending bid not found for this rfq")
	}
	rfq, ok := s.rfqs[rfqID]
	if !ok {
		return nil, models.NewNotFound("rfq not found")
	}
	if rfq.Status != models.ActiveRFQ {
		return nil, models.NewInvalidTransition("rfq", string(rfq.Status), string(models.AwardedRFQ))
	}

	// Stage every mutation, commit only once all of them succeeded.
	staged := make(map[string]models.Bid)
	winner.Status = models.AcceptedBid
	staged[winner.ID] = winner

	var rejected []string
	for _, bid := range s.rfqBidsLocked(rfqID) {
		if bid.ID != winningBidID && bid.Status == models.PendingBid {
			bid.Status = models.RejectedBid
			staged[bid.ID] = bid
			rejected = append(rejected, bid.ID)
		}
	}
	rfq.Status = models.AwardedRFQ

	if s.awardFault != nil {
		err := s.awardFault
		s.awardFault = nil
		return nil, err
	}

	for id, bid := range staged {
		s.bids[id] = bid
	}
	s.rfqs[rfqID] = rfq
	return &models.AwardResult{RFQ: &rfq, WinningBid: &winner, RejectedBids: rejected}, nil
}

func (s *InMemoryStore) CreatePanel(_ context.Context, panel *models.Panel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[panel.ID] = *panel
	return nil
}

func (s *InMemoryStore) GetPanel(_ context.Context, panelID string) (*models.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	panel, ok := s.panels[panelID]
	if !ok {
		return nil, models.NewNotFound("panel not found")
	}
	return &panel, nil
}

func (s *InMemoryStore) GetBuyerPanels(_ context.Context, buyerID string, limit, offset int) ([]models.Panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var panels []models.Panel
	for _, panel := range s.panels {
		if panel.BuyerID == buyerID {
			panels = append(panels, panel)
		}
	}
	sort.Slice(panels, func(i, j int) bool { return panels[i].Name < panels[j].Name })
	if offset >= len(panels) {
		return nil, nil
	}
	panels = panels[offset:]
	if limit > 0 && limit < len(panels) {
		panels = panels[:limit]
	}
	return panels, nil
}

func (s *InMemoryStore) AddMember(_ context.Context, member *models.PanelMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[member.PanelID][member.SellerID]; ok {
		return models.NewValidation("seller is already on this panel")
	}
	if s.members[member.PanelID] == nil {
		s.members[member.PanelID] = make(map[string]models.PanelMember)
	}
	s.members[member.PanelID][member.SellerID] = *member
	return nil
}

func (s *InMemoryStore) GetMember(_ context.Context, panelID, sellerID string) (*models.PanelMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[panelID][sellerID]
	if !ok {
		return nil, models.NewNotFound("panel member not found")
	}
	return &member, nil
}

func (s *InMemoryStore) GetMembers(_ context.Context, panelID string) ([]models.PanelMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var members []models.PanelMember
	for _, member := range s.members[panelID] {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		if !members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		}
		return members[i].SellerID < members[j].SellerID
	})
	return members, nil
}

func (s *InMemoryStore) UpdateMemberStatus(_ context.Context, panelID, sellerID string, status models.PanelMemberStatus) (*models.PanelMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	member, ok := s.members[panelID][sellerID]
	if !ok {
		return nil, models.NewNotFound("panel member not found")
	}
	member.Status = status
	s.members[panelID][sellerID] = member
	return &member, nil
}

func (s *InMemoryStore) IsActiveMember(_ context.Context, panelID, sellerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.members[panelID][sellerID]
	return ok && member.Status == models.ActiveMember, nil
}

func (s *InMemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (s *InMemoryStore) GetUserNotifications(_ context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var notifications []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		}
		return notifications[i].ID < notifications[j].ID
	})
	if offset >= len(notifications) {
		return nil, nil
	}
	notifications = notifications[offset:]
	if limit > 0 && limit < len(notifications) {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *InMemoryStore) MarkNotificationRead(_ context.Context, notificationID, userID string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok || n.UserID != userID {
		return nil, models.NewNotFound("notification not found")
	}
	n.Read = true
	s.notifications[notificationID] = n
	return &n, nil
}

func paginateRFQs(rfqs []models.RFQ, limit, offset int) []models.RFQ {
	if offset >= len(rfqs) {
		return nil
	}
	rfqs = rfqs[offset:]
	if limit > 0 && limit < len(rfqs) {
		rfqs = rfqs[:limit]
	}
	return rfqs
}
