package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/procurelink/rfq-service/internal/models"
)

func seedRFQ(t *testing.T, store *InMemoryStore, id string, status models.RFQStatus) *models.RFQ {
	t.Helper()
	rfq := &models.RFQ{
		ID:          id,
		BuyerID:     "buyer-1",
		Title:       "Ultrabooks for field staff",
		Quantity:    25,
		ClosingDate: time.Date(2025, 11, 22, 9, 0, 0, 0, time.UTC),
		Visibility:  models.PublicRFQ,
		Status:      status,
		CreatedAt:   time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC),
	}
	if err := store.CreateRFQ(context.Background(), rfq); err != nil {
		t.Fatalf("CreateRFQ: %v", err)
	}
	return rfq
}

func seedBid(t *testing.T, store *InMemoryStore, id, rfqID, sellerID string, status models.BidStatus, createdAt time.Time) *models.Bid {
	t.Helper()
	bid := &models.Bid{
		ID:           id,
		RFQID:        rfqID,
		SellerID:     sellerID,
		UnitPrice:    16000,
		TotalAmount:  400000,
		DeliveryTime: "14 days",
		Condition:    models.NewCondition,
		Status:       status,
		CreatedAt:    createdAt,
	}
	if err := store.CreateBid(context.Background(), bid); err != nil {
		t.Fatalf("CreateBid(%s): %v", id, err)
	}
	return bid
}

func TestCreateBidDuplicateGuard(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)

	seedRFQ(t, store, "rfq-1", models.ActiveRFQ)
	seedBid(t, store, "bid-1", "rfq-1", "seller-1", models.PendingBid, base)

	err := store.CreateBid(ctx, &models.Bid{ID: "bid-2", RFQID: "rfq-1", SellerID: "seller-1", Status: models.PendingBid, CreatedAt: base})
	if !models.IsKind(err, models.KindDuplicateBid) {
		t.Fatalf("got %v, want duplicate_bid", err)
	}

	// A withdrawn bid releases the slot.
	if _, err := store.UpdateBidStatus(ctx, "bid-1", models.WithdrawnBid); err != nil {
		t.Fatalf("UpdateBidStatus: %v", err)
	}
	if err := store.CreateBid(ctx, &models.Bid{ID: "bid-3", RFQID: "rfq-1", SellerID: "seller-1", Status: models.PendingBid, CreatedAt: base}); err != nil {
		t.Fatalf("CreateBid after withdrawal: %v", err)
	}
}

func TestGetRFQBidsOrdering(t *testing.T) {
	store := NewInMemoryStore()
	base := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)

	seedRFQ(t, store, "rfq-1", models.ActiveRFQ)
	seedBid(t, store, "bid-c", "rfq-1", "seller-3", models.PendingBid, base.Add(time.Minute))
	seedBid(t, store, "bid-b", "rfq-1", "seller-2", models.PendingBid, base)
	seedBid(t, store, "bid-a", "rfq-1", "seller-1", models.PendingBid, base)

	bids, err := store.GetRFQBids(context.Background(), "rfq-1")
	if err != nil {
		t.Fatalf("GetRFQBids: %v", err)
	}
	want := []string{"bid-a", "bid-b", "bid-c"}
	if len(bids) != len(want) {
		t.Fatalf("got %d bids, want %d", len(bids), len(want))
	}
	for i, id := range want {
		if bids[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, bids[i].ID, id)
		}
	}
}

func TestHasOpenBid(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)

	seedRFQ(t, store, "rfq-1", models.ActiveRFQ)
	seedBid(t, store, "bid-1", "rfq-1", "seller-1", models.WithdrawnBid, base)
	seedBid(t, store, "bid-2", "rfq-1", "seller-2", models.PendingBid, base)

	tests := []struct {
		sellerID string
		want     bool
	}{
		{"seller-1", false},
		{"seller-2", true},
		{"seller-3", false},
	}
	for _, tt := range tests {
		got, err := store.HasOpenBid(ctx, "rfq-1", tt.sellerID)
		if err != nil {
			t.Fatalf("HasOpenBid(%s): %v", tt.sellerID, err)
		}
		if got != tt.want {
			t.Fatalf("HasOpenBid(%s)=%v, want %v", tt.sellerID, got, tt.want)
		}
	}
}

func TestAwardRFQ(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)

	seedRFQ(t, store, "rfq-1", models.ActiveRFQ)
	seedBid(t, store, "bid-w", "rfq-1", "seller-1", models.PendingBid, base)
	seedBid(t, store, "bid-l", "rfq-1", "seller-2", models.PendingBid, base.Add(time.Minute))
	seedBid(t, store, "bid-x", "rfq-1", "seller-3", models.WithdrawnBid, base.Add(2*time.Minute))

	result, err := store.AwardRFQ(ctx, "rfq-1", "bid-w")
	if err != nil {
		t.Fatalf("AwardRFQ: %v", err)
	}
	if result.WinningBid.Status != models.AcceptedBid {
		t.Fatalf("winner status=%s, want accepted", result.WinningBid.Status)
	}
	if len(result.RejectedBids) != 1 || result.RejectedBids[0] != "bid-l" {
		t.Fatalf("rejected=%v, want [bid-l]", result.RejectedBids)
	}
	if result.RFQ.Status != models.AwardedRFQ {
		t.Fatalf("rfq status=%s, want awarded", result.RFQ.Status)
	}

	// A second award finds no pending winner and an already-awarded RFQ.
	if _, err := store.AwardRFQ(ctx, "rfq-1", "bid-w"); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("second award: got %v, want not_found", err)
	}
}

func TestAwardRFQFaultLeavesStateUntouched(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)

	seedRFQ(t, store, "rfq-1", models.ActiveRFQ)
	seedBid(t, store, "bid-w", "rfq-1", "seller-1", models.PendingBid, base)
	seedBid(t, store, "bid-l", "rfq-1", "seller-2", models.PendingBid, base.Add(time.Minute))

	fault := errors.New("storage fault")
	store.FailNextAward(fault)
	if _, err := store.AwardRFQ(ctx, "rfq-1", "bid-w"); !errors.Is(err, fault) {
		t.Fatalf("got %v, want injected fault", err)
	}

	rfq, err := store.GetRFQ(ctx, "rfq-1")
	if err != nil {
		t.Fatalf("GetRFQ: %v", err)
	}
	if rfq.Status != models.ActiveRFQ {
		t.Fatalf("rfq status=%s, want active", rfq.Status)
	}
	for _, bidID := range []string{"bid-w", "bid-l"} {
		bid, err := store.GetBid(ctx, bidID)
		if err != nil {
			t.Fatalf("GetBid: %v", err)
		}
		if bid.Status != models.PendingBid {
			t.Fatalf("bid %s status=%s, want pending", bidID, bid.Status)
		}
	}
}

func TestGetRFQsFilterAndPagination(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	seedRFQ(t, store, "rfq-a", models.ActiveRFQ)
	seedRFQ(t, store, "rfq-b", models.ActiveRFQ)
	seedRFQ(t, store, "rfq-c", models.ClosedRFQ)

	active, err := store.GetRFQs(ctx, 20, 0, []string{"active"})
	if err != nil {
		t.Fatalf("GetRFQs: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active=%d, want 2", len(active))
	}

	page, err := store.GetRFQs(ctx, 1, 1, []string{"active"})
	if err != nil {
		t.Fatalf("GetRFQs: %v", err)
	}
	if len(page) != 1 || page[0].ID != "rfq-b" {
		t.Fatalf("page=%+v, want [rfq-b]", page)
	}

	empty, err := store.GetRFQs(ctx, 20, 10, nil)
	if err != nil {
		t.Fatalf("GetRFQs: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("offset past end returned %d entries", len(empty))
	}
}

func TestPanelMembership(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)

	panel := &models.Panel{ID: "panel-1", BuyerID: "buyer-1", Name: "Preferred laptop vendors", CreatedAt: base}
	if err := store.CreatePanel(ctx, panel); err != nil {
		t.Fatalf("CreatePanel: %v", err)
	}
	member := &models.PanelMember{PanelID: "panel-1", SellerID: "seller-1", Status: models.InvitedMember, CreatedAt: base}
	if err := store.AddMember(ctx, member); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := store.AddMember(ctx, member); !models.IsKind(err, models.KindValidation) {
		t.Fatalf("duplicate member: got %v, want validation", err)
	}

	active, err := store.IsActiveMember(ctx, "panel-1", "seller-1")
	if err != nil {
		t.Fatalf("IsActiveMember: %v", err)
	}
	if active {
		t.Fatal("invited member reported active")
	}

	if _, err := store.UpdateMemberStatus(ctx, "panel-1", "seller-1", models.ActiveMember); err != nil {
		t.Fatalf("UpdateMemberStatus: %v", err)
	}
	active, err = store.IsActiveMember(ctx, "panel-1", "seller-1")
	if err != nil {
		t.Fatalf("IsActiveMember: %v", err)
	}
	if !active {
		t.Fatal("active member reported inactive")
	}
}

func TestNotifications(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"n-1", "n-2"} {
		n := &models.Notification{
			ID:        id,
			UserID:    "user-1",
			Type:      models.EventBidSubmitted,
			RFQID:     "rfq-1",
			Message:   "A new bid was submitted on your RFQ",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	feed, err := store.GetUserNotifications(ctx, "user-1", 20, 0)
	if err != nil {
		t.Fatalf("GetUserNotifications: %v", err)
	}
	if len(feed) != 2 || feed[0].ID != "n-2" {
		t.Fatalf("feed=%+v, want newest first", feed)
	}

	if _, err := store.MarkNotificationRead(ctx, "n-1", "user-2"); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("foreign mark read: got %v, want not_found", err)
	}
	marked, err := store.MarkNotificationRead(ctx, "n-1", "user-1")
	if err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	if !marked.Read {
		t.Fatal("notification not marked read")
	}
}
