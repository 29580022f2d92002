package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/procurelink/rfq-service/internal/events"
	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/repository"
)

// testEnv wires every service against one InMemoryStore with a controllable
// clock and an event recorder.
type testEnv struct {
	store  *repository.InMemoryStore
	rfqs   *RFQService
	bids   *BidService
	awards *AwardService
	panels *PanelService

	mu       sync.Mutex
	now      time.Time
	captured []models.Event
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store: repository.NewInMemoryStore(),
		now:   time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC),
	}

	emitter := events.NewEmitter()
	emitter.Subscribe(func(e models.Event) {
		env.mu.Lock()
		env.captured = append(env.captured, e)
		env.mu.Unlock()
	})

	locks := NewRFQLocks()
	visibility := NewVisibilityResolver(env.store)
	env.rfqs = NewRFQService(env.store, env.store, env.store, locks, emitter)
	env.bids = NewBidService(env.store, env.store, visibility, locks, emitter)
	env.awards = NewAwardService(env.store, env.store, locks, emitter)
	env.panels = NewPanelService(env.store)

	env.rfqs.nowFn = env.clock
	env.bids.nowFn = env.clock
	env.awards.nowFn = env.clock
	env.panels.nowFn = env.clock
	return env
}

func (env *testEnv) clock() time.Time {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.now
}

func (env *testEnv) advance(d time.Duration) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.now = env.now.Add(d)
}

// takeEvents drains the recorded events so a test can assert on exactly the
// events one operation produced.
func (env *testEnv) takeEvents() []models.Event {
	env.mu.Lock()
	defer env.mu.Unlock()
	taken := env.captured
	env.captured = nil
	return taken
}

func (env *testEnv) rfqRequest(buyerID string) models.RFQRequest {
	return models.RFQRequest{
		BuyerID:     buyerID,
		Title:       "Ultrabooks for field staff",
		Quantity:    25,
		ClosingDate: env.clock().Add(48 * time.Hour),
		Visibility:  models.PublicRFQ,
	}
}

func (env *testEnv) createRFQ(t *testing.T, req models.RFQRequest) *models.RFQ {
	t.Helper()
	rfq, err := env.rfqs.CreateRFQ(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateRFQ: %v", err)
	}
	return rfq
}

func (env *testEnv) submitBid(t *testing.T, req models.BidRequest) *models.Bid {
	t.Helper()
	if req.DeliveryTime == "" {
		req.DeliveryTime = "14 days"
	}
	if req.Condition == "" {
		req.Condition = models.NewCondition
	}
	bid, err := env.bids.SubmitBid(context.Background(), req)
	if err != nil {
		t.Fatalf("SubmitBid(%s/%s): %v", req.RFQID, req.SellerID, err)
	}
	return bid
}
