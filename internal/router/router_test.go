package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/procurelink/rfq-service/internal/events"
	"github.com/procurelink/rfq-service/internal/handlers"
	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/notifications"
	"github.com/procurelink/rfq-service/internal/repository"
	"github.com/procurelink/rfq-service/internal/services"
)

func newTestRouter() http.Handler {
	store := repository.NewInMemoryStore()
	logger := log.New(io.Discard, "", 0)

	emitter := events.NewEmitter()
	notificationService := notifications.NewService(store, store, logger)
	emitter.Subscribe(notificationService.HandleEvent)

	locks := services.NewRFQLocks()
	visibility := services.NewVisibilityResolver(store)
	rfqService := services.NewRFQService(store, store, store, locks, emitter)
	bidService := services.NewBidService(store, store, visibility, locks, emitter)
	awardService := services.NewAwardService(store, store, locks, emitter)
	panelService := services.NewPanelService(store)

	timeout := 5 * time.Second
	return InitRoutes(
		handlers.NewRFQHandler(rfqService, awardService, logger, timeout),
		handlers.NewBidHandler(bidService, logger, timeout),
		handlers.NewPanelHandler(panelService, logger, timeout),
		handlers.NewNotificationHandler(notificationService, logger, timeout),
	)
}

func doJSON(t *testing.T, mux http.Handler, method, target string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return rec
}

func TestPingRoute(t *testing.T) {
	mux := newTestRouter()
	rec := doJSON(t, mux, http.MethodGet, "/api/ping", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
}

func TestRFQBiddingFlow(t *testing.T) {
	mux := newTestRouter()

	rfqReq := models.RFQRequest{
		BuyerID:          "buyer-1",
		Title:            "Ultrabooks for field staff",
		Quantity:         25,
		ClosingDate:      time.Now().Add(48 * time.Hour),
		Visibility:       models.PublicRFQ,
		SMMEPreference:   true,
		SMMEBonusPercent: 10,
	}
	var rfq models.RFQ
	if rec := doJSON(t, mux, http.MethodPost, "/api/rfqs/new", rfqReq, &rfq); rec.Code != http.StatusOK {
		t.Fatalf("create rfq: status=%d body=%s", rec.Code, rec.Body)
	}
	if rfq.Status != models.ActiveRFQ {
		t.Fatalf("rfq status=%s, want active", rfq.Status)
	}

	var winner, loser models.Bid
	winnerReq := models.BidRequest{RFQID: rfq.ID, SellerID: "seller-x", UnitPrice: 16000, DeliveryTime: "14 days", Condition: models.NewCondition, SellerIsSMME: true}
	if rec := doJSON(t, mux, http.MethodPost, "/api/bids/new", winnerReq, &winner); rec.Code != http.StatusOK {
		t.Fatalf("submit winner: status=%d body=%s", rec.Code, rec.Body)
	}
	loserReq := models.BidRequest{RFQID: rfq.ID, SellerID: "seller-y", UnitPrice: 15500, DeliveryTime: "10 days", Condition: models.NewCondition}
	if rec := doJSON(t, mux, http.MethodPost, "/api/bids/new", loserReq, &loser); rec.Code != http.StatusOK {
		t.Fatalf("submit loser: status=%d body=%s", rec.Code, rec.Body)
	}

	// Duplicate submission maps to 409.
	if rec := doJSON(t, mux, http.MethodPost, "/api/bids/new", winnerReq, nil); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate bid: status=%d, want 409", rec.Code)
	}

	// Evaluation is owner only.
	if rec := doJSON(t, mux, http.MethodGet, "/api/rfqs/"+rfq.ID+"/evaluation?userId=buyer-2", nil, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign evaluation: status=%d, want 403", rec.Code)
	}
	var evaluation []models.EvaluationResult
	if rec := doJSON(t, mux, http.MethodGet, "/api/rfqs/"+rfq.ID+"/evaluation?userId=buyer-1", nil, &evaluation); rec.Code != http.StatusOK {
		t.Fatalf("evaluation: status=%d body=%s", rec.Code, rec.Body)
	}
	if len(evaluation) != 2 || evaluation[0].BidID != winner.ID {
		t.Fatalf("evaluation=%+v, want the smme bid ranked first", evaluation)
	}

	var award models.AwardResult
	awardURL := "/api/rfqs/" + rfq.ID + "/award?bidId=" + winner.ID + "&userId=buyer-1"
	if rec := doJSON(t, mux, http.MethodPut, awardURL, nil, &award); rec.Code != http.StatusOK {
		t.Fatalf("award: status=%d body=%s", rec.Code, rec.Body)
	}
	if award.WinningBid.Status != models.AcceptedBid || award.RFQ.Status != models.AwardedRFQ {
		t.Fatalf("award=%+v", award)
	}

	// Bidding against the awarded RFQ maps to 409.
	lateReq := models.BidRequest{RFQID: rfq.ID, SellerID: "seller-z", UnitPrice: 15000, DeliveryTime: "7 days", Condition: models.NewCondition}
	if rec := doJSON(t, mux, http.MethodPost, "/api/bids/new", lateReq, nil); rec.Code != http.StatusConflict {
		t.Fatalf("late bid: status=%d, want 409", rec.Code)
	}

	// The award produced feed entries for both sellers.
	var winnerFeed []models.Notification
	if rec := doJSON(t, mux, http.MethodGet, "/api/notifications?userId=seller-x", nil, &winnerFeed); rec.Code != http.StatusOK {
		t.Fatalf("winner feed: status=%d", rec.Code)
	}
	if len(winnerFeed) == 0 {
		t.Fatal("winner feed is empty")
	}
	var loserFeed []models.Notification
	if rec := doJSON(t, mux, http.MethodGet, "/api/notifications?userId=seller-y", nil, &loserFeed); rec.Code != http.StatusOK {
		t.Fatalf("loser feed: status=%d", rec.Code)
	}
	if len(loserFeed) == 0 {
		t.Fatal("loser feed is empty")
	}
}

func TestRouteErrorMapping(t *testing.T) {
	mux := newTestRouter()

	tests := []struct {
		name     string
		method   string
		target   string
		body     interface{}
		wantCode int
	}{
		{
			name:     "unknown rfq",
			method:   http.MethodGet,
			target:   "/api/rfqs/no-such-rfq",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "malformed create body",
			method:   http.MethodPost,
			target:   "/api/rfqs/new",
			body:     "not-an-object",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing userId on my rfqs",
			method:   http.MethodGet,
			target:   "/api/rfqs/my",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "withdraw unknown bid",
			method:   http.MethodPut,
			target:   "/api/bids/no-such-bid/withdraw?userId=seller-1",
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, mux, tt.method, tt.target, tt.body, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestPanelRoutes(t *testing.T) {
	mux := newTestRouter()

	var panel models.Panel
	if rec := doJSON(t, mux, http.MethodPost, "/api/panels/new", models.PanelRequest{BuyerID: "buyer-1", Name: "Preferred laptop vendors"}, &panel); rec.Code != http.StatusOK {
		t.Fatalf("create panel: status=%d body=%s", rec.Code, rec.Body)
	}

	var member models.PanelMember
	inviteURL := "/api/panels/" + panel.ID + "/members?userId=buyer-1"
	if rec := doJSON(t, mux, http.MethodPost, inviteURL, map[string]string{"sellerId": "seller-1"}, &member); rec.Code != http.StatusOK {
		t.Fatalf("invite: status=%d body=%s", rec.Code, rec.Body)
	}
	if member.Status != models.InvitedMember {
		t.Fatalf("member status=%s, want invited", member.Status)
	}

	statusURL := "/api/panels/" + panel.ID + "/members/seller-1/status?userId=buyer-1&status=active"
	if rec := doJSON(t, mux, http.MethodPut, statusURL, nil, &member); rec.Code != http.StatusOK {
		t.Fatalf("activate: status=%d body=%s", rec.Code, rec.Body)
	}
	if member.Status != models.ActiveMember {
		t.Fatalf("member status=%s, want active", member.Status)
	}

	var members []models.PanelMember
	if rec := doJSON(t, mux, http.MethodGet, "/api/panels/"+panel.ID+"/members?userId=buyer-1", nil, &members); rec.Code != http.StatusOK {
		t.Fatalf("members: status=%d body=%s", rec.Code, rec.Body)
	}
	if len(members) != 1 || members[0].SellerID != "seller-1" {
		t.Fatalf("members=%+v, want seller-1", members)
	}
}
