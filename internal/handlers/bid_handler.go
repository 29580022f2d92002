package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/procurelink/rfq-service/internal/models"
	"github.com/procurelink/rfq-service/internal/services"
	"github.com/procurelink/rfq-service/internal/utils"
)

// BidHandler handles HTTP requests for bid submission and withdrawal.
type BidHandler struct {
	Service *services.BidService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewBidHandler creates a new BidHandler.
func NewBidHandler(service *services.BidService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateBid handles bid submission.
func (h *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var bidReq models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&bidReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.Service.SubmitBid(ctx, bidReq)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to submit bid")
		return
	}
	utils.SendJSON(w, h.Logger, bid)
}

// GetSellerBids handles listing the acting seller's bids.
func (h *BidHandler) GetSellerBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userID := r.URL.Query().Get("userId")

	bids, err := h.Service.GetSellerBids(ctx, userID, limitStr, offsetStr)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch bids")
		return
	}
	utils.SendJSON(w, h.Logger, bids)
}

// WithdrawBid handles withdrawing a pending bid.
func (h *BidHandler) WithdrawBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	bidID := r.PathValue("bidId")
	userID := r.URL.Query().Get("userId")

	bid, err := h.Service.WithdrawBid(ctx, bidID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to withdraw bid")
		return
	}
	utils.SendJSON(w, h.Logger, bid)
}

// CanBid handles the visibility check for one seller against one RFQ.
func (h *BidHandler) CanBid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	sellerID := r.URL.Query().Get("sellerId")

	allowed, err := h.Service.CanBid(ctx, rfqID, sellerID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to resolve visibility")
		return
	}
	utils.SendJSON(w, h.Logger, map[string]bool{"canBid": allowed})
}
