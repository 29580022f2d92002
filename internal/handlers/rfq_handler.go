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

// RFQHandler handles HTTP requests for the RFQ lifecycle and award.
type RFQHandler struct {
	Service *services.RFQService
	Award   *services.AwardService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewRFQHandler creates a new RFQHandler.
func NewRFQHandler(service *services.RFQService, award *services.AwardService, logger *log.Logger, timeout time.Duration) *RFQHandler {
	return &RFQHandler{
		Service: service,
		Award:   award,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetRFQs handles listing RFQs with optional status filters.
func (h *RFQHandler) GetRFQs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	statuses := r.URL.Query()["status"]

	rfqs, err := h.Service.GetRFQs(ctx, limitStr, offsetStr, statuses)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch rfqs")
		return
	}
	utils.SendJSON(w, h.Logger, rfqs)
}

// CreateRFQ handles RFQ creation.
func (h *RFQHandler) CreateRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var rfqReq models.RFQRequest
	if err := json.NewDecoder(r.Body).Decode(&rfqReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rfq, err := h.Service.CreateRFQ(ctx, rfqReq)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to create rfq")
		return
	}
	utils.SendJSON(w, h.Logger, rfq)
}

// GetBuyerRFQs handles listing the acting buyer's RFQs.
func (h *RFQHandler) GetBuyerRFQs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userID := r.URL.Query().Get("userId")

	rfqs, err := h.Service.GetBuyerRFQs(ctx, userID, limitStr, offsetStr)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch rfqs")
		return
	}
	utils.SendJSON(w, h.Logger, rfqs)
}

// GetRFQ handles fetching one RFQ.
func (h *RFQHandler) GetRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")

	rfq, err := h.Service.GetRFQ(ctx, rfqID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch rfq")
		return
	}
	utils.SendJSON(w, h.Logger, rfq)
}

// PublishRFQ handles moving a draft RFQ to active.
func (h *RFQHandler) PublishRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	userID := r.URL.Query().Get("userId")

	rfq, err := h.Service.PublishRFQ(ctx, rfqID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to publish rfq")
		return
	}
	utils.SendJSON(w, h.Logger, rfq)
}

// CloseRFQ handles closing an active RFQ early.
func (h *RFQHandler) CloseRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	userID := r.URL.Query().Get("userId")

	rfq, err := h.Service.CloseRFQ(ctx, rfqID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to close rfq")
		return
	}
	utils.SendJSON(w, h.Logger, rfq)
}

// CancelRFQ handles cancelling an RFQ.
func (h *RFQHandler) CancelRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	userID := r.URL.Query().Get("userId")

	rfq, err := h.Service.CancelRFQ(ctx, rfqID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to cancel rfq")
		return
	}
	utils.SendJSON(w, h.Logger, rfq)
}

// AwardRFQ handles awarding one bid and rejecting the rest.
func (h *RFQHandler) AwardRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	bidID := r.URL.Query().Get("bidId")
	userID := r.URL.Query().Get("userId")

	result, err := h.Award.AwardBid(ctx, rfqID, bidID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to award rfq")
		return
	}
	utils.SendJSON(w, h.Logger, result)
}

// GetRFQBids handles the buyer's view of an RFQ's bids.
func (h *RFQHandler) GetRFQBids(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	userID := r.URL.Query().Get("userId")

	bids, err := h.Service.GetRFQBids(ctx, rfqID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch bids")
		return
	}
	utils.SendJSON(w, h.Logger, bids)
}

// GetEvaluation handles the ranked evaluation view of an RFQ's bids.
func (h *RFQHandler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rfqID := r.PathValue("rfqId")
	userID := r.URL.Query().Get("userId")

	evaluation, err := h.Service.GetEvaluation(ctx, rfqID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to evaluate bids")
		return
	}
	utils.SendJSON(w, h.Logger, evaluation)
}
