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

// PanelHandler handles HTTP requests for panel management.
type PanelHandler struct {
	Service *services.PanelService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewPanelHandler creates a new PanelHandler.
func NewPanelHandler(service *services.PanelService, logger *log.Logger, timeout time.Duration) *PanelHandler {
	return &PanelHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreatePanel handles panel creation.
func (h *PanelHandler) CreatePanel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var panelReq models.PanelRequest
	if err := json.NewDecoder(r.Body).Decode(&panelReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	panel, err := h.Service.CreatePanel(ctx, panelReq)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to create panel")
		return
	}
	utils.SendJSON(w, h.Logger, panel)
}

// GetBuyerPanels handles listing the acting buyer's panels.
func (h *PanelHandler) GetBuyerPanels(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userID := r.URL.Query().Get("userId")

	panels, err := h.Service.GetBuyerPanels(ctx, userID, limitStr, offsetStr)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch panels")
		return
	}
	utils.SendJSON(w, h.Logger, panels)
}

// InviteMember handles inviting a seller onto a panel.
func (h *PanelHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	panelID := r.PathValue("panelId")
	userID := r.URL.Query().Get("userId")

	var body struct {
		SellerID string `json:"sellerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.Service.InviteMember(ctx, panelID, userID, body.SellerID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to invite panel member")
		return
	}
	utils.SendJSON(w, h.Logger, member)
}

// UpdateMemberStatus handles activating or removing a panel member.
func (h *PanelHandler) UpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	panelID := r.PathValue("panelId")
	sellerID := r.PathValue("sellerId")
	status := r.URL.Query().Get("status")
	userID := r.URL.Query().Get("userId")

	member, err := h.Service.UpdateMemberStatus(ctx, panelID, userID, sellerID, status)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to update panel member")
		return
	}
	utils.SendJSON(w, h.Logger, member)
}

// GetMembers handles listing a panel's members.
func (h *PanelHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	panelID := r.PathValue("panelId")
	userID := r.URL.Query().Get("userId")

	members, err := h.Service.GetMembers(ctx, panelID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch panel members")
		return
	}
	utils.SendJSON(w, h.Logger, members)
}
