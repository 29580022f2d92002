package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/procurelink/rfq-service/internal/notifications"
	"github.com/procurelink/rfq-service/internal/utils"
)

// NotificationHandler handles HTTP requests for the notification feed.
type NotificationHandler struct {
	Service *notifications.Service
	Logger  *log.Logger
	Timeout time.Duration
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *notifications.Service, logger *log.Logger, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetNotifications handles fetching the acting user's feed.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	userID := r.URL.Query().Get("userId")

	feed, err := h.Service.GetUserNotifications(ctx, userID, limitStr, offsetStr)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to fetch notifications")
		return
	}
	utils.SendJSON(w, h.Logger, feed)
}

// MarkRead handles marking one notification as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	notificationID := r.PathValue("notificationId")
	userID := r.URL.Query().Get("userId")

	n, err := h.Service.MarkRead(ctx, notificationID, userID)
	if err != nil {
		utils.SendDomainError(w, h.Logger, err, "failed to update notification")
		return
	}
	utils.SendJSON(w, h.Logger, n)
}
