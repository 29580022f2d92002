package router

import (
	"net/http"

	"github.com/procurelink/rfq-service/internal/handlers"
)

func InitRoutes(rfqHandler *handlers.RFQHandler, bidHandler *handlers.BidHandler, panelHandler *handlers.PanelHandler, notificationHandler *handlers.NotificationHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("GET /api/rfqs", rfqHandler.GetRFQs)
	mux.HandleFunc("POST /api/rfqs/new", rfqHandler.CreateRFQ)
	mux.HandleFunc("GET /api/rfqs/my", rfqHandler.GetBuyerRFQs)
	mux.HandleFunc("GET /api/rfqs/{rfqId}", rfqHandler.GetRFQ)
	mux.HandleFunc("PUT /api/rfqs/{rfqId}/publish", rfqHandler.PublishRFQ)
	mux.HandleFunc("PUT /api/rfqs/{rfqId}/close", rfqHandler.CloseRFQ)
	mux.HandleFunc("PUT /api/rfqs/{rfqId}/cancel", rfqHandler.CancelRFQ)
	mux.HandleFunc("PUT /api/rfqs/{rfqId}/award", rfqHandler.AwardRFQ)
	mux.HandleFunc("GET /api/rfqs/{rfqId}/bids", rfqHandler.GetRFQBids)
	mux.HandleFunc("GET /api/rfqs/{rfqId}/evaluation", rfqHandler.GetEvaluation)
	mux.HandleFunc("GET /api/rfqs/{rfqId}/can-bid", bidHandler.CanBid)

	mux.HandleFunc("POST /api/bids/new", bidHandler.CreateBid)
	mux.HandleFunc("GET /api/bids/my", bidHandler.GetSellerBids)
	mux.HandleFunc("PUT /api/bids/{bidId}/withdraw", bidHandler.WithdrawBid)

	mux.HandleFunc("POST /api/panels/new", panelHandler.CreatePanel)
	mux.HandleFunc("GET /api/panels/my", panelHandler.GetBuyerPanels)
	mux.HandleFunc("GET /api/panels/{panelId}/members", panelHandler.GetMembers)
	mux.HandleFunc("POST /api/panels/{panelId}/members", panelHandler.InviteMember)
	mux.HandleFunc("PUT /api/panels/{panelId}/members/{sellerId}/status", panelHandler.UpdateMemberStatus)

	mux.HandleFunc("GET /api/notifications", notificationHandler.GetNotifications)
	mux.HandleFunc("PUT /api/notifications/{notificationId}/read", notificationHandler.MarkRead)

	return mux
}
