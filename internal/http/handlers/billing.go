package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/billing"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

type BillingHandler struct {
	log     *logger.Logger
	loc     *Localizer
	billing services.BillingService
}

func NewBillingHandler(log *logger.Logger, loc *Localizer, svc services.BillingService) *BillingHandler {
	return &BillingHandler{log: log.With("handler", "BillingHandler"), loc: loc, billing: svc}
}

// POST /api/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	var in services.CheckoutInput
	if err := optionalBody(c, &in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	res, err := h.billing.Checkout(dbcOf(c), userID(c), in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/billing/notifications
//
// Called by the payment gateway; authenticated by the notification signature.
func (h *BillingHandler) Notification(c *gin.Context) {
	var n billing.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	if err := h.billing.HandleNotification(dbcOf(c), n); err != nil {
		h.log.Warn("billing notification rejected", "order_id", n.OrderID, "status", n.TransactionStatus, "error", err)
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ok"})
}
