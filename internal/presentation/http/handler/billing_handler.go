package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/application/service"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
)

// BillingHandler handles the paid plan checkout
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// CreateCheckout starts a checkout session
// @Summary Start checkout
// @Tags billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CheckoutRequest false "Return URL"
// @Success 201 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /billing/checkout [post]
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	cs, err := h.billing.StartCheckout(c.Request.Context(), session, req.ReturnURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Checkout session created", gin.H{
		"session_id": cs.ID,
		"url":        cs.URL,
	})
}

// CompleteCheckout confirms a finished checkout
// @Summary Complete checkout
// @Tags billing
// @Security BearerAuth
// @Produce json
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} response.APIResponse
// @Router /billing/checkout/complete [get]
func (h *BillingHandler) CompleteCheckout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	sub, err := h.billing.CompleteCheckout(c.Request.Context(), session.Identity(), c.Query("session_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Subscription activated", gin.H{
		"status":             sub.Status,
		"is_active":          sub.Status.IsActive(),
		"current_period_end": sub.CurrentPeriodEnd,
	})
}

// GetSubscription reports whether the caller holds the paid plan
// @Summary Subscription status
// @Tags billing
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /billing/subscription [get]
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	response.OK(c, "Subscription retrieved successfully", gin.H{
		"is_active": h.billing.IsSubscribed(c.Request.Context(), session.Identity()),
	})
}
