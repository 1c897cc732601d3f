package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/application/service"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/quickbill-api/pkg/logger"
	"go.uber.org/zap"
)

// AccountHandler exposes the session facts and the business profile
type AccountHandler struct {
	authService *service.AuthService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *service.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// Session returns who the caller is and what they may still do
// @Summary Session facts
// @Description Identity and entitlement of the current session
// @Tags account
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /account/session [get]
func (h *AccountHandler) Session(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id := session.Identity()

	data := gin.H{
		"is_authenticated": !id.IsAnonymous(),
		"user_id":          id.UserID,
		"email":            id.Email,
		"anonymous_id":     id.AnonymousID,
	}

	ent, err := session.Entitlement(c.Request.Context())
	if err != nil {
		// Editing keeps working without entitlement facts
		logger.FromContext(c.Request.Context()).Warn("entitlement unavailable", zap.Error(err))
	} else {
		data["entitlement"] = ent
		data["is_subscribed"] = ent.IsSubscribed
		data["invoices_created"] = ent.InvoicesCreated
		data["has_reached_limit"] = ent.HasReachedLimit
	}

	response.OK(c, "Session retrieved successfully", data)
}

// GetProfile handles fetching current user profile
// @Summary Get Profile
// @Description Get current user's profile
// @Tags account
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /account/profile [get]
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", gin.H{"user": userResponse(user)})
}

// UpdateProfile handles updating the business profile
// @Summary Update Profile
// @Description Update the business details used to prefill new invoices
// @Tags account
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateProfileRequest true "Profile data"
// @Success 200 {object} response.APIResponse
// @Router /account/profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), &service.UpdateProfileInput{
		UserID:             *userID,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		BusinessName:       req.BusinessName,
		BusinessTaxID:      req.BusinessTaxID,
		BusinessAddress:    req.BusinessAddress,
		BusinessCity:       req.BusinessCity,
		BusinessPostalCode: req.BusinessPostalCode,
		BusinessCountry:    req.BusinessCountry,
		BusinessPhone:      req.BusinessPhone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile updated successfully", gin.H{"user": userResponse(user)})
}
