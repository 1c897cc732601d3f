package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/application/service"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/quickbill-api/pkg/logger"
	"github.com/sangkips/quickbill-api/pkg/oauth"
	"github.com/sangkips/quickbill-api/pkg/utils"
	"go.uber.org/zap"
)

const (
	oauthStateCookie = "qb_oauth_state"
	oauthStateMaxAge = 600
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService  *service.AuthService
	google       *oauth.GoogleProvider
	secureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, google *oauth.GoogleProvider, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, google: google, secureCookie: secureCookie}
}

func userResponse(u *entity.User) gin.H {
	return gin.H{
		"id":                   u.ID,
		"first_name":           u.FirstName,
		"last_name":            u.LastName,
		"email":                u.Email,
		"provider":             u.Provider,
		"photo":                u.Photo,
		"business_name":        u.BusinessName,
		"business_tax_id":      u.BusinessTaxID,
		"business_address":     u.BusinessAddress,
		"business_city":        u.BusinessCity,
		"business_postal_code": u.BusinessPostalCode,
		"business_country":     u.BusinessCountry,
		"business_phone":       u.BusinessPhone,
		"invoices_created":     u.InvoicesCreated,
		"created_at":           u.CreatedAt,
	}
}

func tokenResponse(output *service.LoginOutput) gin.H {
	return gin.H{
		"user":          userResponse(output.User),
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
		"token_type":    "Bearer",
	}
}

// Login handles user login
// @Summary Login
// @Description Authenticate user and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenResponse(output))
}

// Register handles user registration
// @Summary Register
// @Description Create a new user account and sign it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RegisterRequest true "Registration data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Register(c.Request.Context(), &service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful", tokenResponse(output))
}

// RefreshToken handles token refresh
// @Summary Refresh Token
// @Description Refresh access token using refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", gin.H{
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
		"token_type":    "Bearer",
	})
}

// Logout handles user logout
// @Summary Logout
// @Description Logout user (client should discard tokens)
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// JWT is stateless, the client discards the tokens
	response.OK(c, "Logged out successfully", nil)
}

// GoogleAuth redirects to the Google consent page
// @Summary Google sign-in
// @Tags auth
// @Success 307
// @Router /auth/google [get]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	if !h.google.IsConfigured() {
		response.ErrorWithCode(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state, err := utils.RandomState()
	if err != nil {
		response.Error(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthURL(state))
}

// GoogleCallback finishes the Google sign-in and hands the tokens to the
// frontend
// @Summary Google sign-in callback
// @Tags auth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 307
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	log := logger.FromContext(c.Request.Context())

	expected, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)
	if err != nil || expected == "" || c.Query("state") != expected {
		log.Warn("google callback with invalid state")
		c.Redirect(http.StatusTemporaryRedirect, h.google.ErrorRedirect("invalid_state"))
		return
	}

	if reason := c.Query("error"); reason != "" {
		c.Redirect(http.StatusTemporaryRedirect, h.google.ErrorRedirect(reason))
		return
	}

	output, err := h.authService.LoginWithProvider(c.Request.Context(), c.Query("code"))
	if err != nil {
		log.Warn("google sign-in failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.google.ErrorRedirect("authentication_failed"))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.google.SuccessRedirect(output.AccessToken, output.RefreshToken))
}

// ChangePassword handles password change
// @Summary Change Password
// @Description Change current user's password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ChangePasswordRequest true "Password change data"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /account/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), &service.ChangePasswordInput{
		UserID:          *userID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password changed successfully", nil)
}
