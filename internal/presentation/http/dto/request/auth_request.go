package request

import "github.com/sangkips/quickbill-api/internal/domain/enum"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	FirstName       string `json:"first_name" binding:"max=255"`
	LastName        string `json:"last_name" binding:"max=255"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword"`
}

// UpdateProfileRequest represents the business profile used to prefill the
// issuer of new invoices. Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName          string        `json:"first_name" binding:"max=255"`
	LastName           string        `json:"last_name" binding:"max=255"`
	BusinessName       *string       `json:"business_name" binding:"omitempty,max=255"`
	BusinessTaxID      *string       `json:"business_tax_id" binding:"omitempty,max=64"`
	BusinessAddress    *string       `json:"business_address" binding:"omitempty,max=255"`
	BusinessCity       *string       `json:"business_city" binding:"omitempty,max=128"`
	BusinessPostalCode *string       `json:"business_postal_code" binding:"omitempty,max=32"`
	BusinessCountry    *enum.Country `json:"business_country"`
	BusinessPhone      *string       `json:"business_phone" binding:"omitempty,max=64"`
}
