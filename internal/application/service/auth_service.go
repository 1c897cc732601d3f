package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/oauth"
	"github.com/sangkips/quickbill-api/pkg/utils"
	"go.uber.org/zap"
)

// IdentityProvider signs users in with an external account
type IdentityProvider interface {
	Name() string
	Authenticate(ctx context.Context, code string) (*oauth.Profile, error)
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	provider   IdentityProvider
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	jwtManager *utils.JWTManager,
	provider IdentityProvider,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		provider:   provider,
		logger:     logger,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RegisterInput represents the registration input
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*LoginOutput, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Email:           input.Email,
		Password:        hashedPassword,
		Provider:        "local",
		BusinessCountry: enum.CountrySpain,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issueTokens(user)
}

// LoginWithProvider signs in with an authorization code, creating the
// account on first use or linking an existing account with the same email.
func (s *AuthService) LoginWithProvider(ctx context.Context, code string) (*LoginOutput, error) {
	profile, err := s.provider.Authenticate(ctx, code)
	switch {
	case errors.Is(err, oauth.ErrOAuthNotConfigured):
		return nil, apperror.NewBadRequestError("Google sign-in is not configured")
	case errors.Is(err, oauth.ErrInvalidCode), errors.Is(err, oauth.ErrEmailNotVerified):
		return nil, apperror.ErrUnauthorized.Wrap(err)
	case err != nil:
		return nil, apperror.ErrBadGateway.Wrap(err)
	}

	user, err := s.userRepo.GetByProvider(ctx, profile.Provider, profile.SubjectID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user, err = s.userRepo.GetByEmail(ctx, profile.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			subject := profile.SubjectID
			user.ProviderID = &subject
			if user.Provider == "" || (user.Provider == "local" && user.Password == "") {
				user.Provider = profile.Provider
			}
			if user.Photo == nil && profile.Picture != "" {
				user.Photo = &profile.Picture
			}
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	}

	if user == nil {
		subject := profile.SubjectID
		user = &entity.User{
			FirstName:       profile.FirstName,
			LastName:        profile.LastName,
			Email:           profile.Email,
			Provider:        profile.Provider,
			ProviderID:      &subject,
			BusinessCountry: enum.CountrySpain,
		}
		if profile.Picture != "" {
			user.Photo = &profile.Picture
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		s.logger.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("provider", profile.Provider))
	}

	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// UpdateProfileInput represents the update profile input. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	UserID             uuid.UUID
	FirstName          string
	LastName           string
	BusinessName       *string
	BusinessTaxID      *string
	BusinessAddress    *string
	BusinessCity       *string
	BusinessPostalCode *string
	BusinessCountry    *enum.Country
	BusinessPhone      *string
}

// UpdateProfile updates the user's name and business profile
func (s *AuthService) UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}

	set := func(dst **string, v *string) {
		if v != nil {
			trimmed := strings.TrimSpace(*v)
			*dst = &trimmed
		}
	}
	set(&user.BusinessName, input.BusinessName)
	set(&user.BusinessTaxID, input.BusinessTaxID)
	set(&user.BusinessAddress, input.BusinessAddress)
	set(&user.BusinessCity, input.BusinessCity)
	set(&user.BusinessPostalCode, input.BusinessPostalCode)
	set(&user.BusinessPhone, input.BusinessPhone)
	if input.BusinessCountry != nil {
		if !input.BusinessCountry.IsValid() {
			return nil, apperror.NewFieldError("business_country", "Unknown country")
		}
		user.BusinessCountry = *input.BusinessCountry
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewBadRequestError("Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}
