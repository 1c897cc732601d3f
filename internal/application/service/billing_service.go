package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/entity"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/pkg/apperror"
	"github.com/sangkips/quickbill-api/pkg/billing"
	"go.uber.org/zap"
)

// SubscriptionChecker reports whether an identity holds the paid plan.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, id *gate.Identity) bool
}

// BillingService handles the paid plan checkout
type BillingService struct {
	provider         billing.Provider
	subRepo          repository.SubscriptionRepository
	userRepo         repository.UserRepository
	checker          SubscriptionChecker
	defaultReturnURL string
	logger           *zap.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	provider billing.Provider,
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	checker SubscriptionChecker,
	defaultReturnURL string,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		provider:         provider,
		subRepo:          subRepo,
		userRepo:         userRepo,
		checker:          checker,
		defaultReturnURL: defaultReturnURL,
		logger:           logger,
	}
}

var errBillingUnavailable = apperror.NewAppError(http.StatusServiceUnavailable, "Billing is not available")

// StartCheckout creates a checkout session for the session's user.
func (s *BillingService) StartCheckout(ctx context.Context, session *gate.Session, returnURL string) (*gate.CheckoutSession, error) {
	if strings.TrimSpace(returnURL) == "" {
		returnURL = s.defaultReturnURL
	}

	cs, err := session.Checkout(ctx, returnURL)
	switch {
	case errors.Is(err, gate.ErrSignInRequired):
		return nil, apperror.ErrUnauthorized
	case errors.Is(err, billing.ErrNotConfigured):
		return nil, errBillingUnavailable
	case err != nil:
		s.logger.Error("checkout session failed", zap.String("owner", session.Identity().OwnerKey()), zap.Error(err))
		return nil, apperror.ErrBadGateway.Wrap(err).WithMessage("Could not start the checkout, please try again")
	}
	return cs, nil
}

// CompleteCheckout confirms a finished checkout and stores the subscription.
func (s *BillingService) CompleteCheckout(ctx context.Context, id *gate.Identity, sessionID string) (*entity.Subscription, error) {
	if id.IsAnonymous() {
		return nil, apperror.ErrUnauthorized
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperror.NewFieldError("session_id", "Session id is required")
	}

	done, err := s.provider.GetCheckoutSession(ctx, sessionID)
	switch {
	case errors.Is(err, billing.ErrNotConfigured):
		return nil, errBillingUnavailable
	case errors.Is(err, billing.ErrSessionNotFound):
		return nil, apperror.NewNotFoundError("Checkout session")
	case err != nil:
		return nil, apperror.ErrBadGateway.Wrap(err)
	}

	if done.ClientReferenceID != "" && done.ClientReferenceID != id.UserID.String() {
		return nil, apperror.ErrForbidden
	}
	if done.SubscriptionID == "" {
		return nil, apperror.NewBadRequestError("Checkout has no subscription yet")
	}

	status := enum.SubscriptionStatus(done.SubscriptionStatus)
	if status == "" && done.Paid {
		status = enum.SubscriptionStatusActive
	}

	sub := &entity.Subscription{
		UserID:               *id.UserID,
		StripeCustomerID:     done.CustomerID,
		StripeSubscriptionID: done.SubscriptionID,
		Status:               status,
		CurrentPeriodEnd:     done.CurrentPeriodEnd,
	}
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	if done.CustomerID != "" {
		s.rememberCustomer(ctx, *id.UserID, done.CustomerID)
	}

	s.logger.Info("subscription stored",
		zap.String("user_id", id.UserID.String()),
		zap.String("status", status.String()),
	)
	return sub, nil
}

func (s *BillingService) rememberCustomer(ctx context.Context, userID uuid.UUID, customerID string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	user.StripeCustomerID = &customerID
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Warn("failed to store customer id", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// IsSubscribed reports whether the identity holds an active paid plan.
func (s *BillingService) IsSubscribed(ctx context.Context, id *gate.Identity) bool {
	return s.checker.IsSubscribed(ctx, id)
}
