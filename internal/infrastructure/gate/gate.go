// Package gate implements the entitlement gate on top of JWT identities, the
// invoices table and the billing provider.
package gate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	contract "github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/sangkips/quickbill-api/internal/domain/repository"
	"github.com/sangkips/quickbill-api/pkg/billing"
	"github.com/sangkips/quickbill-api/pkg/cache"
	"github.com/sangkips/quickbill-api/pkg/utils"
	"go.uber.org/zap"
)

// Deps are the collaborators of the gate service.
type Deps struct {
	JWT           *utils.JWTManager
	Users         repository.UserRepository
	Invoices      repository.InvoiceRepository
	Subscriptions repository.SubscriptionRepository
	Billing       billing.Provider
	// AnonymousCounts holds finalized invoice counts for anonymous ids.
	AnonymousCounts cache.Cache[string, int64]
	Policy          contract.Policy
	AnonymousTTL    time.Duration
	Logger          *zap.Logger
}

// Service implements contract.Gate.
type Service struct {
	deps Deps
	log  *zap.Logger
}

var _ contract.Gate = (*Service)(nil)

// New creates a gate service
func New(deps Deps) *Service {
	if deps.AnonymousCounts == nil {
		deps.AnonymousCounts = cache.NewTTLCache[string, int64]()
	}
	if deps.Billing == nil {
		deps.Billing = billing.NullProvider{}
	}
	if deps.Policy == (contract.Policy{}) {
		deps.Policy = contract.DefaultPolicy()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{deps: deps, log: log.Named("gate")}
}

// Identity validates the bearer token. An invalid or expired token is not an
// error: the caller continues as the anonymous session.
func (s *Service) Identity(ctx context.Context, creds contract.Credentials) (*contract.Identity, error) {
	token := strings.TrimSpace(creds.BearerToken)
	if token == "" {
		return contract.Anonymous(creds.AnonymousID), nil
	}

	claims, err := s.deps.JWT.ValidateAccessToken(token)
	if err != nil {
		s.log.Debug("bearer token rejected, continuing anonymously", zap.Error(err))
		return contract.Anonymous(creds.AnonymousID), nil
	}

	userID := claims.UserID
	return &contract.Identity{
		UserID:      &userID,
		Email:       claims.Email,
		AnonymousID: creds.AnonymousID,
	}, nil
}

// Entitlement counts finalized invoices and checks the subscription.
func (s *Service) Entitlement(ctx context.Context, id *contract.Identity) (*contract.Entitlement, error) {
	if id.IsAnonymous() {
		return s.deps.Policy.Evaluate(id, s.anonymousCreated(ctx, id.AnonymousID), false), nil
	}

	return s.deps.Policy.Evaluate(id, s.invoicesCreated(ctx, *id.UserID), s.isSubscribed(ctx, *id.UserID)), nil
}

// invoicesCreated is the larger of the lifetime counter and the stored
// invoices, so deleting an invoice never gives an allowance back.
func (s *Service) invoicesCreated(ctx context.Context, userID uuid.UUID) int64 {
	var created int64
	user, err := s.deps.Users.GetByID(ctx, userID)
	if err != nil {
		s.log.Warn("user lookup failed, counting stored invoices", zap.String("user_id", userID.String()), zap.Error(err))
	} else if user != nil {
		created = user.InvoicesCreated
	}

	stored, err := s.deps.Invoices.CountByUser(ctx, userID)
	if err != nil {
		s.log.Warn("invoice count unavailable", zap.String("user_id", userID.String()), zap.Error(err))
		return created
	}
	if stored > created {
		return stored
	}
	return created
}

// anonymousCreated is the larger of the cached count and the stored
// invoices of the anonymous id; the cache alone is lost on restart and is
// not shared between replicas.
func (s *Service) anonymousCreated(ctx context.Context, anonymousID string) int64 {
	if anonymousID == "" {
		return 0
	}
	created, _ := s.deps.AnonymousCounts.Get(anonymousID)

	stored, err := s.deps.Invoices.CountByAnonymous(ctx, anonymousID)
	if err != nil {
		s.log.Warn("anonymous invoice count unavailable", zap.String("anonymous_id", anonymousID), zap.Error(err))
		return created
	}
	if stored > created {
		return stored
	}
	return created
}

// IsSubscribed reports whether the user holds an active paid plan.
func (s *Service) IsSubscribed(ctx context.Context, id *contract.Identity) bool {
	if id.IsAnonymous() {
		return false
	}
	return s.isSubscribed(ctx, *id.UserID)
}

func (s *Service) isSubscribed(ctx context.Context, userID uuid.UUID) bool {
	sub, err := s.deps.Subscriptions.GetActiveByUser(ctx, userID)
	if err != nil {
		s.log.Warn("subscription lookup failed, treating as free", zap.String("user_id", userID.String()), zap.Error(err))
		return false
	}
	if sub == nil {
		return false
	}

	if !s.deps.Billing.Enabled() || sub.StripeSubscriptionID == "" {
		return sub.Status.IsActive()
	}

	status, err := s.deps.Billing.SubscriptionStatus(ctx, sub.StripeSubscriptionID)
	if err != nil {
		// The stored row is the last known state.
		s.log.Warn("subscription check with provider failed", zap.String("user_id", userID.String()), zap.Error(err))
		return sub.Status.IsActive()
	}

	current := enum.SubscriptionStatus(status)
	if current != sub.Status {
		sub.Status = current
		if err := s.deps.Subscriptions.Upsert(ctx, sub); err != nil {
			s.log.Warn("failed to store subscription status", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return current.IsActive()
}

// CreateCheckoutSession starts the paid plan checkout for a signed-in user.
func (s *Service) CreateCheckoutSession(ctx context.Context, id *contract.Identity, returnURL string) (*contract.CheckoutSession, error) {
	if id.IsAnonymous() {
		return nil, contract.ErrSignInRequired
	}

	cs, err := s.deps.Billing.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		CustomerEmail:     id.Email,
		ClientReferenceID: id.UserID.String(),
		ReturnURL:         returnURL,
	})
	if err != nil {
		return nil, err
	}
	return &contract.CheckoutSession{ID: cs.ID, URL: cs.URL}, nil
}

// RecordFinalized bumps the finalized invoice counter of the identity.
func (s *Service) RecordFinalized(ctx context.Context, id *contract.Identity) error {
	if !id.IsAnonymous() {
		return s.deps.Users.IncrementInvoicesCreated(ctx, *id.UserID)
	}
	if id.AnonymousID == "" {
		return errors.New("anonymous session without id")
	}

	count := s.deps.AnonymousCounts.Update(id.AnonymousID, s.deps.AnonymousTTL, func(current int64, _ bool) int64 {
		return current + 1
	})
	s.log.Debug("anonymous invoice recorded", zap.String("anonymous_id", id.AnonymousID), zap.Int64("count", count))
	return nil
}
