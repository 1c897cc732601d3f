// Package gate decides who is editing invoices and how many they may still
// finalize.
package gate

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
)

var (
	// ErrLimitReached is returned when the identity used up its allowance.
	ErrLimitReached = errors.New("invoice limit reached")
	// ErrSignInRequired is returned for operations an anonymous visitor cannot do.
	ErrSignInRequired = errors.New("sign in required")
	// ErrSessionClosed is returned when a session is used after Close.
	ErrSessionClosed = errors.New("session closed")
)

// Identity is the person behind a request: a signed-in user or an anonymous
// browser session.
type Identity struct {
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Email       string     `json:"email,omitempty"`
	AnonymousID string     `json:"anonymous_id,omitempty"`
}

// Anonymous returns an identity for a visitor without an account.
func Anonymous(anonymousID string) *Identity {
	return &Identity{AnonymousID: anonymousID}
}

// IsAnonymous reports whether no user is signed in.
func (i *Identity) IsAnonymous() bool {
	return i == nil || i.UserID == nil
}

// OwnerKey is a stable string key for per-identity bookkeeping.
func (i *Identity) OwnerKey() string {
	if i == nil {
		return ""
	}
	if i.UserID != nil {
		return "user:" + i.UserID.String()
	}
	if i.AnonymousID != "" {
		return "anon:" + i.AnonymousID
	}
	return ""
}

// Entitlement is what the identity may still do.
type Entitlement struct {
	Tier            enum.Tier `json:"tier"`
	IsSubscribed    bool      `json:"is_subscribed"`
	InvoicesCreated int64     `json:"invoices_created"`
	Limit           *int64    `json:"limit"`
	Remaining       *int64    `json:"remaining"`
	HasReachedLimit bool      `json:"has_reached_limit"`
}

// Policy holds the finalization allowances. Subscribers are unlimited.
type Policy struct {
	AnonymousLimit int64
	FreeLimit      int64
}

// DefaultPolicy is one invoice without an account and five on the free tier.
func DefaultPolicy() Policy {
	return Policy{AnonymousLimit: 1, FreeLimit: 5}
}

// Evaluate builds the entitlement for an identity with the given usage.
func (p Policy) Evaluate(id *Identity, created int64, subscribed bool) *Entitlement {
	if subscribed && !id.IsAnonymous() {
		return &Entitlement{
			Tier:            enum.TierSubscribed,
			IsSubscribed:    true,
			InvoicesCreated: created,
		}
	}

	limit := p.FreeLimit
	if id.IsAnonymous() {
		limit = p.AnonymousLimit
	}
	remaining := limit - created
	if remaining < 0 {
		remaining = 0
	}
	return &Entitlement{
		Tier:            enum.TierFree,
		InvoicesCreated: created,
		Limit:           &limit,
		Remaining:       &remaining,
		HasReachedLimit: created >= limit,
	}
}

// Credentials are the raw request facts an identity is resolved from.
type Credentials struct {
	BearerToken string
	AnonymousID string
}

// CheckoutSession is a hosted payment page for upgrading to the paid tier.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gate resolves identities and entitlements. Implementations degrade to
// anonymous or free instead of failing when their backends are unavailable.
type Gate interface {
	Identity(ctx context.Context, creds Credentials) (*Identity, error)
	Entitlement(ctx context.Context, id *Identity) (*Entitlement, error)
	CreateCheckoutSession(ctx context.Context, id *Identity, returnURL string) (*CheckoutSession, error)
	// RecordFinalized signals that the identity finalized one more invoice.
	RecordFinalized(ctx context.Context, id *Identity) error
}
