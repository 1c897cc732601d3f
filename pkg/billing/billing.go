// Package billing creates subscription checkouts and reads subscription state
// from the payment provider.
package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotConfigured is returned when no payment provider key is set.
	ErrNotConfigured = errors.New("billing provider not configured")
	// ErrSessionNotFound is returned for an unknown checkout session id.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrProvider wraps failures reported by the payment provider.
	ErrProvider = errors.New("billing provider error")
)

// Config holds the product offered at checkout.
type Config struct {
	SecretKey          string
	ProductName        string
	ProductDescription string
	PriceCents         int64
	Currency           string
}

// CheckoutRequest describes who is subscribing and where to send them back.
type CheckoutRequest struct {
	CustomerEmail     string
	ClientReferenceID string
	ReturnURL         string
}

// CheckoutSession is a hosted payment page the client redirects to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CompletedCheckout is the outcome of a checkout session as seen by the
// provider.
type CompletedCheckout struct {
	SessionID          string
	ClientReferenceID  string
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string
	CurrentPeriodEnd   *time.Time
	Paid               bool
}

// Provider is the payment backend used for subscriptions.
type Provider interface {
	Enabled() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CompletedCheckout, error)
	SubscriptionStatus(ctx context.Context, subscriptionID string) (string, error)
}

// NewProviderFromConfig returns a Stripe provider when a secret key is set and
// a disabled provider otherwise.
func NewProviderFromConfig(cfg Config, log *zap.Logger) Provider {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		log.Info("billing disabled: no stripe secret key configured")
		return NullProvider{}
	}
	return NewStripeProvider(cfg, log)
}

// SuccessURL is where the provider sends the customer after paying.
func SuccessURL(returnURL string) string {
	return strings.TrimRight(returnURL, "/") + "/payment-success?session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where the provider sends the customer after abandoning.
func CancelURL(returnURL string) string {
	return strings.TrimRight(returnURL, "/") + "/profile"
}

// NullProvider is used when billing is not configured.
type NullProvider struct{}

func (NullProvider) Enabled() bool { return false }

func (NullProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	return nil, ErrNotConfigured
}

func (NullProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CompletedCheckout, error) {
	return nil, ErrNotConfigured
}

func (NullProvider) SubscriptionStatus(ctx context.Context, subscriptionID string) (string, error) {
	return "", ErrNotConfigured
}
