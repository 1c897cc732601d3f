package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"go.uber.org/zap"
)

// StripeProvider talks to Stripe through a dedicated API client.
type StripeProvider struct {
	api    *client.API
	cfg    Config
	logger *zap.Logger
}

// NewStripeProvider creates a Stripe-backed provider
func NewStripeProvider(cfg Config, log *zap.Logger) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyEUR)
	}
	return &StripeProvider{api: api, cfg: cfg, logger: log}
}

func (p *StripeProvider) Enabled() bool { return true }

// CreateCheckoutSession opens a monthly subscription checkout for one seat.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(SuccessURL(req.ReturnURL)),
		CancelURL:  stripe.String(CancelURL(req.ReturnURL)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.cfg.ProductName),
						Description: stripe.String(p.cfg.ProductDescription),
					},
					UnitAmount: stripe.Int64(p.cfg.PriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, p.handleStripeError("create checkout session", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// GetCheckoutSession reads a finished checkout together with its subscription.
func (p *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CompletedCheckout, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("subscription")
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, p.handleStripeError("get checkout session", err)
	}

	out := &CompletedCheckout{
		SessionID:         s.ID,
		ClientReferenceID: s.ClientReferenceID,
		Paid:              s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
		out.SubscriptionStatus = string(s.Subscription.Status)
		if s.Subscription.CurrentPeriodEnd > 0 {
			end := time.Unix(s.Subscription.CurrentPeriodEnd, 0).UTC()
			out.CurrentPeriodEnd = &end
		}
	}
	return out, nil
}

// SubscriptionStatus returns the provider's current status for a subscription.
func (p *StripeProvider) SubscriptionStatus(ctx context.Context, subscriptionID string) (string, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return "", p.handleStripeError("get subscription", err)
	}
	return string(sub.Status), nil
}

// handleStripeError converts Stripe errors to billing errors
func (p *StripeProvider) handleStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return ErrSessionNotFound
		}
		p.logger.Error("Stripe API error",
			zap.String("op", op),
			zap.String("code", string(stripeErr.Code)),
			zap.String("message", stripeErr.Msg),
			zap.String("type", string(stripeErr.Type)),
		)
	}
	return fmt.Errorf("%w: %s: %v", ErrProvider, op, err)
}
