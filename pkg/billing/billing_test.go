package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProviderFromConfig(t *testing.T) {
	p := NewProviderFromConfig(Config{}, zap.NewNop())
	assert.False(t, p.Enabled())

	_, err := p.CreateCheckoutSession(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	stripeProvider := NewProviderFromConfig(Config{SecretKey: "sk_test_123", PriceCents: 400}, zap.NewNop())
	require.True(t, stripeProvider.Enabled())
	sp, ok := stripeProvider.(*StripeProvider)
	require.True(t, ok)
	assert.Equal(t, "eur", sp.cfg.Currency)
}

func TestCheckoutURLs(t *testing.T) {
	assert.Equal(t,
		"http://localhost:3000/payment-success?session_id={CHECKOUT_SESSION_ID}",
		SuccessURL("http://localhost:3000/"))
	assert.Equal(t, "https://app.example.com/profile", CancelURL("https://app.example.com"))
}
