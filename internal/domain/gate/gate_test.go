package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	identityErr error
	created     int64
	subscribed  bool
	loads       int
	recorded    int
}

func (f *fakeGate) Identity(ctx context.Context, creds Credentials) (*Identity, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	if creds.BearerToken == "" {
		return Anonymous(creds.AnonymousID), nil
	}
	id := uuid.New()
	return &Identity{UserID: &id, Email: "ana@example.com", AnonymousID: creds.AnonymousID}, nil
}

func (f *fakeGate) Entitlement(ctx context.Context, id *Identity) (*Entitlement, error) {
	f.loads++
	return DefaultPolicy().Evaluate(id, f.created, f.subscribed), nil
}

func (f *fakeGate) CreateCheckoutSession(ctx context.Context, id *Identity, returnURL string) (*CheckoutSession, error) {
	return &CheckoutSession{ID: "cs_1", URL: returnURL}, nil
}

func (f *fakeGate) RecordFinalized(ctx context.Context, id *Identity) error {
	f.recorded++
	f.created++
	return nil
}

func TestPolicyEvaluate(t *testing.T) {
	p := DefaultPolicy()
	userID := uuid.New()
	user := &Identity{UserID: &userID}
	anon := Anonymous("anon_1")

	tests := []struct {
		name       string
		id         *Identity
		created    int64
		subscribed bool
		reached    bool
		limit      *int64
	}{
		{"anonymous fresh", anon, 0, false, false, ptr(1)},
		{"anonymous used", anon, 1, false, true, ptr(1)},
		{"free under limit", user, 4, false, false, ptr(5)},
		{"free at limit", user, 5, false, true, ptr(5)},
		{"subscribed", user, 500, true, false, nil},
		{"anonymous cannot subscribe", anon, 1, true, true, ptr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := p.Evaluate(tt.id, tt.created, tt.subscribed)
			assert.Equal(t, tt.reached, e.HasReachedLimit)
			assert.Equal(t, tt.limit, e.Limit)
			assert.Equal(t, tt.created, e.InvoicesCreated)
		})
	}

	e := p.Evaluate(user, 7, false)
	assert.Equal(t, int64(0), *e.Remaining)
	assert.Equal(t, enum.TierFree, e.Tier)
	assert.Equal(t, enum.TierSubscribed, p.Evaluate(user, 0, true).Tier)
}

func TestIdentityOwnerKey(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "user:"+id.String(), (&Identity{UserID: &id, AnonymousID: "anon_x"}).OwnerKey())
	assert.Equal(t, "anon:anon_x", Anonymous("anon_x").OwnerKey())
	assert.Equal(t, "", Anonymous("").OwnerKey())

	var nilID *Identity
	assert.True(t, nilID.IsAnonymous())
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	g := &fakeGate{}
	s := Open(ctx, g, Credentials{AnonymousID: "anon_1"})
	require.True(t, s.Identity().IsAnonymous())

	e, err := s.Allow(ctx)
	require.NoError(t, err)
	assert.False(t, e.HasReachedLimit)

	_, err = s.Entitlement(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, g.loads, "entitlement is cached within a session")

	require.NoError(t, s.RecordFinalized(ctx))
	e, err = s.Allow(ctx)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.True(t, e.HasReachedLimit)
	assert.Equal(t, 2, g.loads)

	s.Close()
	_, err = s.Entitlement(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.ErrorIs(t, s.RecordFinalized(ctx), ErrSessionClosed)
}

func TestSessionFallsBackToAnonymous(t *testing.T) {
	g := &fakeGate{identityErr: errors.New("auth backend down")}
	s := Open(context.Background(), g, Credentials{BearerToken: "tok", AnonymousID: "anon_2"})

	assert.True(t, s.Identity().IsAnonymous())
	assert.Equal(t, "anon_2", s.Identity().AnonymousID)
}

func TestSessionCheckoutRequiresUser(t *testing.T) {
	ctx := context.Background()
	g := &fakeGate{}

	_, err := Open(ctx, g, Credentials{AnonymousID: "anon_3"}).Checkout(ctx, "http://localhost:3000")
	assert.ErrorIs(t, err, ErrSignInRequired)

	cs, err := Open(ctx, g, Credentials{BearerToken: "tok"}).Checkout(ctx, "http://localhost:3000")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", cs.ID)
}

func TestSessionContext(t *testing.T) {
	s := Open(context.Background(), &fakeGate{}, Credentials{})
	ctx := WithSession(context.Background(), s)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}

func ptr(v int64) *int64 { return &v }
