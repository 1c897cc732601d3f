package gate

import (
	"context"
	"sync"
)

type ctxKey struct{}

// Session carries one request's identity and a lazily loaded entitlement.
// It is opened at the start of a request and closed at its end.
type Session struct {
	gate     Gate
	identity *Identity

	mu          sync.Mutex
	entitlement *Entitlement
	closed      bool
}

// Open resolves the identity for creds. A resolution error falls back to
// the anonymous identity so editing keeps working.
func Open(ctx context.Context, g Gate, creds Credentials) *Session {
	id, err := g.Identity(ctx, creds)
	if err != nil || id == nil {
		id = Anonymous(creds.AnonymousID)
	}
	return &Session{gate: g, identity: id}
}

// Identity returns the session's identity.
func (s *Session) Identity() *Identity {
	return s.identity
}

// Entitlement returns the cached entitlement, loading it on first use.
func (s *Session) Entitlement(ctx context.Context) (*Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.entitlement != nil {
		return s.entitlement, nil
	}

	e, err := s.gate.Entitlement(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	s.entitlement = e
	return e, nil
}

// Allow returns ErrLimitReached, with the current entitlement, when the
// identity may not finalize another invoice.
func (s *Session) Allow(ctx context.Context) (*Entitlement, error) {
	e, err := s.Entitlement(ctx)
	if err != nil {
		return nil, err
	}
	if e.HasReachedLimit {
		return e, ErrLimitReached
	}
	return e, nil
}

// RecordFinalized forwards the signal to the gate and drops the cached
// entitlement so the next read sees the new count.
func (s *Session) RecordFinalized(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.entitlement = nil
	s.mu.Unlock()

	return s.gate.RecordFinalized(ctx, s.identity)
}

// Checkout starts an upgrade for the session's identity.
func (s *Session) Checkout(ctx context.Context, returnURL string) (*CheckoutSession, error) {
	if s.identity.IsAnonymous() {
		return nil, ErrSignInRequired
	}
	return s.gate.CreateCheckoutSession(ctx, s.identity, returnURL)
}

// Close releases the session. Later calls fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entitlement = nil
}

// WithSession adds the session to context
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session from context
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
