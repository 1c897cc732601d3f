package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/config"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	infraRepo "github.com/sangkips/quickbill-api/internal/infrastructure/repository"
	"github.com/sangkips/quickbill-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

// tokenGate treats the bearer token "valid" as a fixed user.
type tokenGate struct {
	userID uuid.UUID
}

func (g *tokenGate) Identity(ctx context.Context, creds gate.Credentials) (*gate.Identity, error) {
	if creds.BearerToken == "valid" {
		return &gate.Identity{UserID: &g.userID, Email: "user@example.com", AnonymousID: creds.AnonymousID}, nil
	}
	return gate.Anonymous(creds.AnonymousID), nil
}

func (g *tokenGate) Entitlement(ctx context.Context, id *gate.Identity) (*gate.Entitlement, error) {
	return gate.DefaultPolicy().Evaluate(id, 0, false), nil
}

func (g *tokenGate) CreateCheckoutSession(ctx context.Context, id *gate.Identity, returnURL string) (*gate.CheckoutSession, error) {
	return nil, gate.ErrSignInRequired
}

func (g *tokenGate) RecordFinalized(ctx context.Context, id *gate.Identity) error { return nil }

func newRouter(g gate.Gate, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(SessionConfig{Gate: g, CookieMaxAge: 3600}))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		owner, _ := infraRepo.GetOwner(c.Request.Context())
		_, inCtx := gate.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"owner_key":  GetSession(c).Identity().OwnerKey(),
			"anon_owner": owner.AnonymousID,
			"in_context": inCtx,
		})
	})
	return r
}

func TestSessionMiddlewareMintsAnonymousID(t *testing.T) {
	r := newRouter(&tokenGate{userID: uuid.New()})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)

	anonID := w.Header().Get(AnonymousIDHeader)
	assert.True(t, utils.IsAnonymousID(anonID))
	assert.Contains(t, w.Body.String(), `"owner_key":"anon:`+anonID+`"`)
	assert.Contains(t, w.Body.String(), `"in_context":true`)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, AnonymousIDCookie, cookies[0].Name)
	assert.Equal(t, anonID, cookies[0].Value)
}

func TestSessionMiddlewareKeepsValidAnonymousID(t *testing.T) {
	r := newRouter(&tokenGate{userID: uuid.New()})
	anonID := utils.NewAnonymousID()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AnonymousIDCookie, Value: anonID})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, anonID, w.Header().Get(AnonymousIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(AnonymousIDHeader, "forged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "forged", w.Header().Get(AnonymousIDHeader))
}

func TestSessionMiddlewareSignedIn(t *testing.T) {
	userID := uuid.New()
	r := newRouter(&tokenGate{userID: userID}, RequireUser())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner_key":"user:`+userID.String()+`"`)
	assert.Contains(t, w.Body.String(), `"anon_owner":""`)
}

func TestRequireUser(t *testing.T) {
	r := newRouter(&tokenGate{userID: uuid.New()}, RequireUser())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestIdentityRateLimiter(t *testing.T) {
	rl := NewIdentityRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2, CleanupInterval: time.Minute, EntryTTL: time.Minute})
	defer rl.Stop()
	r := newRouter(&tokenGate{userID: uuid.New()}, rl.Middleware())

	anonID := utils.NewAnonymousID()
	call := func(id string) int {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(AnonymousIDHeader, id)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call(anonID))
	assert.Equal(t, http.StatusOK, call(anonID))
	assert.Equal(t, http.StatusTooManyRequests, call(anonID))
	assert.Equal(t, http.StatusOK, call(utils.NewAnonymousID()), "other identities keep their own budget")
	assert.Equal(t, 2, rl.Stats()["active_identities"])
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(120, 60)
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 120, cfg.BurstSize)
	assert.Equal(t, DefaultRateLimiterConfig(), RateLimiterConfigFor(0, 60))
}

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggerMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestCORSMiddlewareAllowsAnonymousHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"http://app.example.com"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", AnonymousIDHeader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-anonymous-id")
}
