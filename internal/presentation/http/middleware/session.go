package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	infraRepo "github.com/sangkips/quickbill-api/internal/infrastructure/repository"
	"github.com/sangkips/quickbill-api/pkg/utils"
)

const (
	// AnonymousIDHeader carries the anonymous session id for API clients.
	AnonymousIDHeader = "X-Anonymous-ID"
	// AnonymousIDCookie carries the anonymous session id for browsers.
	AnonymousIDCookie = "qb_anonymous_id"

	sessionKey = "gate_session"
)

// SessionConfig holds configuration for the session middleware
type SessionConfig struct {
	Gate gate.Gate
	// CookieMaxAge is the anonymous cookie lifetime in seconds.
	CookieMaxAge int
	SecureCookie bool
}

// SessionMiddleware opens the gate session for the request and closes it
// when the handlers are done. The anonymous id is minted on first contact and
// echoed back so the client can keep it.
func SessionMiddleware(cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		anonID := anonymousID(c)
		if anonID == "" {
			anonID = utils.NewAnonymousID()
		}
		c.Header(AnonymousIDHeader, anonID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(AnonymousIDCookie, anonID, cfg.CookieMaxAge, "/", "", cfg.SecureCookie, true)

		session := gate.Open(c.Request.Context(), cfg.Gate, gate.Credentials{
			BearerToken: bearerToken(c),
			AnonymousID: anonID,
		})
		defer session.Close()

		id := session.Identity()
		owner := infraRepo.Owner{UserID: id.UserID}
		if id.IsAnonymous() {
			owner.AnonymousID = id.AnonymousID
		} else {
			c.Set("user_id", *id.UserID)
			c.Set("user_email", id.Email)
		}
		c.Set(sessionKey, session)

		ctx := infraRepo.WithOwner(c.Request.Context(), owner)
		ctx = gate.WithSession(ctx, session)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSession returns the gate session opened for the request.
func GetSession(c *gin.Context) *gate.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*gate.Session)
	return s
}

func anonymousID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(AnonymousIDHeader)); utils.IsAnonymousID(id) {
		return id
	}
	if id, err := c.Cookie(AnonymousIDCookie); err == nil && utils.IsAnonymousID(id) {
		return id
	}
	return ""
}
