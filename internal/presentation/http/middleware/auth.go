package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

// RequireUser rejects requests whose session is anonymous. It must run after
// SessionMiddleware.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil || session.Identity().IsAnonymous() {
			if bearerToken(c) != "" {
				response.Unauthorized(c, "Invalid or expired token")
			} else {
				response.Unauthorized(c, "Authorization header is required")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
