package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quickbill-api/internal/domain/gate"
	"github.com/sangkips/quickbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/quickbill-api/internal/presentation/http/middleware"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	return c.GetString("user_email")
}

// requireSession returns the request's gate session or writes a 500.
func requireSession(c *gin.Context) (*gate.Session, bool) {
	session := middleware.GetSession(c)
	if session == nil {
		response.InternalServerError(c, "Session unavailable")
		return nil, false
	}
	return session, true
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// ownerFolder names the storage folder of an identity's files.
func ownerFolder(id *gate.Identity) string {
	if id.UserID != nil {
		return id.UserID.String()
	}
	return id.AnonymousID
}
