package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/profpocket/pocket-api/internal/middleware"
	"github.com/profpocket/pocket-api/internal/models"
)

// currentUserID extracts the authenticated user id from the gin context.
func currentUserID(c *gin.Context) (string, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return "", false
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims.UID == "" {
		return "", false
	}
	return claims.UID, true
}
