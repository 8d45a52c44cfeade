package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	contextUserID    = "user_id"
	contextUserEmail = "user_email"
	contextUserRole  = "user_role"

	anonymousUser = "anonymous"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// Used when AUTH_MODE=gateway and an upstream proxy validates credentials.
//
// The API trusts these headers unconditionally. Only run it this way behind a
// gateway with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set(contextUserID, userID)
		c.Set(contextUserEmail, c.GetHeader("X-User-Email"))
		c.Set(contextUserRole, c.GetHeader("X-User-Role"))

		c.Next()
	}
}

// UserID returns the caller id set by GatewayAuth or NoAuth
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(contextUserID)
	if id == "" || id == anonymousUser {
		return "", false
	}
	return id, true
}
