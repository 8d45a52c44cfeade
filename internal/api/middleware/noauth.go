package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoAuth is a pass-through middleware for AUTH_MODE=none.
// Every caller is anonymous and sees the shared history.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextUserID, anonymousUser)
		c.Next()
	}
}
