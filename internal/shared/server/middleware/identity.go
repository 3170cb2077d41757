package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey     = "userId"
	anonymousKey  = "anonymous"
	defaultUserID = "demo"
)

// Identity labels the request with the caller-supplied X-User-Id header.
// The label is not verified; it only scopes per-user data such as favorites.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if id == "" {
			id = defaultUserID
			c.Set(anonymousKey, true)
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the Identity middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// IsAnonymous reports whether the request carried no X-User-Id header and was
// given the shared default label.
func IsAnonymous(c *gin.Context) bool {
	if c == nil {
		return true
	}
	return c.GetBool(anonymousKey)
}
