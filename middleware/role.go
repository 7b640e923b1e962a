package middleware

import (
	"net/http"

	"gigbook/models"

	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only for the listed roles.
// Must run after JWTAuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !allowed[caller.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not allowed for this endpoint"})
			return
		}
		c.Next()
	}
}
