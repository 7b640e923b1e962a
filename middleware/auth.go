package middleware

import (
	"net/http"
	"strings"

	"gigbook/models"
	"gigbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CallerIDKey = "callerID"
	RoleKey     = "role"
)

// JWTAuthMiddleware verifies the bearer token issued by the identity service and
// puts the caller's id and role into the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.GetLogger().Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(CallerIDKey, claims.Subject)
		c.Set(RoleKey, models.Role(strings.ToUpper(claims.Role)))
		c.Next()
	}
}

// CallerFrom returns the authenticated caller set by JWTAuthMiddleware.
func CallerFrom(c *gin.Context) (models.Caller, bool) {
	id := c.GetString(CallerIDKey)
	if id == "" {
		return models.Caller{}, false
	}
	role, _ := c.Get(RoleKey)
	r, _ := role.(models.Role)
	return models.Caller{ID: id, Role: r}, true
}
