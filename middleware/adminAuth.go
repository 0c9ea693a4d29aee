package middleware

import (
	"net/http"
	"strings"

	"venuebook/config"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards admin endpoints with the static bearer token
// from config. Customer-facing auth is handled by an external
// collaborator and never reaches this service.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token := config.AppConfig.AdminToken
		if token == "" || tokenString != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
