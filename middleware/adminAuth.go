package middleware

import (
	"net/http"

	"hive/models"

	"github.com/gin-gonic/gin"
)

// AdminOnlyMiddleware gates a route group on the admin role. It must run
// after JWTAuthUserMiddleware, which resolves the role into the context.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("userRole")
		if !exists || role != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
