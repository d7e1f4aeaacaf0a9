package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin : à chaîner APRÈS AuthRequired
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
			c.Abort()
			return
		}
		c.Next()
	}
}
