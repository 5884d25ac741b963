package middleware

import (
	"net/http"
	"strings"

	"kanban-board/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthOrReadOnly gates mutating requests behind a valid bearer token while
// letting read requests through anonymously. Policy beyond that binary check
// is out of scope for this service.
func AuthOrReadOnly(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_token",
				"message": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token_format",
				"message": "Authorization header must use Bearer token",
			})
			return
		}

		claims, err := auth.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_token",
				"message": "Token validation failed",
			})
			return
		}

		c.Set("subject", claims["sub"])
		c.Next()
	}
}
