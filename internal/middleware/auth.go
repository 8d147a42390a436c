package middleware

import (
	"net/http"
	"strings"

	"smart-tutor-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the Bearer token and stores the learner identity
// in the Gin context under "userID".
func AuthMiddleware(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("claims", claims)
		c.Next()
	}
}

// UserID reads the authenticated learner id from the Gin context.
func UserID(c *gin.Context) string {
	if id, ok := c.Get("userID"); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
