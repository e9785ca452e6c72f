package middlewares

import (
	"net/http"
	"strings"

	"github.com/coneno/logger"
	"github.com/gin-gonic/gin"

	"github.com/cfstudy/checklist-backend/pkg/jwt"
)

// ValidateToken reads the token from the request and validates it
func ValidateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.Error.Println("no Authorization token found")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no Authorization token found"})
			c.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		parsedToken, valid, err := jwt.ValidateToken(token)
		if err != nil || !valid {
			logger.Error.Printf("invalid token with err: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("validatedToken", parsedToken)
		c.Next()
	}
}
