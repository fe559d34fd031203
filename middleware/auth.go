package middleware

import (
	"net/http"
	"strings"

	"carhire/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthAgentMiddleware authenticates the calling agent from the bearer
// token and places its id on the request context.
func JWTAuthAgentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		agentID, err := utils.ExtractAgentIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("agentID", agentID)
		c.Next()
	}
}
