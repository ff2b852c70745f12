package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shelfwise/internal/models"
	"shelfwise/internal/services"
)

const claimsKey = "authClaims"

// AuthRequired validates the Bearer token and stores the claims on the context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := services.ParseToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// AdminRequired rejects requests whose token does not carry the admin role.
// Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := MustClaims(c)
		if claims.Role != models.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// MustClaims returns the claims stored by AuthRequired. Panics if called on a
// route that is not behind AuthRequired.
func MustClaims(c *gin.Context) *services.Claims {
	return c.MustGet(claimsKey).(*services.Claims)
}
