package middleware

import (
	"context"  // Context for revocation lookups
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"contact_system/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Context keys set by the authentication middleware
const (
	UserIDKey         = "userID"
	TokenKey          = "token"
	TokenExpiresAtKey = "tokenExpiresAt"
	TokenVersionKey   = "tokenVersion"
)

// RevocationChecker reports whether a token was blacklisted at logout
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// JWTAuthMiddleware validates bearer access tokens and extracts user information
func JWTAuthMiddleware(secret string, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")              // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, utils.AccessToken, secret) // Parse the access token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		// Reject tokens revoked by logout
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), tokenStr)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Token blacklist lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if isRevoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return
		}
		c.Set(UserIDKey, claims.UserID)                 // Store userID in context
		c.Set(TokenKey, tokenStr)                       // Store raw token for logout
		c.Set(TokenExpiresAtKey, claims.ExpiresAt.Time) // Store expiry for the blacklist entry
		c.Set(TokenVersionKey, claims.Version)          // Checked against the loaded user
		c.Next()                                        // Proceed to the next handler
	}
}
