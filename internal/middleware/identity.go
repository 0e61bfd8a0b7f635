package middleware

import (
	"context"  // Context for user lookups
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"contact_system/internal/domain"  // Domain models
	"contact_system/internal/service" // Service errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // User identifiers
	"github.com/sirupsen/logrus" // Structured logging
)

// UserKey is the context key holding the authenticated *domain.User
const UserKey = "user"

// UserLookup loads an account by id
type UserLookup interface {
	Find(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// CurrentUserMiddleware loads the token's user from the database on each request,
// so tokens of deleted accounts or from before a password reset stop working immediately
func CurrentUserMiddleware(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(UserIDKey) // Get userID from context
		id, isUUID := userID.(uuid.UUID)
		if !ok || !isUUID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		user, err := users.Find(c.Request.Context(), id)
		if errors.Is(err, service.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		} else if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": id, "error": err.Error()}).Error("User lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if c.GetInt(TokenVersionKey) != user.TokenVersion {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token no longer valid"})
			return
		}
		c.Set(UserKey, user) // Store the loaded user for handlers
		c.Next()
	}
}
