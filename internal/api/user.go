package api

import (
	"net/http" // HTTP status codes

	"contact_system/internal/middleware" // Context keys
	"contact_system/internal/service"    // Business logic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// DeleteMeHandler deletes the caller with every contact, phone and security question,
// then revokes the access token used for the request
func DeleteMeHandler(users *service.UserService, blacklist *service.BlacklistService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		userID := user.ID
		ctx := c.Request.Context()
		if err := users.Delete(ctx, userID); err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(ctx, rdb, userID)
		token := c.GetString(middleware.TokenKey)
		if err := blacklist.Revoke(ctx, token, c.GetTime(middleware.TokenExpiresAtKey)); err != nil {
			// Not fatal, the user no longer exists
			logrus.WithFields(logrus.Fields{"user_id": userID, "username": user.Username, "error": err.Error()}).Warn("Token revocation after account deletion failed")
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
	}
}
