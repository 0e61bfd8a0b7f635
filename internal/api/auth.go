package api

import (
	"errors"   // Error matching
	"io"       // Empty body detection
	"net/http" // HTTP status codes
	"time"     // Token expiry

	"contact_system/internal/config"     // Token lifetimes and secret
	"contact_system/internal/middleware" // Context keys
	"contact_system/internal/service"    // Business logic
	"contact_system/internal/utils"      // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/google/uuid"     // Identifiers
	"github.com/sirupsen/logrus" // Structured logging
)

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginRequest accepts a username or an email in Username
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username or email
	Password string `json:"password" binding:"required"` // Password must be provided
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"` // Refresh token to exchange
}

// LogoutRequest optionally carries the refresh token to revoke alongside the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"` // Refresh token to revoke
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`            // Short-lived access token
	RefreshToken string `json:"refresh_token,omitempty"` // Long-lived refresh token (login only)
	TokenType    string `json:"token_type"`              // Always "bearer"
}

// RecoveryQuestionsRequest names the account to recover
type RecoveryQuestionsRequest struct {
	Username string `json:"username" binding:"required"` // Account username
}

// RecoverRequest answers one security question and sets a new password
type RecoverRequest struct {
	Username    string    `json:"username" binding:"required"`     // Account username
	QuestionID  uuid.UUID `json:"question_id" binding:"required"`  // Question being answered
	Answer      string    `json:"answer" binding:"required"`       // Answer to the question
	NewPassword string    `json:"new_password" binding:"required"` // Replacement password
}

// RecoveryQuestion is a question without its answer
type RecoveryQuestion struct {
	ID       uuid.UUID `json:"id"`       // Question ID
	Question string    `json:"question"` // Question text
}

// RegisterHandler creates an account
func RegisterHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.Register(c.Request.Context(), service.RegisterInput{
			Username: req.Username, // Requested username
			Email:    req.Email,    // Contact email
			Password: req.Password, // Plain password, hashed by the service
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user) // Return the new user
	}
}

// LoginHandler authenticates a user and returns an access and a refresh token
func LoginHandler(users *service.UserService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.Authenticate(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			respondError(c, err)
			return
		}
		access, err := utils.GenerateJWT(user.ID, user.TokenVersion, utils.AccessToken, cfg.JWTSecret, cfg.AccessTokenTTL)
		if err != nil {
			respondError(c, err)
			return
		}
		refresh, err := utils.GenerateJWT(user.ID, user.TokenVersion, utils.RefreshToken, cfg.JWTSecret, cfg.RefreshTokenTTL)
		if err != nil {
			respondError(c, err)
			return
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		c.JSON(http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"})
	}
}

// RefreshHandler exchanges a valid, unrevoked refresh token for a new access token
func RefreshHandler(users *service.UserService, blacklist *service.BlacklistService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		claims, err := utils.ParseJWT(req.RefreshToken, utils.RefreshToken, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
			return
		}
		revoked, err := blacklist.IsRevoked(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token has been revoked"})
			return
		}
		// The account may have been deleted or its password reset since the token was issued
		user, err := users.Find(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
				return
			}
			respondError(c, err)
			return
		}
		if claims.Version != user.TokenVersion {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token no longer valid"})
			return
		}
		access, err := utils.GenerateJWT(user.ID, user.TokenVersion, utils.AccessToken, cfg.JWTSecret, cfg.AccessTokenTTL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, TokenResponse{AccessToken: access, TokenType: "bearer"})
	}
}

// LogoutHandler blacklists the current access token and, when given, the refresh token
func LogoutHandler(blacklist *service.BlacklistService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req LogoutRequest // The body is optional
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		ctx := c.Request.Context()
		if req.RefreshToken != "" {
			claims, err := utils.ParseJWT(req.RefreshToken, utils.RefreshToken, cfg.JWTSecret)
			if err != nil || claims.UserID != userID {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
				return
			}
			if err := blacklist.Revoke(ctx, req.RefreshToken, claims.ExpiresAt.Time); err != nil {
				respondError(c, err)
				return
			}
		}
		token := c.GetString(middleware.TokenKey)            // Current access token
		expiresAt := c.GetTime(middleware.TokenExpiresAtKey) // Its expiry
		if err := blacklist.Revoke(ctx, token, expiresAt); err != nil {
			respondError(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"user_id":         userID,                 // User logging out
			"refresh_revoked": req.RefreshToken != "", // Whether the refresh token was revoked too
			"timestamp":       time.Now().Format(time.RFC3339),
		}).Info("User logged out")
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}

// MeHandler returns the current user with contacts and phones
func MeHandler(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		user, err := users.Profile(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// RecoveryQuestionsHandler lists the questions a user can answer to reset a password
func RecoveryQuestionsHandler(qas *service.SecurityQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecoveryQuestionsRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		list, err := qas.Questions(c.Request.Context(), req.Username)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := make([]RecoveryQuestion, len(list)) // Strip owner and timestamps
		for i, qa := range list {
			resp[i] = RecoveryQuestion{ID: qa.ID, Question: qa.Question}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RecoverHandler resets a password after a correct security answer
func RecoverHandler(qas *service.SecurityQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RecoverRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		err := qas.Recover(c.Request.Context(), req.Username, req.QuestionID, req.Answer, req.NewPassword)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Recovery failed"})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
	}
}
