package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes
	"reflect"  // Struct tag lookup for binding errors
	"strings"  // String manipulation

	"contact_system/internal/domain"     // Domain models
	"contact_system/internal/middleware" // Context keys
	"contact_system/internal/service"    // Service errors

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Request binding
	"github.com/go-playground/validator/v10" // Binding rule errors
	"github.com/google/uuid"                 // Identifiers
	"github.com/sirupsen/logrus"             // Structured logging
)

func init() {
	// Report binding errors under their JSON field names
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// statusFor maps service errors to HTTP status codes
var statusFor = []struct {
	err    error
	status int
}{
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrDecode, http.StatusBadRequest},
}

// respondError writes the JSON error body for err
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": verr.Fields})
		return
	}
	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"error": err.Error()})
			return
		}
	}
	// Anything else is a server fault; log it and hide the details
	logrus.WithFields(logrus.Fields{
		"method": c.Request.Method, // HTTP method
		"path":   c.FullPath(),     // Route pattern
		"error":  err.Error(),      // Error message
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// bindJSON binds the request body. Malformed JSON is a 400; broken binding rules a 422.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				fields[fe.Field()] = fe.Field() + " is required"
			} else {
				fields[fe.Field()] = fe.Field() + " is invalid"
			}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": fields})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	return false
}

// currentUser returns the account loaded by the identity middleware
func currentUser(c *gin.Context) (*domain.User, bool) {
	if v, ok := c.Get(middleware.UserKey); ok {
		if user, ok := v.(*domain.User); ok && user != nil {
			return user, true
		}
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	return nil, false
}

// currentUserID returns the id of the loaded account
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	user, ok := currentUser(c)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

// parseID reads a UUID path parameter
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"fields": map[string]string{name: name + " must be a UUID"},
		})
		return uuid.Nil, false
	}
	return id, true
}
