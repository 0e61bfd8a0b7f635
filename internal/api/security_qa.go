package api

import (
	"net/http" // HTTP status codes

	"contact_system/internal/service" // Business logic

	"github.com/gin-gonic/gin" // Gin web framework
)

// SecurityQARequest creates a recovery question
type SecurityQARequest struct {
	Question string `json:"question" binding:"required"` // Question text
	Answer   string `json:"answer" binding:"required"`   // Answer, stored hashed
}

// ListSecurityQAsHandler returns the caller's questions
func ListSecurityQAsHandler(qas *service.SecurityQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		list, err := qas.List(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateSecurityQAHandler stores a question for the caller
func CreateSecurityQAHandler(qas *service.SecurityQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req SecurityQARequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		qa, err := qas.Create(c.Request.Context(), userID, req.Question, req.Answer)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, qa)
	}
}

// DeleteSecurityQAHandler removes one of the caller's questions
func DeleteSecurityQAHandler(qas *service.SecurityQAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := qas.Delete(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Security question deleted successfully"})
	}
}
