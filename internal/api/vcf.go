package api

import (
	"errors"   // Error matching
	"io"       // Reading the upload
	"net/http" // HTTP status codes

	"contact_system/internal/service" // Business logic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Identifiers
	"github.com/redis/go-redis/v9" // Redis client
)

// multipartOverhead is allowed on top of the file size for boundaries and other form fields
const multipartOverhead = 1 << 20

// UploadVCFHandler imports a multipart vCard file into the caller's contacts
func UploadVCFHandler(imports *service.ImportService, rdb *redis.Client, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead) // Cap the whole body
		header, err := c.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
				return
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Validation failed",
				"fields": map[string]string{"file": "file is required"},
			})
			return
		}
		// Only vCard files are accepted
		if !service.AllowedUploadName(header.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only .vcf or .vcard files are accepted"})
			return
		}
		if header.Size > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		// A user_id field, when sent, must name the caller
		if raw := c.PostForm("user_id"); raw != "" {
			target, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":  "Validation failed",
					"fields": map[string]string{"user_id": "user_id must be a UUID"},
				})
				return
			}
			if target != userID {
				respondError(c, service.ErrForbidden)
				return
			}
		}
		f, err := header.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(io.LimitReader(f, maxBytes)) // Read the whole file before importing
		if err != nil {
			respondError(c, err)
			return
		}
		report, err := imports.Import(c.Request.Context(), userID, raw)
		if err != nil {
			respondError(c, err)
			return
		}
		if report.Created > 0 {
			invalidateContacts(c.Request.Context(), rdb, userID)
		}
		c.JSON(http.StatusOK, gin.H{
			"created":  report.Created,  // Contacts created
			"count":    report.Created,  // Same value under the name older clients read
			"skipped":  report.Skipped,  // Records skipped
			"warnings": report.Warnings, // At most ten messages
		})
	}
}
