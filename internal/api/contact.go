package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Cache lifetime

	"contact_system/internal/domain"  // Domain models
	"contact_system/internal/service" // Business logic
	"contact_system/internal/utils"   // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Identifiers
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// Pagination limits for contact listings
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ContactRequest is the create/update payload. On update, absent fields keep their value
// and an empty string clears an optional field.
type ContactRequest struct {
	Name    *string `json:"name"`    // Display name
	Email   *string `json:"email"`   // Optional email
	Address *string `json:"address"` // Optional address
	Notes   *string `json:"notes"`   // Optional notes
}

// patch converts the request into a service-level partial update
func (r ContactRequest) patch() service.ContactPatch {
	return service.ContactPatch{Name: r.Name, Email: r.Email, Address: r.Address, Notes: r.Notes}
}

// invalidateContacts moves the owner to a new cache generation after a write
func invalidateContacts(ctx context.Context, rdb *redis.Client, owner uuid.UUID) {
	if err := utils.BumpGeneration(ctx, rdb, utils.ContactsGenerationKey(owner)); err != nil {
		logrus.WithFields(logrus.Fields{"user_id": owner, "error": err.Error()}).Warn("Contact cache invalidation failed")
	}
}

// parsePage reads page and page_size. Without either, the full list is requested.
func parsePage(c *gin.Context) (service.Page, bool) {
	p, ps := c.Query("page"), c.Query("page_size")
	if p == "" && ps == "" {
		return service.Page{}, true
	}
	page := service.Page{Page: 1, Size: defaultPageSize} // Defaults when only one is given
	fields := map[string]string{}
	if p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page.Page = v
		} else {
			fields["page"] = "page must be a positive integer"
		}
	}
	if ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= maxPageSize {
			page.Size = v
		} else {
			fields["page_size"] = "page_size must be between 1 and " + strconv.Itoa(maxPageSize)
		}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "fields": fields})
		return service.Page{}, false
	}
	return page, true
}

// ListContactsHandler returns the caller's contacts with phones. Full listings are cached in Redis.
func ListContactsHandler(contacts *service.ContactService, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		page, ok := parsePage(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		useCache := page.Size == 0 // Only full listings are cached
		// The generation is read before the database so a write landing mid-request bumps
		// readers past whatever this request stores.
		gen, err := utils.GetGeneration(ctx, rdb, utils.ContactsGenerationKey(userID))
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Contact cache generation read failed")
			useCache = false
		}
		cacheKey := utils.ContactsCacheKey(userID, gen) // Cache key for the full list at this generation
		if useCache {
			var cached []domain.Contact // Try to get cached response
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				c.Header("X-Total-Count", strconv.Itoa(len(cached)))
				c.Header("X-Cache", "HIT")
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		list, total, err := contacts.List(ctx, userID, page)
		if err != nil {
			respondError(c, err)
			return
		}
		if useCache {
			// Cache the response for future requests
			if err := utils.SetCache(ctx, rdb, cacheKey, list, ttl); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Warn("Contact cache write failed")
			}
		}
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
		c.JSON(http.StatusOK, list)
	}
}

// GetContactHandler returns one owned contact
func GetContactHandler(contacts *service.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		contact, err := contacts.Get(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contact)
	}
}

// CreateContactHandler adds a contact for the caller
func CreateContactHandler(contacts *service.ContactService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req ContactRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		contact, err := contacts.Create(c.Request.Context(), userID, req.patch().Apply(service.ContactInput{}))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(c.Request.Context(), rdb, userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "contact_id": contact.ID}).Info("Contact created")
		c.JSON(http.StatusCreated, contact)
	}
}

// UpdateContactHandler changes an owned contact
func UpdateContactHandler(contacts *service.ContactService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var req ContactRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		contact, err := contacts.Patch(ctx, userID, id, req.patch()) // Merge happens in the writing transaction
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(ctx, rdb, userID)
		c.JSON(http.StatusOK, contact)
	}
}

// DeleteContactHandler removes an owned contact and its phones
func DeleteContactHandler(contacts *service.ContactService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := contacts.Delete(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(c.Request.Context(), rdb, userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "contact_id": id}).Info("Contact deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Contact deleted successfully"})
	}
}
