package api

import (
	"net/http" // HTTP status codes

	"contact_system/internal/service" // Business logic

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Identifiers
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Structured logging
)

// PhoneRequest is the create/update payload; absent fields keep their value on update
type PhoneRequest struct {
	Number     *string    `json:"number"`      // Phone number
	NumberType *string    `json:"number_type"` // Free-form label such as mobile or work
	ContactID  *uuid.UUID `json:"contact_id"`  // Owning contact
}

// ListPhonesHandler lists the caller's phones, optionally for one contact
func ListPhonesHandler(phones *service.PhoneService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var contactID *uuid.UUID // Optional contact filter
		if raw := c.Query("contact_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":  "Validation failed",
					"fields": map[string]string{"contact_id": "contact_id must be a UUID"},
				})
				return
			}
			contactID = &id
		}
		list, err := phones.List(c.Request.Context(), userID, contactID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetPhoneHandler returns one phone of an owned contact
func GetPhoneHandler(phones *service.PhoneService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		phone, err := phones.Get(c.Request.Context(), userID, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, phone)
	}
}

// CreatePhoneHandler adds a phone to an owned contact
func CreatePhoneHandler(phones *service.PhoneService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		var req PhoneRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		if req.ContactID == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "Validation failed",
				"fields": map[string]string{"contact_id": "contact_id is required"},
			})
			return
		}
		in := service.PhoneInput{NumberType: req.NumberType}
		if req.Number != nil {
			in.Number = *req.Number
		}
		phone, err := phones.Create(c.Request.Context(), userID, *req.ContactID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(c.Request.Context(), rdb, userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "phone_id": phone.ID, "contact_id": phone.ContactID}).Info("Phone created")
		c.JSON(http.StatusCreated, phone)
	}
}

// UpdatePhoneHandler changes a phone and optionally moves it to another owned contact
func UpdatePhoneHandler(phones *service.PhoneService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var req PhoneRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		ctx := c.Request.Context()
		patch := service.PhonePatch{Number: req.Number, NumberType: req.NumberType, ContactID: req.ContactID}
		phone, err := phones.Patch(ctx, userID, id, patch) // Merge happens in the writing transaction
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(ctx, rdb, userID)
		c.JSON(http.StatusOK, phone)
	}
}

// DeletePhoneHandler removes a phone of an owned contact
func DeletePhoneHandler(phones *service.PhoneService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := phones.Delete(c.Request.Context(), userID, id); err != nil {
			respondError(c, err)
			return
		}
		invalidateContacts(c.Request.Context(), rdb, userID)
		c.JSON(http.StatusOK, gin.H{"message": "Phone deleted successfully"})
	}
}
