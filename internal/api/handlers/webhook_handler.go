package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/models"
	"github.com/TWRT/ghl-connector/internal/service"
)

type WebhookHandler struct {
	contacts *service.ContactService
}

func NewWebhookHandler(contacts *service.ContactService) *WebhookHandler {
	return &WebhookHandler{contacts: contacts}
}

// parsePayload decodes the request body into an ordered payload, handling
// both JSON and form-encoded webhooks.
func parsePayload(c *gin.Context) (*models.Payload, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}

	contentType := c.GetHeader("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		return models.ParseForm(string(body))
	}

	payload := models.NewPayload()
	if err := payload.UnmarshalJSON(body); err != nil {
		return nil, err
	}
	return payload, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingBusinessEmail):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTokenRefreshFailed),
		errors.Is(err, service.ErrLocationTokenFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNoActiveCredential),
		errors.Is(err, service.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSchemaFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleContact runs the field-reconciliation and contact-upsert pipeline
// for one inbound marketing-form webhook.
func (h *WebhookHandler) HandleContact(c *gin.Context) {
	requestID := uuid.NewString()

	payload, err := parsePayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid webhook payload: " + err.Error(),
		})
		return
	}

	logrus.WithFields(logrus.Fields{
		"request_id":    requestID,
		"payload_count": payload.Len(),
	}).Info("Webhook received")

	result, err := h.contacts.ProcessWebhook(payload)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Webhook processing failed")

		c.JSON(statusForError(err), gin.H{
			"status":  "error",
			"message": "Failed to process webhook: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Contact and custom fields processed successfully",
		"data": gin.H{
			"contact_id":            result.ContactID,
			"custom_fields_created": result.CustomFieldsCreated,
			"location_id":           result.LocationID,
		},
	})
}
