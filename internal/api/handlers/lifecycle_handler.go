package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/service"
)

// LifecycleHandler processes marketplace lifecycle webhooks: INSTALL and
// UNINSTALL events toggle the company credential's active flag.
type LifecycleHandler struct {
	tokens *service.TokenService
}

func NewLifecycleHandler(tokens *service.TokenService) *LifecycleHandler {
	return &LifecycleHandler{tokens: tokens}
}

func (h *LifecycleHandler) HandleLifecycle(c *gin.Context) {
	payload, err := parsePayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid webhook payload: " + err.Error(),
		})
		return
	}

	eventType := payload.GetString("type")
	companyID := payload.GetString("companyId")
	locationID := payload.GetString("locationId")
	webhookID := payload.GetString("webhookId")

	if eventType == "" {
		logrus.Warn("Webhook missing type field")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Webhook type is required",
		})
		return
	}

	if companyID == "" && locationID == "" {
		logrus.Warn("Webhook missing both companyId and locationId")
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Either Company ID or Location ID is required",
		})
		return
	}

	// location-level webhooks need no processing
	if companyID == "" {
		logrus.WithFields(logrus.Fields{
			"type":        eventType,
			"location_id": locationID,
			"webhook_id":  webhookID,
		}).Info("Location-level webhook received, returning success")

		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Location webhook acknowledged",
		})
		return
	}

	switch strings.ToUpper(eventType) {
	case "INSTALL":
		logrus.WithFields(logrus.Fields{
			"company_id": companyID,
			"webhook_id": webhookID,
		}).Info("Processing INSTALL webhook")

		if err := h.tokens.Activate(companyID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to activate company token",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":    "App installed successfully",
			"company_id": companyID,
			"status":     "activated",
		})

	case "UNINSTALL":
		logrus.WithFields(logrus.Fields{
			"company_id": companyID,
			"webhook_id": webhookID,
		}).Info("Processing UNINSTALL webhook")

		if err := h.tokens.Deactivate(companyID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Failed to deactivate company token",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":    "App uninstalled successfully",
			"company_id": companyID,
			"status":     "deactivated",
		})

	default:
		logrus.WithFields(logrus.Fields{
			"type":       eventType,
			"company_id": companyID,
		}).Warn("Unknown webhook type received")

		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Unknown webhook type: " + eventType,
		})
	}
}
