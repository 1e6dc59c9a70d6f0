package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/models"
)

// ProcessResult is what a successful webhook run reports back.
type ProcessResult struct {
	ContactID           string
	CustomFieldsCreated int
	LocationID          string
}

// ContactService runs the full webhook pipeline: resolve tokens and
// location, reconcile custom fields, assemble and upsert the contact.
type ContactService struct {
	api    client.ContactAPI
	tokens *TokenService
	fields *FieldService
}

func NewContactService(api client.ContactAPI, tokens *TokenService, fields *FieldService) *ContactService {
	return &ContactService{
		api:    api,
		tokens: tokens,
		fields: fields,
	}
}

func (s *ContactService) ProcessWebhook(payload *models.Payload) (*ProcessResult, error) {
	companyID, err := s.tokens.ActiveCompanyID()
	if err != nil {
		logrus.Error("No active company token found")
		return nil, err
	}

	accessToken, err := s.tokens.ValidAccessToken(companyID)
	if err != nil {
		logrus.WithField("company_id", companyID).Error("Failed to get valid access token")
		return nil, err
	}

	businessEmail := payload.GetString("Business Email")
	if businessEmail == "" {
		logrus.Error("No business email found in webhook payload")
		return nil, ErrMissingBusinessEmail
	}

	locationID, err := s.api.SearchLocationID(accessToken, businessEmail)
	if err != nil || locationID == "" {
		logrus.WithFields(logrus.Fields{
			"business_email": businessEmail,
		}).Error("Failed to fetch location ID")
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, err)
		}
		return nil, ErrLocationNotFound
	}

	locationToken, err := s.api.LocationToken(companyID, locationID, accessToken)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"company_id":  companyID,
			"location_id": locationID,
		}).Error("Failed to get location access token")
		return nil, fmt.Errorf("%w: %s", ErrLocationTokenFailed, err)
	}

	logrus.WithField("location_id", locationID).Info("Tokens obtained successfully")

	fieldsResult, err := s.fields.Process(payload, locationToken, locationID)
	if err != nil {
		return nil, err
	}

	contact := BuildContact(payload, fieldsResult)

	logrus.WithFields(logrus.Fields{
		"email":                contact.Email,
		"total_custom_fields":  len(contact.CustomFields),
		"newly_created_fields": fieldsResult.CreatedCount(),
	}).Info("Contact data prepared")

	result, err := s.api.UpsertContact(locationID, locationToken, contact)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"location_id": locationID,
			"email":       contact.Email,
		}).Error("Failed to upsert contact")
		return nil, fmt.Errorf("%w: %s", ErrContactUpsertFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"contact_id":            result.Contact.ID,
		"email":                 contact.Email,
		"custom_fields_created": fieldsResult.CreatedCount(),
	}).Info("Webhook processed successfully")

	return &ProcessResult{
		ContactID:           result.Contact.ID,
		CustomFieldsCreated: fieldsResult.CreatedCount(),
		LocationID:          locationID,
	}, nil
}
