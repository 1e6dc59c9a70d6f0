package client

import (
	"errors"

	"github.com/TWRT/ghl-connector/internal/models"
)

// ErrFieldExists marks a create rejected because the field is already
// present remotely. Callers racing the schema cache treat it as success.
var ErrFieldExists = errors.New("custom field already exists")

// ContactAPI is the CRM surface the webhook pipeline consumes.
type ContactAPI interface {
	SearchLocationID(accessToken, email string) (string, error)
	LocationToken(companyID, locationID, accessToken string) (string, error)
	ListCustomFields(locationToken, locationID string) (*models.CustomFieldList, error)
	CreateCustomField(locationToken, locationID, name, dataType string) (*models.CreatedCustomField, error)
	UpsertContact(locationID, locationToken string, contact *models.ContactUpsert) (*models.ContactResult, error)
}

// OAuthAPI issues and refreshes company-level tokens.
type OAuthAPI interface {
	ExchangeCode(code string) (*models.TokenResponse, error)
	RefreshToken(refreshToken string) (*models.TokenResponse, error)
}
