package ghl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/models"
)

type GHLClient struct {
	baseUrl    string
	version    string
	httpClient *http.Client
}

func NewGHLClient(baseUrl, version string) *GHLClient {
	return &GHLClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		version:    version,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *GHLClient) do(method, endpoint, accessToken string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request (ghl): %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Version", c.version)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ghlErr apiError
		if err := json.Unmarshal(respBody, &ghlErr); err == nil {
			if msg := ghlErr.message(); msg != "" {
				return nil, fmt.Errorf("GHL error (status %d): %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("GHL API error status %d", resp.StatusCode)
	}

	return respBody, nil
}

// SearchLocationID resolves a location by its business email. Returns ""
// without error when the search comes back empty.
func (c *GHLClient) SearchLocationID(accessToken, email string) (string, error) {
	endpoint := c.baseUrl + "/locations/search?email=" + url.QueryEscape(email)

	body, err := c.do(http.MethodGet, endpoint, accessToken, nil, "")
	if err != nil {
		return "", fmt.Errorf("search location: %w", err)
	}

	var search locationSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return "", fmt.Errorf("parse location search response: %w", err)
	}

	if len(search.Locations) == 0 {
		return "", nil
	}
	return search.Locations[0].Id, nil
}

// LocationToken exchanges the company-level token for a location-scoped one.
func (c *GHLClient) LocationToken(companyID, locationID, accessToken string) (string, error) {
	form := url.Values{}
	form.Set("companyId", companyID)
	form.Set("locationId", locationID)

	body, err := c.do(
		http.MethodPost,
		c.baseUrl+"/oauth/locationToken",
		accessToken,
		strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded",
	)
	if err != nil {
		return "", fmt.Errorf("location token exchange: %w", err)
	}

	var token locationTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("parse location token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("location token response missing access_token")
	}
	return token.AccessToken, nil
}

func (c *GHLClient) ListCustomFields(locationToken, locationID string) (*models.CustomFieldList, error) {
	endpoint := c.baseUrl + "/locations/" + locationID + "/customFields"

	body, err := c.do(http.MethodGet, endpoint, locationToken, nil, "")
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}

	var list models.CustomFieldList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse custom fields response: %w", err)
	}
	return &list, nil
}

func (c *GHLClient) CreateCustomField(locationToken, locationID, name, dataType string) (*models.CreatedCustomField, error) {
	endpoint := c.baseUrl + "/locations/" + locationID + "/customFields"

	reqBody := createFieldRequest{
		Name:             name,
		DataType:         dataType,
		Placeholder:      "Placeholder Text",
		AcceptedFormat:   []string{".pdf", ".docx", ".jpeg"},
		IsMultipleFile:   false,
		MaxNumberOfFiles: 2,
		TextBoxListOptions: []textBoxListOption{
			{Label: "First", PrefillValue: ""},
		},
		Position: 0,
		Model:    "contact",
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encode create field request: %w", err)
	}

	body, err := c.do(http.MethodPost, endpoint, locationToken, bytes.NewReader(payload), "application/json")
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil, fmt.Errorf("create field %q: %w", name, client.ErrFieldExists)
		}
		return nil, fmt.Errorf("create field %q: %w", name, err)
	}

	var created models.CreatedCustomField
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("parse create field response: %w", err)
	}
	return &created, nil
}

// UpsertContact merges locationId into the payload and posts it.
func (c *GHLClient) UpsertContact(locationID, locationToken string, contact *models.ContactUpsert) (*models.ContactResult, error) {
	upsert := *contact
	upsert.LocationID = locationID

	payload, err := json.Marshal(upsert)
	if err != nil {
		return nil, fmt.Errorf("encode contact upsert: %w", err)
	}

	body, err := c.do(http.MethodPost, c.baseUrl+"/contacts/upsert", locationToken, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}

	var result models.ContactResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse contact upsert response: %w", err)
	}
	return &result, nil
}
