package ghl

import (
	"encoding/json"
	"strings"
)

type locationSearchResponse struct {
	Locations []location `json:"locations"`
}

type location struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
}

type locationTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	LocationID  string `json:"locationId"`
}

// apiError is GHL's error envelope. Message is sometimes a string and
// sometimes an array of strings.
type apiError struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
}

func (e apiError) message() string {
	if len(e.Message) == 0 {
		return e.Error
	}
	var s string
	if err := json.Unmarshal(e.Message, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(e.Message, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(e.Message)
}

// createFieldRequest carries the defaults GHL expects alongside name and
// dataType; the file-upload attributes are required even for TEXT fields.
type createFieldRequest struct {
	Name               string              `json:"name"`
	DataType           string              `json:"dataType"`
	Placeholder        string              `json:"placeholder"`
	AcceptedFormat     []string            `json:"acceptedFormat"`
	IsMultipleFile     bool                `json:"isMultipleFile"`
	MaxNumberOfFiles   int                 `json:"maxNumberOfFiles"`
	TextBoxListOptions []textBoxListOption `json:"textBoxListOptions"`
	Position           int                 `json:"position"`
	Model              string              `json:"model"`
}

type textBoxListOption struct {
	Label        string `json:"label"`
	PrefillValue string `json:"prefillValue"`
}
