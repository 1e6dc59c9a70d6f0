package ghl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TWRT/ghl-connector/internal/models"
)

// OAuthClient talks to the GHL OAuth token endpoint for authorization_code
// and refresh_token grants.
type OAuthClient struct {
	baseUrl      string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

func NewOAuthClient(baseUrl, clientID, clientSecret, redirectURI string) *OAuthClient {
	return &OAuthClient{
		baseUrl:      strings.TrimRight(baseUrl, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *OAuthClient) grant(form url.Values) (*models.TokenResponse, error) {
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequest(http.MethodPost, c.baseUrl+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ghlErr apiError
		if err := json.Unmarshal(body, &ghlErr); err == nil {
			if msg := ghlErr.message(); msg != "" {
				return nil, fmt.Errorf("token grant failed (status %d): %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("token grant failed with status %d", resp.StatusCode)
	}

	var token models.TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}
	return &token, nil
}

func (c *OAuthClient) ExchangeCode(code string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	return c.grant(form)
}

func (c *OAuthClient) RefreshToken(refreshToken string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("user_type", "Company")
	return c.grant(form)
}
