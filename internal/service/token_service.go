package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/models"
	"github.com/TWRT/ghl-connector/internal/repository"
)

// expiryBuffer is subtracted from expires_at so a token is refreshed
// before it actually lapses mid-request.
const expiryBuffer = 5 * time.Minute

const defaultExpiresIn = 3600

// TokenService hands out valid company-level access tokens, refreshing
// them through the OAuth endpoint when they are near expiry. Refreshes for
// the same company are serialized so one rotated refresh token is not
// burned twice.
type TokenService struct {
	tokens *repository.CompanyTokenRepository
	oauth  client.OAuthAPI
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewTokenService(tokens *repository.CompanyTokenRepository, oauth client.OAuthAPI) *TokenService {
	return &TokenService{
		tokens: tokens,
		oauth:  oauth,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *TokenService) companyLock(companyID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[companyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[companyID] = lock
	}
	return lock
}

// ActiveCompanyID returns the company id of the single active credential.
func (s *TokenService) ActiveCompanyID() (string, error) {
	token, err := s.tokens.FindActive()
	if errors.Is(err, repository.ErrTokenNotFound) {
		return "", ErrNoActiveCredential
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoActiveCredential, err)
	}
	return token.CompanyID, nil
}

// ValidAccessToken returns a usable access token for the company,
// refreshing first when the stored one is expired. A credential with no
// expiry is treated as valid indefinitely.
func (s *TokenService) ValidAccessToken(companyID string) (string, error) {
	token, err := s.tokens.FindByCompanyID(companyID)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return "", ErrNoActiveCredential
	}
	if err != nil {
		return "", err
	}

	if !s.isExpired(token) {
		return token.AccessToken, nil
	}

	logrus.WithField("company_id", companyID).Info("Token expired, attempting refresh")

	refreshed, err := s.refresh(companyID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to refresh expired token")
		return "", fmt.Errorf("%w: %s", ErrTokenRefreshFailed, err)
	}
	return refreshed, nil
}

func (s *TokenService) isExpired(token repository.CompanyToken) bool {
	if token.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(token.ExpiresAt.Add(-expiryBuffer))
}

// refresh exchanges the stored refresh token and overwrites the credential
// row in place. Stored state is untouched on failure.
func (s *TokenService) refresh(companyID string) (string, error) {
	lock := s.companyLock(companyID)
	lock.Lock()
	defer lock.Unlock()

	token, err := s.tokens.FindByCompanyID(companyID)
	if err != nil {
		return "", err
	}

	// another request may have refreshed while we waited on the lock
	if !s.isExpired(token) {
		return token.AccessToken, nil
	}

	if token.RefreshToken == "" {
		return "", fmt.Errorf("no refresh token stored for company %s", companyID)
	}

	response, err := s.oauth.RefreshToken(token.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := s.StoreGrant(companyID, response); err != nil {
		return "", err
	}

	logrus.WithField("company_id", companyID).Info("Token refreshed successfully")
	return response.AccessToken, nil
}

// StoreGrant persists a token grant for the company, falling back to the
// previously stored refresh token when the server omits one.
func (s *TokenService) StoreGrant(companyID string, grant *models.TokenResponse) error {
	refreshToken := grant.RefreshToken
	if refreshToken == "" {
		if existing, err := s.tokens.FindByCompanyID(companyID); err == nil {
			refreshToken = existing.RefreshToken
		}
	}

	expiresIn := grant.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}
	expiresAt := s.now().Add(time.Duration(expiresIn) * time.Second)

	tokenType := grant.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return s.tokens.Upsert(&repository.CompanyToken{
		CompanyID:    companyID,
		AccessToken:  grant.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    &expiresAt,
		TokenType:    tokenType,
		Active:       true,
	})
}

// Activate marks the company credential active (app install).
func (s *TokenService) Activate(companyID string) error {
	if err := s.tokens.SetActive(companyID, true); err != nil {
		return fmt.Errorf("activate token for company %s: %w", companyID, err)
	}
	logrus.WithField("company_id", companyID).Info("Token activated")
	return nil
}

// Deactivate marks the company credential inactive (app uninstall). The
// row is kept.
func (s *TokenService) Deactivate(companyID string) error {
	if err := s.tokens.SetActive(companyID, false); err != nil {
		return fmt.Errorf("deactivate token for company %s: %w", companyID, err)
	}
	logrus.WithField("company_id", companyID).Info("Token deactivated")
	return nil
}
