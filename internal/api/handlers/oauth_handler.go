package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/client"
	"github.com/TWRT/ghl-connector/internal/config"
	"github.com/TWRT/ghl-connector/internal/service"
)

// OAuthHandler drives the marketplace install flow: redirect to the
// chooselocation page, then exchange the returned code for a company
// credential.
type OAuthHandler struct {
	cfg    *config.Config
	oauth  client.OAuthAPI
	tokens *service.TokenService
}

func NewOAuthHandler(cfg *config.Config, oauth client.OAuthAPI, tokens *service.TokenService) *OAuthHandler {
	return &OAuthHandler{cfg: cfg, oauth: oauth, tokens: tokens}
}

func (h *OAuthHandler) Initiate(c *gin.Context) {
	target := h.cfg.GHLMarketplaceURL + "/oauth/chooselocation" +
		"?response_type=code" +
		"&client_id=" + url.QueryEscape(h.cfg.GHLClientID) +
		"&redirect_uri=" + url.QueryEscape(h.cfg.GHLRedirectURI) +
		"&scope=" + url.QueryEscape(h.cfg.GHLScopes) +
		"&user_type=Company"

	c.Redirect(http.StatusFound, target)
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		logrus.Error("OAuth callback without authorization code")
		c.Redirect(http.StatusFound, h.cfg.GHLAppURL)
		return
	}

	grant, err := h.oauth.ExchangeCode(code)
	if err != nil {
		logrus.WithField("error", err.Error()).Error("OAuth token exchange failed")
		c.Redirect(http.StatusFound, h.cfg.GHLAppURL)
		return
	}

	companyID := grant.CompanyID
	if companyID == "" {
		companyID = "default"
	}

	if err := h.tokens.StoreGrant(companyID, grant); err != nil {
		logrus.WithFields(logrus.Fields{
			"company_id": companyID,
			"error":      err.Error(),
		}).Error("Failed to save token")
		c.Redirect(http.StatusFound, h.cfg.GHLAppURL)
		return
	}

	logrus.WithField("company_id", companyID).Info("Token saved successfully")
	c.Redirect(http.StatusFound, h.cfg.GHLAppURL)
}
