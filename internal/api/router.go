package api

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/TWRT/ghl-connector/internal/api/handlers"
	"github.com/TWRT/ghl-connector/internal/cache"
	"github.com/TWRT/ghl-connector/internal/client/ghl"
	"github.com/TWRT/ghl-connector/internal/config"
	"github.com/TWRT/ghl-connector/internal/repository"
	"github.com/TWRT/ghl-connector/internal/service"
)

func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	ghlClient := ghl.NewGHLClient(cfg.GHLAPIBaseURL, cfg.GHLAPIVersion)
	oauthClient := ghl.NewOAuthClient(cfg.GHLAPIBaseURL, cfg.GHLClientID, cfg.GHLClientSecret, cfg.GHLRedirectURI)

	tokenRepo := repository.NewCompanyTokenRepository(db)
	schemaCache := cache.NewMemory()

	tokenService := service.NewTokenService(tokenRepo, oauthClient)
	fieldService := service.NewFieldService(ghlClient, schemaCache, cfg.SchemaCacheTTL, cfg.FieldBatchSize, cfg.FieldBatchDelay)
	contactService := service.NewContactService(ghlClient, tokenService, fieldService)

	webhookHandler := handlers.NewWebhookHandler(contactService)
	lifecycleHandler := handlers.NewLifecycleHandler(tokenService)
	oauthHandler := handlers.NewOAuthHandler(cfg, oauthClient, tokenService)

	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/webhook", webhookHandler.HandleContact)
	router.POST("/webhook", lifecycleHandler.HandleLifecycle)

	router.GET("/oauth/initiate", oauthHandler.Initiate)
	router.GET("/oauth/callback", oauthHandler.Callback)

	return router
}
