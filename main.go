package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/TWRT/ghl-connector/internal/api"
	"github.com/TWRT/ghl-connector/internal/config"
	"github.com/TWRT/ghl-connector/internal/logger"
	"github.com/TWRT/ghl-connector/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.LogFile)

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	router := api.SetupRouter(cfg, db)

	// generous timeouts: batched field creation can hold a webhook request
	// open for minutes
	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	logrus.WithField("address", cfg.Address).Info("Starting GHL connector")
	if err := server.ListenAndServe(); err != nil {
		logrus.Fatalf("Server stopped: %v", err)
	}
}
