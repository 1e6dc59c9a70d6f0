package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Address  string `env:"ADDRESS" envDefault:":8080"`
	DBPath   string `env:"DB_PATH" envDefault:"./ghl-connector.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	GHLClientID       string `env:"GHL_CLIENT_ID"`
	GHLClientSecret   string `env:"GHL_CLIENT_SECRET"`
	GHLRedirectURI    string `env:"GHL_REDIRECT_URI"`
	GHLScopes         string `env:"GHL_SCOPES"`
	GHLMarketplaceURL string `env:"GHL_MARKETPLACE_URL" envDefault:"https://marketplace.gohighlevel.com"`
	GHLAPIBaseURL     string `env:"GHL_API_BASE_URL" envDefault:"https://services.leadconnectorhq.com"`
	GHLAPIVersion     string `env:"GHL_API_VERSION" envDefault:"2021-07-28"`
	GHLAppURL         string `env:"GHL_APP_URL" envDefault:"https://app.gohighlevel.com/"`

	// Custom-field creation runs in batches with a pause in between so we
	// stay under the GHL rate limit. A webhook carrying many new fields can
	// therefore hold its request open for a while; RequestTimeout bounds it.
	FieldBatchSize  int           `env:"FIELD_BATCH_SIZE" envDefault:"50"`
	FieldBatchDelay time.Duration `env:"FIELD_BATCH_DELAY" envDefault:"1s"`
	SchemaCacheTTL  time.Duration `env:"SCHEMA_CACHE_TTL" envDefault:"5m"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"300s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
