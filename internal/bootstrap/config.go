package bootstrap

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/config"
	"github.com/tejinder0007/real-estate-frontend/internal/observability"
)

// InitLogger builds the process logger from the observability settings.
func InitLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.IsDev)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}
