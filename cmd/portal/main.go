package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/config"
	"github.com/tejinder0007/real-estate-frontend/internal/bootstrap"
)

func main() {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	logger, err := bootstrap.InitLogger(&cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
	defer func() { _ = logger.Sync() }()

	if err = run(context.Background(), &cfg, logger); err != nil {
		logger.Error("fatal error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1) //nolint:forbidigo,gocritic // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	logStartupInfo(logger, cfg)

	db, redisClient, err := initInfrastructure(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("close database failed", zap.Error(cerr))
			}
		}()
	}
	defer func() {
		if cerr := redisClient.Close(); cerr != nil {
			logger.Error("close redis failed", zap.Error(cerr))
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.RunServicesWithShutdown(ctx, &bootstrap.ServiceOrchestrationConfig{
		Config:   cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(logger *zap.Logger, cfg *config.AppConfig) {
	logger.Info("starting property portal",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.Bool("ledger_enabled", cfg.Postgres.Enabled),
		zap.Bool("dev", cfg.IsDev),
	)
}

// initInfrastructure connects the booking ledger, which is optional, and
// Redis, which is not.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *zap.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	db, err := bootstrap.OpenLedger(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open booking ledger: %w", err)
	}

	redisClient, err := bootstrap.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		if db != nil {
			err = errors.Join(err, db.Close())
		}
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return db, redisClient, nil
}
