package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/config"
	"github.com/tejinder0007/real-estate-frontend/internal/migrate"
)

const ledgerPingTimeout = 5 * time.Second

// OpenLedger connects the booking ledger database and applies its schema.
//
// A disabled ledger yields nil. So does a ledger that stays unreachable after
// cfg.ConnectAttempts, unless cfg.Required is set: bookings then run without a
// durable record and reconciliation reads in-process attempts.
func OpenLedger(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (*sql.DB, error) {
	if !cfg.Enabled {
		return nil, nil //nolint:nilnil // a disabled ledger is not an error
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("component", "booking_ledger"),
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
	)

	db, err := connectLedger(ctx, cfg, logger)
	if err == nil && cfg.RunMigrationsOnStart {
		if migrateErr := migrate.Run(ctx, db, logger); migrateErr != nil {
			err = errors.Join(fmt.Errorf("apply ledger schema: %w", migrateErr), db.Close())
		}
	}
	if err != nil {
		if cfg.Required {
			return nil, err
		}
		logger.Warn("booking ledger unavailable, continuing without it", zap.Error(err))
		return nil, nil //nolint:nilnil // the ledger is optional
	}

	logger.Info("booking ledger ready", zap.Bool("migrated", cfg.RunMigrationsOnStart))
	return db, nil
}

func connectLedger(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", ledgerDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(max(cfg.MaxOpenConns/4, 1))
	db.SetConnMaxLifetime(30 * time.Minute)

	backoff := cfg.ConnectBackoff
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, ledgerPingTimeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		if attempt >= cfg.ConnectAttempts {
			break
		}
		logger.Warn("ledger ping failed",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, errors.Join(ctx.Err(), db.Close())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, errors.Join(fmt.Errorf("ping ledger database: %w", err), db.Close())
}

// ledgerDSN builds the connection URL; credentials are escaped.
func ledgerDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	q.Set("application_name", "property-portal")
	u.RawQuery = q.Encode()
	return u.String()
}
