package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tejinder0007/real-estate-frontend/config"
)

// ServiceOrchestrationConfig contains everything RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *zap.Logger
}

// RunServicesWithShutdown serves HTTP and runs the background sweepers until
// SIGINT/SIGTERM or ctx cancellation, then drains in-flight verifications.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := cfg.Services
	handler := NewHTTPHandler(&HTTPServerConfig{Config: cfg.Config, Services: svc, Logger: logger})
	server := newServer(cfg.Config.HTTP.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		svc.Sessions.Run(gctx)
		return nil
	})
	g.Go(func() error {
		svc.Bookings.Run(gctx)
		return nil
	})
	g.Go(func() error {
		svc.RateLimiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return serve(gctx, server, logger)
	})

	err := g.Wait()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if waitErr := svc.Bookings.Wait(drainCtx); waitErr != nil {
		logger.Warn("booking verifications still running at shutdown", zap.Error(waitErr))
	}
	if waitErr := svc.Sessions.Wait(drainCtx); waitErr != nil {
		logger.Warn("session restores still running at shutdown", zap.Error(waitErr))
	}

	logger.Info("shutdown complete")
	return err
}
