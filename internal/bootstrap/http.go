package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/config"
	httpx "github.com/tejinder0007/real-estate-frontend/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *zap.Logger
}

// NewHTTPHandler builds the portal router from the wired services.
func NewHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	compression := 0
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", zap.Int("level", appCfg.HTTP.CompressionLevel))
		compression = appCfg.HTTP.CompressionLevel
	}

	var csrf *httpx.CSRFConfig
	if appCfg.HTTP.CSRFEnabled {
		csrf = &httpx.CSRFConfig{}
	}

	svc := cfg.Services
	return httpx.NewRouter(httpx.RouterServices{
		Sessions:         svc.Sessions,
		Auth:             svc.Auth,
		Catalog:          svc.Catalog,
		Bookings:         svc.Bookings,
		RateLimiter:      svc.RateLimiter,
		Metrics:          svc.Metrics,
		MetricsHandler:   svc.MetricsHandler,
		MetricsPath:      appCfg.Observability.Metrics.Path,
		CSRF:             csrf,
		CookieDomain:     appCfg.HTTP.CookieDomain,
		SessionTTL:       appCfg.Session.TTL,
		ResolveWait:      appCfg.Session.ResolveWait,
		CompressionLevel: compression,
		Logger:           logger,
	})
}

func newServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// serve runs the server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}
