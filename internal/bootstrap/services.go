package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/config"
	"github.com/tejinder0007/real-estate-frontend/internal/adapters/backend"
	"github.com/tejinder0007/real-estate-frontend/internal/adapters/jwtclaims"
	"github.com/tejinder0007/real-estate-frontend/internal/adapters/razorpay"
	redisadapter "github.com/tejinder0007/real-estate-frontend/internal/adapters/redis"
	"github.com/tejinder0007/real-estate-frontend/internal/data"
	httpx "github.com/tejinder0007/real-estate-frontend/internal/http"
	"github.com/tejinder0007/real-estate-frontend/internal/observability/metrics"
	"github.com/tejinder0007/real-estate-frontend/internal/observability/notify"
	"github.com/tejinder0007/real-estate-frontend/internal/observability/notify/slack"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// ServiceDeps contains the infrastructure shared by every service.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB // Optional: enables the booking ledger
	RedisClient redis.UniversalClient
	Logger      *zap.Logger
	// Registry receives the portal metrics; a fresh registry is created when nil.
	Registry *prometheus.Registry
}

// ServiceContainer holds the wired services.
type ServiceContainer struct {
	Sessions    *service.SessionRegistry
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Bookings    *service.BookingCoordinator
	RateLimiter *httpx.RateLimiter

	Metrics        *metrics.Collector
	MetricsHandler http.Handler
}

// NewServices builds every service from configuration. Nothing here dials out;
// connections are verified by OpenLedger and ConnectRedis beforehand.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service config is required")
	}
	if deps.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		collector      *metrics.Collector
		metricsHandler http.Handler
	)
	if cfg.Observability.Metrics.Enabled {
		reg := deps.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}
		collector = metrics.NewCollector(reg)
		metricsHandler = metrics.Handler(reg)
	}
	telemetry := func(component string) service.Telemetry {
		return service.Telemetry{Logger: logger.Named(component), Metrics: collector}
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger.Named("backend"),
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	store := redisadapter.NewSessionStore(deps.RedisClient)
	registry := service.NewSessionRegistry(service.SessionRegistryOptions{
		Store: store,
		Config: service.SessionRegistryConfig{
			IdleTTL:        cfg.Session.IdleTTL,
			RestoreTimeout: cfg.Session.RestoreTimeout,
		},
		Telemetry: telemetry("sessions"),
	})

	auth := service.NewAuthService(service.AuthServiceOptions{
		Backend:  client,
		Registry: registry,
		Persistence: service.SessionPersistence{
			Store:     store,
			Inspector: jwtclaims.NewInspector(),
			TTL:       cfg.Session.TTL,
		},
		Logger: logger.Named("auth"),
	})

	var catalogAPI ports.CatalogAPI = client
	if cfg.Backend.CatalogCacheTTL > 0 {
		catalogAPI = service.NewCatalogCache(service.CatalogCacheOptions{
			Catalog: client,
			Cache:   data.NewRedisCacheRepo(deps.RedisClient, "portal:"),
			TTL:     cfg.Backend.CatalogCacheTTL,
			Logger:  logger.Named("catalog_cache"),
		})
	}

	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		Catalog:        catalogAPI,
		Admin:          client,
		AppointmentFee: cfg.Booking.AppointmentFee,
		Logger:         logger.Named("catalog"),
	})

	bookingPorts := service.BookingPorts{
		Booking: client,
		Catalog: catalogAPI,
		Gateway: razorpay.NewGateway(razorpay.GatewayOptions{
			Image:      cfg.Booking.MerchantImage,
			ThemeColor: cfg.Booking.ThemeColor,
			Logger:     logger.Named("razorpay"),
		}),
		Slots: redisadapter.NewAttemptSlots(redisadapter.AttemptSlotsOptions{Client: deps.RedisClient}),
	}
	if deps.DB != nil {
		bookingPorts.Ledger = data.NewBookingLedgerRepo(deps.DB)
	}
	if bookingPorts.Alerts, err = newAlertSink(cfg.Observability.Notifications); err != nil {
		return nil, err
	}

	bookings := service.NewBookingCoordinator(service.BookingCoordinatorOptions{
		Ports: bookingPorts,
		Config: service.BookingConfig{
			DisplayName:      cfg.Booking.MerchantName,
			SlotTTL:          cfg.Booking.SlotTTL,
			VerifyTimeout:    cfg.Booking.VerifyTimeout,
			Retention:        cfg.Booking.AttemptRetention,
			RejectDuplicates: cfg.Booking.DuplicatePolicy == config.DuplicatePolicyReject,
		},
		Telemetry: telemetry("bookings"),
	})

	limiter := httpx.NewRateLimiter(httpx.RateLimiterConfig{
		PerMinute: cfg.Booking.RatePerMinute,
		Burst:     cfg.Booking.RateBurst,
		Logger:    logger.Named("ratelimit"),
	})

	logger.Info("services initialized",
		zap.Bool("ledger", deps.DB != nil),
		zap.Bool("alerts", bookingPorts.Alerts != nil),
		zap.Bool("metrics", collector != nil),
		zap.String("duplicate_policy", string(cfg.Booking.DuplicatePolicy)),
	)

	return &ServiceContainer{
		Sessions:       registry,
		Auth:           auth,
		Catalog:        catalog,
		Bookings:       bookings,
		RateLimiter:    limiter,
		Metrics:        collector,
		MetricsHandler: metricsHandler,
	}, nil
}

//nolint:ireturn // callers only need the Sink behaviour
func newAlertSink(cfg config.ObservabilityNotificationsConfig) (notify.Sink, error) {
	if !cfg.Enabled || !cfg.Slack.Enabled {
		return nil, nil //nolint:nilnil // alerts are optional
	}
	client, err := slack.NewClient(slack.Config{
		WebhookURL: cfg.Slack.WebhookURL,
		Channel:    cfg.Slack.Channel,
		Username:   cfg.Slack.Username,
		Timeout:    cfg.Timeout,
		RetryLimit: cfg.RetryLimit,
		AdminURL:   cfg.Slack.AdminURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create slack client: %w", err)
	}
	return client, nil
}
