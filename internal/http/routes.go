package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
	"github.com/tejinder0007/real-estate-frontend/internal/observability/metrics"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Sessions    *service.SessionRegistry
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Bookings    *service.BookingCoordinator
	Presenter   service.NotificationPresenter
	RateLimiter *RateLimiter // Optional: per-user limit on booking initiation

	// Optional: Prometheus exposition
	Metrics        *metrics.Collector
	MetricsHandler http.Handler
	MetricsPath    string

	// CSRF enables double-submit protection on state-changing requests when set.
	CSRF *CSRFConfig

	CookieDomain string
	SessionTTL   time.Duration
	ResolveWait  time.Duration
	// CompressionLevel enables gzip responses when > 0.
	CompressionLevel int
	Logger           *zap.Logger
}

// NewRouter creates and configures the portal router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	jar := cookieJar{domain: services.CookieDomain}
	guard := GuardConfig{ResolveWait: services.ResolveWait, Metrics: services.Metrics}

	authHandlers := &AuthHandlers{
		Svc:         services.Auth,
		Cookies:     jar,
		SessionTTL:  services.SessionTTL,
		ResolveWait: services.ResolveWait,
		Logger:      logger,
	}
	screenHandlers := &ScreenHandlers{Catalog: services.Catalog}
	bookingHandlers := &BookingHandlers{Coordinator: services.Bookings, Presenter: services.Presenter}
	adminHandlers := &AdminHandlers{Catalog: services.Catalog, Coordinator: services.Bookings}
	routeHandlers := &RouteHandlers{Guard: guard}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Recover(logger))
	r.Use(Logging(logger))
	if services.CompressionLevel > 0 {
		r.Use(middleware.Compress(services.CompressionLevel, "application/json", "text/plain"))
	}

	r.Get("/healthz", healthHandler)
	r.Head("/healthz", healthHandler)
	if services.MetricsHandler != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, services.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(Sessions(services.Sessions, jar))
		if services.CSRF != nil {
			csrf := *services.CSRF
			if csrf.CookieDomain == "" {
				csrf.CookieDomain = services.CookieDomain
			}
			r.Use(CSRFProtection(csrf))
		}

		r.Get("/auth/status", authHandlers.Status)
		r.Post("/logout", authHandlers.Logout)
		r.Get("/api/route", routeHandlers.Decide)

		r.Group(func(r chi.Router) {
			r.Use(Guard(route.ClassPublicOnly, guard))
			r.Get(route.PathLogin, authHandlers.LoginPage)
			r.Post(route.PathLogin, authHandlers.Login)
			r.Get(route.PathRegister, authHandlers.RegisterPage)
			r.Post(route.PathRegister, authHandlers.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(Guard(route.ClassUserProtected, guard))
			r.Get(route.PathHome, screenHandlers.Listing)
			r.Get(route.PathProperty+"{id}", screenHandlers.Detail)

			r.Route("/api/bookings", func(r chi.Router) {
				if services.RateLimiter != nil {
					r.With(services.RateLimiter.Middleware()).Post("/", bookingHandlers.Initiate)
				} else {
					r.Post("/", bookingHandlers.Initiate)
				}
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", bookingHandlers.Get)
					r.Post("/gateway/{kind}", bookingHandlers.GatewayEvent)
					r.Post("/notice/dismiss", bookingHandlers.DismissNotice)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(Guard(route.ClassAdminProtected, guard))
			r.Get(route.PathAdmin, screenHandlers.Dashboard)
			r.Route("/api/admin", func(r chi.Router) {
				r.Post("/properties", adminHandlers.CreateProperty)
				r.Delete("/properties/{id}", adminHandlers.DeleteProperty)
				r.Get("/reconciliation", adminHandlers.Reconciliation)
			})
		})

		r.NotFound(Fallback(guard))
		r.MethodNotAllowed(Fallback(guard))
	})

	return r
}
