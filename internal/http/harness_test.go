package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tejinder0007/real-estate-frontend/internal/adapters/razorpay"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
	"github.com/tejinder0007/real-estate-frontend/internal/mocks"
	mockauth "github.com/tejinder0007/real-estate-frontend/internal/mocks/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// portal wires real services over in-memory and gomock backends.
type portal struct {
	t       *testing.T
	handler http.Handler

	store    *mockauth.MemorySessionStore
	authAPI  *mockauth.MockAuthAPI
	booking  *mocks.MockBookingAPI
	catalog  *mocks.MockCatalogAPI
	admin    *mocks.MockAdminAPI
	gateway  *razorpay.Gateway
	slots    *mocks.MemoryAttemptSlots
	registry *service.SessionRegistry
}

type portalOption func(*RouterServices)

func newPortal(t *testing.T, opts ...portalOption) *portal {
	t.Helper()
	ctrl := gomock.NewController(t)
	p := &portal{
		t:       t,
		store:   mockauth.NewMemorySessionStore(),
		authAPI: mockauth.NewMockAuthAPI(),
		booking: mocks.NewMockBookingAPI(ctrl),
		catalog: mocks.NewMockCatalogAPI(ctrl),
		admin:   mocks.NewMockAdminAPI(ctrl),
		gateway: razorpay.NewGateway(razorpay.GatewayOptions{}),
		slots:   mocks.NewMemoryAttemptSlots(),
	}
	p.catalog.EXPECT().GetProperty(gomock.Any(), gomock.Any()).
		Return(model.Property{ID: "P123", Location: "Sector 17", Price: 1_500_000}, nil).AnyTimes()

	p.registry = service.NewSessionRegistry(service.SessionRegistryOptions{Store: p.store})
	coordinator := service.NewBookingCoordinator(service.BookingCoordinatorOptions{
		Ports: service.BookingPorts{
			Booking: p.booking,
			Catalog: p.catalog,
			Gateway: p.gateway,
			Slots:   p.slots,
		},
		Config: service.BookingConfig{DisplayName: "Teji Property Dealer"},
	})
	services := RouterServices{
		Sessions: p.registry,
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Backend:     p.authAPI,
			Registry:    p.registry,
			Persistence: service.SessionPersistence{Store: p.store, TTL: time.Hour},
		}),
		Catalog:     service.NewCatalogService(service.CatalogServiceOptions{Catalog: p.catalog, Admin: p.admin}),
		Bookings:    coordinator,
		SessionTTL:  time.Hour,
		ResolveWait: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&services)
	}
	p.handler = NewRouter(services)
	return p
}

type request struct {
	method string
	path   string
	body   any
	cookie *http.Cookie
	// browser sends Accept: text/html; otherwise Accept: application/json.
	browser bool
	form    string
}

func (p *portal) do(req request) *httptest.ResponseRecorder {
	p.t.Helper()
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		require.NoError(p.t, err)
		body = bytes.NewReader(b)
	} else if req.form != "" {
		body = strings.NewReader(req.form)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	switch {
	case req.body != nil:
		r.Header.Set("Content-Type", "application/json")
	case req.form != "":
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.browser {
		r.Header.Set("Accept", "text/html,application/xhtml+xml")
	} else {
		r.Header.Set("Accept", "application/json")
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, r)
	return rec
}

// login authenticates through the portal and returns the session cookie.
func (p *portal) login(email string) *http.Cookie {
	p.t.Helper()
	rec := p.do(request{method: http.MethodPost, path: "/login", body: map[string]string{
		"email": email, "password": "secret",
	}})
	require.Equal(p.t, http.StatusOK, rec.Code, rec.Body.String())
	cookie := sessionCookie(rec)
	require.NotNil(p.t, cookie)
	return cookie
}

// sessionCookie returns the last session cookie written by the response.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			found = c
		}
	}
	return found
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
