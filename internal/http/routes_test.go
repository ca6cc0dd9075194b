package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
)

func TestRouter_Healthz(t *testing.T) {
	p := newPortal(t)
	rec := p.do(request{method: http.MethodGet, path: "/healthz"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sessionCookie(rec), "health checks do not mint sessions")
}

func TestRouter_FirstVisitGetsSessionCookie(t *testing.T) {
	p := newPortal(t)

	rec := p.do(request{method: http.MethodGet, path: "/login", browser: true})
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Zero(t, cookie.MaxAge, "anonymous sessions use browser-session cookies")

	rec = p.do(request{method: http.MethodGet, path: "/login", browser: true, cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, sessionCookie(rec), "a known session is not re-issued")
}

func TestRouter_GuardDecisions(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")

	tests := []struct {
		name     string
		path     string
		cookie   *http.Cookie
		browser  bool
		status   int
		location string
	}{
		{name: "anonymous home redirects to login", path: "/", browser: true, status: http.StatusSeeOther, location: "/login"},
		{name: "anonymous admin redirects to login", path: "/admin", browser: true, status: http.StatusSeeOther, location: "/login"},
		{name: "anonymous unknown path", path: "/nowhere", browser: true, status: http.StatusSeeOther, location: "/login"},
		{name: "anonymous register renders", path: "/register", browser: true, status: http.StatusOK},
		{name: "user login redirects home", path: "/login", cookie: user, browser: true, status: http.StatusSeeOther, location: "/"},
		{name: "user admin redirects home", path: "/admin", cookie: user, browser: true, status: http.StatusSeeOther, location: "/"},
		{name: "user unknown path goes home", path: "/nowhere", cookie: user, browser: true, status: http.StatusSeeOther, location: "/"},
		{name: "user admin api is forbidden", path: "/api/admin/reconciliation", cookie: user, status: http.StatusForbidden},
		{name: "anonymous booking api is unauthorized", path: "/api/bookings/abc", status: http.StatusUnauthorized},
		{name: "unknown api path is not found", path: "/api/nowhere", cookie: user, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.do(request{method: http.MethodGet, path: tt.path, cookie: tt.cookie, browser: tt.browser})
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRouter_ResolvingSessionShowsLoading(t *testing.T) {
	p := newPortal(t, func(s *RouterServices) { s.ResolveWait = 10 * time.Millisecond })
	ident, err := domainauth.NewIdentity("u1", "u1@example.com", domainauth.RoleUser, "token-u1")
	require.NoError(t, err)
	require.NoError(t, p.store.Save(context.Background(), domainauth.NewSession("slow", ident, time.Now().Add(time.Hour))))
	p.store.GetDelay = 300 * time.Millisecond
	cookie := &http.Cookie{Name: SessionCookieName, Value: "slow"}

	rec := p.do(request{method: http.MethodGet, path: "/admin", cookie: cookie, browser: true})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "1", rec.Header().Get("Refresh"))
	assert.Equal(t, "loading", decodeBody(t, rec)["decision"])

	require.Eventually(t, func() bool {
		rec := p.do(request{method: http.MethodGet, path: "/api/route?path=/admin", cookie: cookie})
		return rec.Code == http.StatusOK && decodeBody(t, rec)["decision"] == "redirect"
	}, 2*time.Second, 50*time.Millisecond)
}

func TestRouter_RouteDecisionEndpoint(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")

	rec := p.do(request{method: http.MethodGet, path: "/api/route?path=/admin", cookie: user})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "admin_protected", body["class"])
	assert.Equal(t, "redirect", body["decision"])
	assert.Equal(t, "/", body["target"])

	rec = p.do(request{method: http.MethodGet, path: "/api/route?path=/property/P1", cookie: user})
	body = decodeBody(t, rec)
	assert.Equal(t, "user_protected", body["class"])
	assert.Equal(t, "render", body["decision"])
}

func TestRouter_LoginAndLogout(t *testing.T) {
	p := newPortal(t)

	rec := p.do(request{method: http.MethodPost, path: "/login", body: map[string]string{
		"email": "asha@example.com", "password": "wrong",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rec)["message"])

	cookie := p.login("asha@example.com")
	assert.Equal(t, int(time.Hour.Seconds()), cookie.MaxAge)

	rec = p.do(request{method: http.MethodGet, path: "/auth/status", cookie: cookie})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "asha@example.com", body["user"].(map[string]any)["email"])

	rec = p.do(request{method: http.MethodPost, path: "/logout", cookie: cookie, browser: true, form: "x=1"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Negative(t, cleared.MaxAge)

	rec = p.do(request{method: http.MethodGet, path: "/auth/status", cookie: cookie})
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])
}

func TestRouter_BrowserLoginFollowsSafeRedirect(t *testing.T) {
	p := newPortal(t)

	rec := p.do(request{
		method:  http.MethodPost,
		path:    "/login?redirect_uri=//evil.example.com",
		form:    "email=asha%40example.com&password=secret",
		browser: true,
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(rec))
}

func TestRouter_PayOnVisitBookingAndDismiss(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")
	req := booking.Request{PropertyID: "P123", Method: booking.MethodPayOnVisit}

	p.booking.EXPECT().Book(gomock.Any(), "token-asha@example.com", req).
		Return(booking.Initiation{PayOnVisit: true, AppointmentID: "A1"}, nil)

	rec := p.do(request{method: http.MethodPost, path: "/api/bookings", body: req, cookie: user})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	attempt := body["attempt"].(map[string]any)
	assert.Equal(t, string(booking.StateConfirmedDeferred), attempt["state"])
	assert.NotNil(t, body["notice"])
	assert.Nil(t, body["checkout"])

	id := attempt["id"].(string)
	rec = p.do(request{method: http.MethodPost, path: "/api/bookings/" + id + "/notice/dismiss", cookie: user})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	navigate := decodeBody(t, rec)["navigate"].(map[string]any)
	assert.Equal(t, "render", navigate["decision"])
	assert.Equal(t, "/", navigate["target"])

	rec = p.do(request{method: http.MethodGet, path: "/api/bookings/" + id, cookie: user})
	assert.Equal(t, http.StatusNotFound, rec.Code, "acknowledged attempts are gone")
}

func TestRouter_GatewayBookingFlow(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")
	req := booking.Request{PropertyID: "P123", Method: booking.MethodGateway}

	p.booking.EXPECT().Book(gomock.Any(), "token-asha@example.com", req).Return(booking.Initiation{
		AppointmentID: "A1",
		KeyID:         "rzp_test_key",
		OrderID:       "order_1",
		Amount:        100000,
		Currency:      "INR",
		UserName:      "Asha",
		UserEmail:     "asha@example.com",
	}, nil)
	p.booking.EXPECT().VerifyPayment(gomock.Any(), "token-asha@example.com", booking.Verification{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "sig_1", AppointmentID: "A1",
	}).Return(nil)

	rec := p.do(request{method: http.MethodPost, path: "/api/bookings", body: req, cookie: user})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	attempt := body["attempt"].(map[string]any)
	assert.Equal(t, string(booking.StateAwaitingGateway), attempt["state"])
	assert.NotNil(t, body["checkout"])
	assert.Nil(t, body["notice"])
	id := attempt["id"].(string)

	rec = p.do(request{method: http.MethodPost, path: "/api/bookings/" + id + "/gateway/success", cookie: user, body: booking.GatewaySuccess{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "sig_1",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.Equal(t, string(booking.StateConfirmedPaid), body["attempt"].(map[string]any)["state"])
	assert.Equal(t, false, body["notice"].(map[string]any)["isError"])

	rec = p.do(request{method: http.MethodPost, path: "/api/bookings/" + id + "/gateway/refund", cookie: user})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GatewayFailureShowsNoticeWithoutNavigation(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")
	req := booking.Request{PropertyID: "P123", Method: booking.MethodGateway}

	p.booking.EXPECT().Book(gomock.Any(), gomock.Any(), req).Return(booking.Initiation{
		AppointmentID: "A1", KeyID: "rzp_test_key", OrderID: "order_1", Amount: 100000, Currency: "INR",
	}, nil)

	rec := p.do(request{method: http.MethodPost, path: "/api/bookings", body: req, cookie: user})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody(t, rec)["attempt"].(map[string]any)["id"].(string)

	rec = p.do(request{method: http.MethodPost, path: "/api/bookings/" + id + "/gateway/failure", cookie: user,
		body: map[string]string{"reason": "Card declined"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, string(booking.StateGatewayFailed), body["attempt"].(map[string]any)["state"])
	assert.Equal(t, true, body["notice"].(map[string]any)["isError"])

	rec = p.do(request{method: http.MethodPost, path: "/api/bookings/" + id + "/notice/dismiss", cookie: user})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeBody(t, rec)["navigate"])
	assert.False(t, p.slots.Held(booking.SlotKey("id-asha@example.com", "P123")))
}

func TestRouter_AdminCannotBook(t *testing.T) {
	p := newPortal(t)
	admin := p.login("admin@example.com")

	rec := p.do(request{method: http.MethodPost, path: "/api/bookings", cookie: admin,
		body: booking.Request{PropertyID: "P123", Method: booking.MethodPayOnVisit}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admins cannot book appointments.", decodeBody(t, rec)["message"])
}

func TestRouter_BookingValidation(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")

	rec := p.do(request{method: http.MethodPost, path: "/api/bookings", cookie: user,
		body: map[string]string{"propertyId": "P123", "paymentMethod": "Cheque"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(request{method: http.MethodPost, path: "/api/bookings", cookie: user,
		body: map[string]string{"propertyId": "P123", "surprise": "x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")
}

func TestRouter_BookingRateLimited(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{PerMinute: 1, Burst: 1})
	p := newPortal(t, func(s *RouterServices) { s.RateLimiter = limiter })
	user := p.login("asha@example.com")
	req := booking.Request{PropertyID: "P123", Method: booking.MethodPayOnVisit}

	p.booking.EXPECT().Book(gomock.Any(), gomock.Any(), req).
		Return(booking.Initiation{PayOnVisit: true, AppointmentID: "A1"}, nil).Times(1)

	rec := p.do(request{method: http.MethodPost, path: "/api/bookings", body: req, cookie: user})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = p.do(request{method: http.MethodPost, path: "/api/bookings", body: req, cookie: user})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRouter_AdminDashboardAndCreateProperty(t *testing.T) {
	p := newPortal(t)
	admin := p.login("admin@example.com")
	cred := "token-admin@example.com"

	p.admin.EXPECT().ListAppointments(gomock.Any(), cred).Return([]model.Appointment{{ID: "A1", Fee: 1000}}, nil)
	p.admin.EXPECT().ListUsers(gomock.Any(), cred).Return([]model.User{{ID: "u1", Email: "asha@example.com"}}, nil)
	p.admin.EXPECT().Stats(gomock.Any(), cred).Return(model.AdminStats{
		DashboardStats: model.DashboardStats{TotalRevenue: 1000, TotalUsers: 1, TotalAppointments: 1},
	}, nil)
	p.catalog.EXPECT().ListProperties(gomock.Any()).Return([]model.Property{{ID: "P123", Location: "Sector 17"}}, nil)

	rec := p.do(request{method: http.MethodGet, path: "/admin", cookie: admin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p.catalog.EXPECT().CreateProperty(gomock.Any(), cred, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req model.CreatePropertyRequest) (model.Property, error) {
			assert.Equal(t, []string{"Parking", "Garden"}, req.Amenities)
			return model.Property{ID: "P9", Location: req.Location}, nil
		})

	rec = p.do(request{method: http.MethodPost, path: "/api/admin/properties", cookie: admin,
		form: "location=Sector+22&price=2500000&description=Corner+plot&imageUrl=https%3A%2F%2Fimg.example.com%2F1.jpg&area=1200&amenities=Parking%2C+Garden"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, `Property "Sector 22" created successfully!`, decodeBody(t, rec)["message"])

	rec = p.do(request{method: http.MethodPost, path: "/api/admin/properties", cookie: admin, form: "location=X&price=abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CompressionWhenEnabled(t *testing.T) {
	p := newPortal(t, func(s *RouterServices) { s.CompressionLevel = 5 })
	r, _ := http.NewRequest(http.MethodGet, "/api/route?path=/login", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	r.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestRouter_ListingAndDetail(t *testing.T) {
	p := newPortal(t)
	user := p.login("asha@example.com")

	p.catalog.EXPECT().ListProperties(gomock.Any()).Return([]model.Property{
		{ID: "P1", Location: "Sector 17", Price: 1_500_000, Type: model.PropertyTypeHouse},
		{ID: "P2", Location: "Mohali", Price: 9_000_000, Type: model.PropertyTypeHouse},
	}, nil)

	rec := p.do(request{method: http.MethodGet, path: "/?maxPrice=2000000", cookie: user})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Len(t, body["properties"], 1)
	assert.Equal(t, false, body["isAdmin"])

	rec = p.do(request{method: http.MethodGet, path: "/property/P123", cookie: user})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeBody(t, rec)["bookingEnabled"])
}

func TestParseLimitOffset(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/admin/reconciliation?limit=500&offset=-3", nil)
	limit, offset := ParseLimitOffset(r, 50, 100)
	assert.Equal(t, 100, limit)
	assert.Zero(t, offset)

	r = httptest.NewRequest(http.MethodGet, "/api/admin/reconciliation?limit=abc", nil)
	limit, _ = ParseLimitOffset(r, 50, 100)
	assert.Equal(t, 50, limit)
}
