// Package backend implements the property backend REST contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

const maxResponseBytes = 4 << 20

var (
	_ ports.AuthAPI    = (*Client)(nil)
	_ ports.CatalogAPI = (*Client)(nil)
	_ ports.BookingAPI = (*Client)(nil)
	_ ports.AdminAPI   = (*Client)(nil)
)

// Config configures the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  *zap.Logger
}

// Client talks JSON to the property backend. Every method maps failures onto
// the application error taxonomy so callers never inspect HTTP status codes.
type Client struct {
	base   *url.URL
	client *http.Client
	logger *zap.Logger
}

// NewClient builds a backend client. BaseURL must be absolute.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("backend base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend base url must be absolute: %q", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{base: u, client: hc, logger: logger}, nil
}

// envelope is the common response shape. Auth endpoints omit success and
// answer with token and user instead.
type envelope struct {
	Success       *bool           `json:"success"`
	Message       string          `json:"message"`
	Data          json.RawMessage `json:"data"`
	Token         string          `json:"token"`
	User          *userDTO        `json:"user"`
	IsPayOnVisit  bool            `json:"isPayOnVisit"`
	AppointmentID string          `json:"appointmentId"` // pay-on-visit replies set it at the top level
}

type userDTO struct {
	ID    string `json:"id"`
	OID   string `json:"_id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u userDTO) id() string {
	if u.ID != "" {
		return u.ID
	}
	return u.OID
}

type call struct {
	method     string
	path       string
	credential string
	body       any
}

func (c *Client) do(ctx context.Context, in call) (envelope, error) {
	var reader io.Reader
	if in.body != nil {
		buf, err := json.Marshal(in.body)
		if err != nil {
			return envelope{}, fmt.Errorf("encode %s %s: %w", in.method, in.path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, c.base.JoinPath(in.path).String(), reader)
	if err != nil {
		return envelope{}, fmt.Errorf("create backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.credential != "" {
		req.Header.Set("Authorization", "Bearer "+in.credential)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return envelope{}, apperrors.Wrap(ctxErr, apperrors.ErrCodeCanceled, "request canceled")
		}
		c.logger.Warn("backend request failed",
			zap.String("method", in.method), zap.String("path", in.path), zap.Error(err))
		return envelope{}, apperrors.Transport(err, "Could not reach the server. Please try again.")
	}
	defer func() {
		// body close failure is best-effort and ignored
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope{}, apperrors.Transport(err, "Could not read the server response.")
	}

	c.logger.Debug("backend call",
		zap.String("method", in.method),
		zap.String("path", in.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return env, statusError(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return envelope{}, apperrors.Transport(decodeErr, "The server sent an unreadable response.")
	}
	if env.Success != nil && !*env.Success {
		return env, apperrors.Validation(env.Message)
	}
	return env, nil
}

// statusError maps a non-2xx answer onto the error taxonomy, keeping the
// backend's message as the user-facing reason when there is one.
func statusError(status int, message string) error {
	msg := strings.TrimSpace(message)
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(fallback(msg, "Your session has expired. Please log in again."))
	case status == http.StatusForbidden:
		return apperrors.Forbidden(fallback(msg, "You are not allowed to do that."))
	case status == http.StatusNotFound:
		return apperrors.NotFound(fallback(msg, "Not found."))
	case status == http.StatusConflict:
		return apperrors.Conflict(fallback(msg, "Request conflicts with existing data."))
	case status >= 400 && status < 500:
		return apperrors.Validation(fallback(msg, "The request was rejected."))
	default:
		return apperrors.Transport(
			fmt.Errorf("backend answered %d", status),
			fallback(msg, "The server is unavailable. Please try again."),
		)
	}
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func decodeData(env envelope, dst any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return apperrors.Transport(err, "The server sent an unreadable response.")
	}
	return nil
}

// Login implements ports.AuthAPI.
func (c *Client) Login(ctx context.Context, in ports.Credentials) (domainauth.Identity, error) {
	return c.authenticate(ctx, "auth/login", in)
}

// Register implements ports.AuthAPI.
func (c *Client) Register(ctx context.Context, in ports.Credentials) (domainauth.Identity, error) {
	return c.authenticate(ctx, "auth/register", in)
}

func (c *Client) authenticate(ctx context.Context, path string, in ports.Credentials) (domainauth.Identity, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, path: path, body: in})
	if err != nil {
		if apperrors.IsValidation(err) || apperrors.IsUnauthorized(err) {
			return domainauth.Identity{}, apperrors.Unauthorized(fallback(env.Message, "Authentication failed"))
		}
		return domainauth.Identity{}, err
	}
	if env.Token == "" || env.User == nil {
		return domainauth.Identity{}, apperrors.Unauthorized(fallback(env.Message, "Authentication failed"))
	}

	role, err := domainauth.ParseRole(env.User.Role)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "Authentication failed")
	}
	ident, err := domainauth.NewIdentity(env.User.id(), env.User.Email, role, env.Token)
	if err != nil {
		return domainauth.Identity{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "Authentication failed")
	}
	return ident, nil
}

// ListProperties implements ports.CatalogAPI.
func (c *Client) ListProperties(ctx context.Context) ([]model.Property, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "properties"})
	if err != nil {
		return nil, err
	}
	var out []model.Property
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProperty implements ports.CatalogAPI.
func (c *Client) GetProperty(ctx context.Context, id string) (model.Property, error) {
	if strings.TrimSpace(id) == "" {
		return model.Property{}, apperrors.NotFound("Property not found.")
	}
	env, err := c.do(ctx, call{method: http.MethodGet, path: "properties/" + url.PathEscape(id)})
	if err != nil {
		return model.Property{}, err
	}
	var out model.Property
	if err := decodeData(env, &out); err != nil {
		return model.Property{}, err
	}
	if out.ID == "" {
		return model.Property{}, apperrors.NotFound("Property not found.")
	}
	return out, nil
}

// CreateProperty implements ports.CatalogAPI.
func (c *Client) CreateProperty(ctx context.Context, credential string, req model.CreatePropertyRequest) (model.Property, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, path: "properties", credential: credential, body: req})
	if err != nil {
		return model.Property{}, err
	}
	var out model.Property
	if err := decodeData(env, &out); err != nil {
		return model.Property{}, err
	}
	return out, nil
}

// DeleteProperty implements ports.CatalogAPI.
func (c *Client) DeleteProperty(ctx context.Context, credential, id string) (string, error) {
	env, err := c.do(ctx, call{method: http.MethodDelete, path: "properties/" + url.PathEscape(id), credential: credential})
	if err != nil {
		return "", err
	}
	return fallback(env.Message, "Property deleted."), nil
}

type initiationDTO struct {
	ID              string `json:"_id"`
	AppointmentID   string `json:"appointmentId"`
	RazorpayKeyID   string `json:"razorpayKeyId"`
	RazorpayOrderID string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	UserName        string `json:"userName"`
	UserEmail       string `json:"userEmail"`
}

// Book implements ports.BookingAPI.
func (c *Client) Book(ctx context.Context, credential string, req booking.Request) (booking.Initiation, error) {
	env, err := c.do(ctx, call{method: http.MethodPost, path: "appointments/book", credential: credential, body: req})
	if err != nil {
		return booking.Initiation{}, err
	}
	var dto initiationDTO
	if err := decodeData(env, &dto); err != nil {
		return booking.Initiation{}, err
	}
	appointmentID := fallback(dto.AppointmentID, fallback(dto.ID, env.AppointmentID))
	return booking.Initiation{
		PayOnVisit:    env.IsPayOnVisit,
		AppointmentID: appointmentID,
		KeyID:         dto.RazorpayKeyID,
		OrderID:       dto.RazorpayOrderID,
		Amount:        dto.Amount,
		Currency:      dto.Currency,
		UserName:      dto.UserName,
		UserEmail:     dto.UserEmail,
	}, nil
}

// VerifyPayment implements ports.BookingAPI.
func (c *Client) VerifyPayment(ctx context.Context, credential string, v booking.Verification) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "appointments/payment-verification", credential: credential, body: v})
	return err
}

// ListAppointments implements ports.AdminAPI.
func (c *Client) ListAppointments(ctx context.Context, credential string) ([]model.Appointment, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "appointments", credential: credential})
	if err != nil {
		return nil, err
	}
	var out []model.Appointment
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers implements ports.AdminAPI.
func (c *Client) ListUsers(ctx context.Context, credential string) ([]model.User, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "auth/users", credential: credential})
	if err != nil {
		return nil, err
	}
	var out []model.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats implements ports.AdminAPI.
func (c *Client) Stats(ctx context.Context, credential string) (model.AdminStats, error) {
	env, err := c.do(ctx, call{method: http.MethodGet, path: "admin/stats", credential: credential})
	if err != nil {
		return model.AdminStats{}, err
	}
	var out model.AdminStats
	if err := decodeData(env, &out); err != nil {
		return model.AdminStats{}, err
	}
	return out, nil
}
