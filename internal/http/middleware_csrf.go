package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
)

const (
	// DefaultCSRFCookieName is the default name for the CSRF cookie.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the default name for the CSRF header (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	defaultCSRFTokenBytes = 32
)

// CSRFConfig configures double-submit CSRF protection.
type CSRFConfig struct {
	CookieName   string
	HeaderName   string
	CookieDomain string
}

func (c CSRFConfig) withDefaults() CSRFConfig {
	if c.CookieName == "" {
		c.CookieName = DefaultCSRFCookieName
	}
	if c.HeaderName == "" {
		c.HeaderName = DefaultCSRFHeaderName
	}
	return c
}

// CSRFProtection issues a readable token cookie and requires every
// state-changing request to echo it in the header (JSON clients) or in the
// csrf_token form field (form posts).
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				var err error
				if token, err = generateCSRFToken(); err != nil {
					WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal server error"))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    token,
					Path:     "/",
					Domain:   cfg.CookieDomain,
					HttpOnly: false, // the client reads it to echo the header
					Secure:   isSecureRequest(r),
					SameSite: http.SameSiteStrictMode,
					MaxAge:   3600 * 12,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))
			if requiresCSRFValidation(r.Method) && !validCSRFToken(w, r, token, cfg.HeaderName) {
				WriteAppError(w, apperrors.Forbidden("Invalid or missing CSRF token."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requiresCSRFValidation(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}

// generateCSRFToken fails closed rather than falling back to a predictable token.
func generateCSRFToken() (string, error) {
	b := make([]byte, defaultCSRFTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func validCSRFToken(w http.ResponseWriter, r *http.Request, cookieToken, header string) bool {
	if cookieToken == "" {
		return false
	}
	if submitted := r.Header.Get(header); submitted != "" {
		return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) == 1
	}

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return false
		}
		if submitted := r.PostFormValue(DefaultCSRFCookieName); submitted != "" {
			return subtle.ConstantTimeCompare([]byte(submitted), []byte(cookieToken)) == 1
		}
	}
	return false
}

type csrfTokenKey struct{}

// CSRFToken returns the request's CSRF token, or "" when protection is off.
func CSRFToken(r *http.Request) string {
	if token, ok := r.Context().Value(csrfTokenKey{}).(string); ok {
		return token
	}
	return ""
}
