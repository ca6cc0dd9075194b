package httpx

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc         *service.AuthService
	Cookies     cookieJar
	SessionTTL  time.Duration
	ResolveWait time.Duration
	Logger      *zap.Logger
}

type authScreen struct {
	Screen    string `json:"screen"`
	Action    string `json:"action"`
	CSRFToken string `json:"csrfToken,omitempty"`
}

type userBody struct {
	ID    string          `json:"id"`
	Email string          `json:"email"`
	Role  domainauth.Role `json:"role"`
}

func newUserBody(ident domainauth.Identity) *userBody {
	if ident.IsAnonymous() {
		return nil
	}
	return &userBody{ID: ident.UserID(), Email: ident.Email(), Role: ident.Role()}
}

// LoginPage renders the login screen view model.
// GET /login.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, authScreen{Screen: "login", Action: route.PathLogin, CSRFToken: CSRFToken(r)})
}

// RegisterPage renders the registration screen view model.
// GET /register.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, authScreen{Screen: "register", Action: route.PathRegister, CSRFToken: CSRFToken(r)})
}

// Login authenticates with the backend and starts a new session.
// POST /login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.Svc.Login)
}

// Register creates an account and starts a new session.
// POST /register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.Svc.Register)
}

type authenticateFunc func(ctx context.Context, previous *service.ClientSession, in ports.Credentials) (*service.ClientSession, error)

func (h *AuthHandlers) authenticate(
	w http.ResponseWriter,
	r *http.Request,
	fn authenticateFunc,
) {
	in, ok := readCredentials(w, r)
	if !ok {
		return
	}
	sess, err := fn(r.Context(), sessionFrom(r), in)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.Cookies.setSession(w, r, sess.ID(), h.SessionTTL)
	target := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	if isBrowserRequest(r) && !isJSONRequest(r) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          newUserBody(sess.State().Identity),
		"redirect_to":   target,
	})
}

func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// readCredentials accepts a JSON body or a submitted form.
func readCredentials(w http.ResponseWriter, r *http.Request) (ports.Credentials, bool) {
	var in ports.Credentials
	if isJSONRequest(r) {
		return in, DecodeJSON(w, r, &in)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: errors.New("invalid form submission")})
		return in, false
	}
	in.Email = r.PostFormValue("email")
	in.Password = r.PostFormValue("password")
	return in, true
}

// Logout ends the session and sends the client to the login screen.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Logout(r.Context(), sessionFrom(r)); err != nil {
		h.Logger.Warn("logout failed", zap.Error(err))
	}
	h.Cookies.clear(w, r, SessionCookieName)

	if isBrowserRequest(r) && !isJSONRequest(r) {
		http.Redirect(w, r, route.PathLogin, http.StatusSeeOther)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "success",
		"redirect_to": route.PathLogin,
	})
}

// Status returns the current authentication status.
// GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	state := awaitResolved(r.Context(), sessionFrom(r), h.ResolveWait)
	body := map[string]any{
		"authenticated": state.Identity.Authenticated() && !state.Resolving,
		"resolving":     state.Resolving,
	}
	if !state.Resolving {
		if user := newUserBody(state.Identity); user != nil {
			body["user"] = user
		}
	}
	if token := CSRFToken(r); token != "" {
		body["csrf_token"] = token
	}
	WriteJSON(w, http.StatusOK, body)
}
