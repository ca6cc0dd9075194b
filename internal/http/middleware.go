package httpx

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/observability/metrics"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("panic",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.String("stack", string(debug.Stack())))
					WriteAppError(w, apperrors.Internal("Internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Sessions attaches the client session named by the session cookie, creating
// one (and setting the cookie) for first-time visitors. Restoration of a known
// session runs in the background; handlers must not assume it has finished.
func Sessions(registry *service.SessionRegistry, jar cookieJar) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sessionIDFromRequest(r)
			sess := registry.Acquire(r.Context(), id)
			if sess.ID() != id {
				jar.setSession(w, r, sess.ID(), 0)
			}
			next.ServeHTTP(w, r.WithContext(SetClientSessionInContext(r.Context(), sess)))
		})
	}
}

// isBrowserRequest reports whether the client navigates like a browser.
// API routes never do; elsewhere the Accept header decides.
func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// awaitResolved waits up to wait for the session to finish restoring and
// returns its state. The state may still be resolving.
func awaitResolved(ctx context.Context, sess *service.ClientSession, wait time.Duration) domainauth.SessionState {
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-sess.Resolved():
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return sess.State()
}

// GuardConfig tunes Guard.
type GuardConfig struct {
	// ResolveWait bounds how long a request waits for session restoration
	// before it is answered with a loading response.
	ResolveWait time.Duration
	Metrics     *metrics.Collector
}

// Guard gates a screen of the given class. Rendering proceeds to next; every
// other decision is answered here.
func Guard(class route.Class, cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := ClientSessionFromContext(r.Context())
			if !ok {
				WriteAppError(w, apperrors.Internal("session middleware missing"))
				return
			}
			state := awaitResolved(r.Context(), sess, cfg.ResolveWait)
			decision := route.Decide(state, class)
			cfg.Metrics.RecordRouteDecision(class.String(), decision.Action.String())

			if decision.Action == route.ActionRender {
				next.ServeHTTP(w, r)
				return
			}
			writeDecision(w, r, class, decision)
		})
	}
}

// Fallback answers navigations that match no screen.
func Fallback(cfg GuardConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			WriteAppError(w, apperrors.NotFound("Not found."))
			return
		}
		sess, ok := ClientSessionFromContext(r.Context())
		if !ok {
			WriteAppError(w, apperrors.Internal("session middleware missing"))
			return
		}
		decision := route.Fallback(awaitResolved(r.Context(), sess, cfg.ResolveWait))
		cfg.Metrics.RecordRouteDecision(route.ClassUnknown.String(), decision.Action.String())
		writeDecision(w, r, route.ClassUnknown, decision)
	}
}

// decisionBody is the JSON form of a guard decision.
type decisionBody struct {
	Decision string `json:"decision"`
	Target   string `json:"target,omitempty"`
}

func newDecisionBody(d route.Decision) decisionBody {
	return decisionBody{Decision: d.Action.String(), Target: d.Target}
}

func writeDecision(w http.ResponseWriter, r *http.Request, class route.Class, d route.Decision) {
	switch d.Action {
	case route.ActionShowLoading:
		writeLoading(w, r)
	case route.ActionRedirect:
		if isBrowserRequest(r) {
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
			return
		}
		writeAPIRedirect(w, class, d)
	default:
		WriteAppError(w, apperrors.Internal("unexpected guard decision"))
	}
}

// writeLoading tells the client restoration is still running and to retry.
func writeLoading(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Cache-Control", "no-store")
	if isBrowserRequest(r) {
		w.Header().Set("Refresh", "1")
	}
	WriteJSON(w, http.StatusAccepted, decisionBody{Decision: route.ActionShowLoading.String()})
}

// writeAPIRedirect answers a redirect for non-browser clients: a missing
// login is 401, a user on an admin screen is 403, anything else is a 303.
func writeAPIRedirect(w http.ResponseWriter, class route.Class, d route.Decision) {
	body := newDecisionBody(d)
	switch {
	case d.Target == route.PathLogin:
		WriteJSON(w, http.StatusUnauthorized, map[string]string{
			"error": string(apperrors.ErrCodeUnauthorized), "message": "Please log in.",
			"decision": body.Decision, "target": body.Target,
		})
	case class == route.ClassAdminProtected:
		WriteJSON(w, http.StatusForbidden, map[string]string{
			"error": string(apperrors.ErrCodeForbidden), "message": "Admin access required.",
			"decision": body.Decision, "target": body.Target,
		})
	default:
		w.Header().Set("Location", d.Target)
		WriteJSON(w, http.StatusSeeOther, body)
	}
}

// sessionFrom returns the request's client session. Routes are only mounted
// behind Sessions, so a missing session is a wiring bug.
func sessionFrom(r *http.Request) *service.ClientSession {
	sess, ok := ClientSessionFromContext(r.Context())
	if !ok {
		panic("httpx: client session missing from request context")
	}
	return sess
}
