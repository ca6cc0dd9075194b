package httpx

import (
	"io"
	"net/http"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
)

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		return
	}
}

// RouteHandlers answers guard queries for client-side navigation.
type RouteHandlers struct {
	Guard GuardConfig
}

// Decide returns the guard decision for a path without rendering it.
// GET /api/route?path=/admin.
func (h *RouteHandlers) Decide(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = route.PathHome
	}
	state := awaitResolved(r.Context(), sessionFrom(r), h.Guard.ResolveWait)
	class, _ := route.Classify(path)
	decision := route.Evaluate(state, path)
	h.Guard.Metrics.RecordRouteDecision(class.String(), decision.Action.String())

	body := newDecisionBody(decision)
	if decision.Action == route.ActionShowLoading {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, http.StatusOK, map[string]any{"path": path, "class": class.String(), "decision": body.Decision, "target": body.Target})
}
