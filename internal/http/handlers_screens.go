package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// ScreenHandlers serves the protected screen view models. Access was already
// decided by Guard; handlers only read the resolved identity.
type ScreenHandlers struct {
	Catalog *service.CatalogService
}

// Listing serves the property listing.
// GET /?maxPrice=<rupees>&type=<All|House|...>.
func (h *ScreenHandlers) Listing(w http.ResponseWriter, r *http.Request) {
	filter := model.PropertyFilter{Type: r.URL.Query().Get("type")}
	if v := r.URL.Query().Get("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			filter.MaxPrice = f
		}
	}
	view, err := h.Catalog.Listing(r.Context(), sessionFrom(r).State().Identity, filter)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Detail serves one property with its booking panel.
// GET /property/{id}.
func (h *ScreenHandlers) Detail(w http.ResponseWriter, r *http.Request) {
	view, err := h.Catalog.Detail(r.Context(), sessionFrom(r).State().Identity, chi.URLParam(r, "id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// Dashboard serves the admin dashboard.
// GET /admin.
func (h *ScreenHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Catalog.Dashboard(r.Context(), sessionFrom(r).State().Identity)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}
