package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/model"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// AdminHandlers serves the admin catalog and reconciliation endpoints.
type AdminHandlers struct {
	Catalog     *service.CatalogService
	Coordinator *service.BookingCoordinator
}

// CreateProperty adds a listing.
// POST /api/admin/properties (JSON, or a form with comma-separated lists).
func (h *AdminHandlers) CreateProperty(w http.ResponseWriter, r *http.Request) {
	req, ok := readPropertyRequest(w, r)
	if !ok {
		return
	}
	p, msg, err := h.Catalog.CreateProperty(r.Context(), sessionFrom(r).State().Identity, req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"property": p, "message": msg})
}

func readPropertyRequest(w http.ResponseWriter, r *http.Request) (model.CreatePropertyRequest, bool) {
	var req model.CreatePropertyRequest
	if isJSONRequest(r) {
		return req, DecodeJSON(w, r, &req)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		WriteAppError(w, apperrors.Validation("Invalid form submission."))
		return req, false
	}

	var err error
	number := func(field string) float64 {
		if err != nil {
			return 0
		}
		raw := strings.TrimSpace(r.PostFormValue(field))
		if raw == "" {
			return 0
		}
		v, parseErr := strconv.ParseFloat(raw, 64)
		if parseErr != nil {
			err = apperrors.ValidationField(field, field+" must be a number")
		}
		return v
	}
	req = model.CreatePropertyRequest{
		Location:      r.PostFormValue("location"),
		Price:         number("price"),
		Description:   r.PostFormValue("description"),
		Bedrooms:      int(number("bedrooms")),
		Bathrooms:     int(number("bathrooms")),
		Type:          model.PropertyType(r.PostFormValue("type")),
		ImageURL:      r.PostFormValue("imageUrl"),
		Area:          number("area"),
		Status:        model.PropertyStatus(r.PostFormValue("status")),
		Facing:        r.PostFormValue("facing"),
		Amenities:     model.SplitList(r.PostFormValue("amenities")),
		GalleryImages: model.SplitList(r.PostFormValue("galleryImages")),
	}
	if err != nil {
		WriteAppError(w, err)
		return req, false
	}
	return req, true
}

// DeleteProperty removes a listing.
// DELETE /api/admin/properties/{id}.
func (h *AdminHandlers) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Catalog.DeleteProperty(r.Context(), sessionFrom(r).State().Identity, chi.URLParam(r, "id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Reconciliation lists payments that were charged but never confirmed.
// GET /api/admin/reconciliation?limit=<n>.
func (h *AdminHandlers) Reconciliation(w http.ResponseWriter, r *http.Request) {
	limit, _ := ParseLimitOffset(r, 50, 100)
	cases, err := h.Coordinator.ReconciliationCases(r.Context(), limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"cases": cases, "count": len(cases)})
}
