package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
	"github.com/tejinder0007/real-estate-frontend/internal/service"
)

// BookingHandlers exposes the booking coordinator to the client.
type BookingHandlers struct {
	Coordinator *service.BookingCoordinator
	Presenter   service.NotificationPresenter
}

type attemptBody struct {
	Attempt  booking.Attempt       `json:"attempt"`
	Outcome  booking.Outcome       `json:"outcome"`
	Checkout *ports.CheckoutWidget `json:"checkout,omitempty"`
	Notice   *booking.Notice       `json:"notice,omitempty"`
}

func (h *BookingHandlers) body(snap service.AttemptSnapshot) attemptBody {
	return attemptBody{
		Attempt:  snap.Attempt,
		Outcome:  snap.Attempt.Outcome(),
		Checkout: snap.Checkout,
		Notice:   h.Presenter.Present(snap.Attempt),
	}
}

// Initiate starts a booking attempt.
// POST /api/bookings {propertyId, paymentMethod}.
func (h *BookingHandlers) Initiate(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if !DecodeJSON(w, r, &req) {
		return
	}
	snap, err := h.Coordinator.Initiate(r.Context(), sessionFrom(r).State(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, h.body(snap))
}

// Get returns an attempt with its notice once terminal.
// GET /api/bookings/{id}.
func (h *BookingHandlers) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Coordinator.Attempt(r.Context(), sessionFrom(r).State().Identity, chi.URLParam(r, "id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.body(snap))
}

type gatewayFailureBody struct {
	Reason string `json:"reason"`
}

// GatewayEvent forwards a checkout callback.
// POST /api/bookings/{id}/gateway/{kind} where kind is success, failure or dismiss.
func (h *BookingHandlers) GatewayEvent(w http.ResponseWriter, r *http.Request) {
	ev := ports.GatewayEvent{Kind: ports.GatewayEventKind(chi.URLParam(r, "kind"))}
	switch ev.Kind {
	case ports.GatewayEventSuccess:
		if !DecodeJSON(w, r, &ev.Success) {
			return
		}
	case ports.GatewayEventFailure:
		var body gatewayFailureBody
		if r.ContentLength != 0 && !DecodeJSON(w, r, &body) {
			return
		}
		ev.Reason = body.Reason
	case ports.GatewayEventDismiss:
	default:
		WriteAppError(w, apperrors.NotFound("Not found."))
		return
	}

	snap, err := h.Coordinator.HandleGatewayEvent(r.Context(), sessionFrom(r).State().Identity, chi.URLParam(r, "id"), ev)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.body(snap))
}

// DismissNotice closes a terminal attempt's notice and returns where the
// client should go next, already decided by the guard.
// POST /api/bookings/{id}/notice/dismiss.
func (h *BookingHandlers) DismissNotice(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	attempt, err := h.Coordinator.Acknowledge(r.Context(), sess.State().Identity, chi.URLParam(r, "id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	var navigate *decisionBody
	if notice := h.Presenter.Present(attempt); notice != nil {
		if intent := h.Presenter.Dismiss(*notice); intent != nil {
			d := newDecisionBody(route.Evaluate(sess.State(), intent.Target))
			if d.Decision == route.ActionRender.String() {
				d.Target = intent.Target
			}
			navigate = &d
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"navigate": navigate})
}
