package service

import (
	"strings"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
)

// NotificationPresenter turns terminal booking outcomes into notices.
type NotificationPresenter struct{}

// Present returns the notice for an attempt, or nil when there is nothing to
// show: the attempt is still live or the user closed the checkout.
func (NotificationPresenter) Present(a booking.Attempt) *booking.Notice {
	switch a.State {
	case booking.StateConfirmedDeferred:
		return &booking.Notice{
			Title:   "Appointment Booked!",
			Message: `Your appointment is confirmed for "Pay on Visit". Our team will contact you shortly.`,
		}
	case booking.StateConfirmedPaid:
		return &booking.Notice{
			Title:   "Appointment Booked!",
			Message: "Your appointment is confirmed. Payment successful. Our team will contact you shortly.",
		}
	case booking.StateInitiationFailed:
		reason := strings.TrimSpace(a.Reason)
		if reason == "" {
			reason = defaultInitiationFailure
		}
		return &booking.Notice{Title: "Booking Failed", Message: reason, IsError: true}
	case booking.StateGatewayFailed:
		reason := strings.TrimSpace(a.Reason)
		if reason == "" {
			reason = "Please try again."
		}
		return &booking.Notice{Title: "Payment Failed", Message: "Payment failed: " + reason, IsError: true}
	case booking.StateVerificationFailed:
		reason := strings.TrimSuffix(strings.TrimSpace(a.Reason), ".")
		if reason == "" {
			reason = strings.TrimSuffix(defaultVerificationFailure, ".")
		}
		return &booking.Notice{
			Title: "Booking Failed",
			Message: "Payment was successful, but verification failed: " + reason +
				". Please contact support with your payment reference; do not pay again.",
			IsError: true,
		}
	default:
		return nil
	}
}

// Dismiss returns where the client goes after closing a notice: back to the
// listing after a success, nowhere after a failure.
func (NotificationPresenter) Dismiss(n booking.Notice) *route.Intent {
	if n.IsError {
		return nil
	}
	return route.ListingIntent()
}
