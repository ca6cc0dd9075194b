package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/route"
)

func TestNotificationPresenter_Present(t *testing.T) {
	tests := []struct {
		name    string
		attempt booking.Attempt
		want    *booking.Notice
	}{
		{
			name:    "pay on visit",
			attempt: booking.Attempt{State: booking.StateConfirmedDeferred},
			want: &booking.Notice{
				Title:   "Appointment Booked!",
				Message: `Your appointment is confirmed for "Pay on Visit". Our team will contact you shortly.`,
			},
		},
		{
			name:    "paid",
			attempt: booking.Attempt{State: booking.StateConfirmedPaid},
			want: &booking.Notice{
				Title:   "Appointment Booked!",
				Message: "Your appointment is confirmed. Payment successful. Our team will contact you shortly.",
			},
		},
		{
			name:    "initiation failed with backend message",
			attempt: booking.Attempt{State: booking.StateInitiationFailed, Reason: "Property not available"},
			want:    &booking.Notice{Title: "Booking Failed", Message: "Property not available", IsError: true},
		},
		{
			name:    "initiation failed without message",
			attempt: booking.Attempt{State: booking.StateInitiationFailed},
			want:    &booking.Notice{Title: "Booking Failed", Message: "Failed to create appointment.", IsError: true},
		},
		{
			name:    "gateway failed",
			attempt: booking.Attempt{State: booking.StateGatewayFailed, Reason: "Card declined"},
			want:    &booking.Notice{Title: "Payment Failed", Message: "Payment failed: Card declined", IsError: true},
		},
		{
			name:    "gateway failed without reason",
			attempt: booking.Attempt{State: booking.StateGatewayFailed},
			want:    &booking.Notice{Title: "Payment Failed", Message: "Payment failed: Please try again.", IsError: true},
		},
		{
			name:    "verification failed",
			attempt: booking.Attempt{State: booking.StateVerificationFailed, Reason: "Signature mismatch."},
			want: &booking.Notice{
				Title:   "Booking Failed",
				Message: "Payment was successful, but verification failed: Signature mismatch. Please contact support with your payment reference; do not pay again.",
				IsError: true,
			},
		},
		{name: "cancelled", attempt: booking.Attempt{State: booking.StateGatewayCancelled}},
		{name: "in flight", attempt: booking.Attempt{State: booking.StateVerifying}},
	}

	var p NotificationPresenter
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Present(tt.attempt))
		})
	}
}

func TestNotificationPresenter_Dismiss(t *testing.T) {
	var p NotificationPresenter

	intent := p.Dismiss(booking.Notice{Title: "Appointment Booked!"})
	require.NotNil(t, intent)
	assert.Equal(t, route.PathHome, intent.Target)

	assert.Nil(t, p.Dismiss(booking.Notice{Title: "Payment Failed", IsError: true}))
}
