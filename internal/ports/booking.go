package ports

import (
	"context"
	"time"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
)

// GatewayEvents receives the outcome of one checkout. A handle calls at most
// one of these methods, at most once.
type GatewayEvents interface {
	OnSuccess(ctx context.Context, payload booking.GatewaySuccess)
	OnFailure(ctx context.Context, reason string)
	OnDismiss(ctx context.Context)
}

// GatewayEventKind enumerates checkout callbacks.
type GatewayEventKind string

const (
	GatewayEventSuccess GatewayEventKind = "success"
	GatewayEventFailure GatewayEventKind = "failure"
	GatewayEventDismiss GatewayEventKind = "dismiss"
)

// GatewayEvent is a raw callback reported by the client-side checkout.
type GatewayEvent struct {
	Kind    GatewayEventKind
	Success booking.GatewaySuccess
	Reason  string
}

// CheckoutPrefill is the customer data shown pre-filled in the checkout.
type CheckoutPrefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CheckoutTheme styles the checkout.
type CheckoutTheme struct {
	Color string `json:"color,omitempty"`
}

// CheckoutWidget holds the options the browser passes to the checkout script.
type CheckoutWidget struct {
	Key         string          `json:"key"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image,omitempty"`
	OrderID     string          `json:"order_id"`
	Prefill     CheckoutPrefill `json:"prefill"`
	Theme       CheckoutTheme   `json:"theme"`
}

// CheckoutHandle is one open checkout.
type CheckoutHandle interface {
	OrderID() string
	Widget() CheckoutWidget
	// Emit forwards a client callback to the events receiver. It reports false
	// when the handle already emitted and the event was dropped.
	Emit(ctx context.Context, ev GatewayEvent) bool
	// Close withdraws the checkout without notifying the receiver. It reports
	// false when an event was already emitted.
	Close() bool
}

// PaymentGateway opens checkouts for gateway-paid bookings.
type PaymentGateway interface {
	Open(ctx context.Context, params booking.CheckoutParams, events GatewayEvents) (CheckoutHandle, error)
}

// AttemptSlots holds the (user, property) lock of a live attempt and remembers
// confirmed bookings when duplicates are refused. Attempts and open checkouts
// stay in the memory of the instance that started them, so gateway callbacks
// need sticky routing when more than one portal instance runs.
type AttemptSlots interface {
	// Acquire reports whether the slot was free and is now held by owner for ttl.
	Acquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	// Release frees the slot only while owner still holds it.
	Release(ctx context.Context, key, owner string) error
	MarkBooked(ctx context.Context, key string) error
	IsBooked(ctx context.Context, key string) (bool, error)
}

// BookingLedger keeps a durable record of attempt transitions.
type BookingLedger interface {
	Record(ctx context.Context, a booking.Attempt) error
	ListByState(ctx context.Context, state booking.State, limit int) ([]booking.Attempt, error)
}
