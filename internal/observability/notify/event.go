package notify

import (
	"context"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
)

// ReconciliationPayload describes a gateway payment the backend could not
// confirm. Somebody has to reconcile it by hand.
type ReconciliationPayload struct {
	AttemptID      string
	UserID         string
	PropertyID     string
	AppointmentID  string
	GatewayOrderID string
	PaymentID      string
	Reason         string
	Severity       string
	OccurredAt     time.Time
	Metadata       map[string]string
}

// Sink describes a destination capable of consuming reconciliation alerts.
type Sink interface {
	SendReconciliation(ctx context.Context, payload ReconciliationPayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload ReconciliationPayload) error

// SendReconciliation implements the Sink interface.
func (f SinkFunc) SendReconciliation(ctx context.Context, payload ReconciliationPayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
