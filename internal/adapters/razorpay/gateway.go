// Package razorpay adapts the browser-side Razorpay checkout to ports.PaymentGateway.
//
// The checkout widget runs in the visitor's browser. Open registers the
// checkout and returns the widget options; the browser posts the widget's
// callbacks back to the portal, which hands them to the handle via Emit.
package razorpay

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

var _ ports.PaymentGateway = (*Gateway)(nil)

// GatewayOptions configures the checkout presentation.
type GatewayOptions struct {
	Image      string
	ThemeColor string
	Logger     *zap.Logger
}

// Gateway keeps the registry of open checkouts keyed by gateway order ID.
type Gateway struct {
	image      string
	themeColor string
	logger     *zap.Logger

	mu   sync.Mutex
	open map[string]*handle
}

// NewGateway creates a Gateway.
func NewGateway(opts GatewayOptions) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		image:      opts.Image,
		themeColor: opts.ThemeColor,
		logger:     logger,
		open:       make(map[string]*handle),
	}
}

// Open implements ports.PaymentGateway.
func (g *Gateway) Open(ctx context.Context, params booking.CheckoutParams, events ports.GatewayEvents) (ports.CheckoutHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if events == nil {
		return nil, errors.New("checkout events receiver is required")
	}
	if params.ProviderKeyID == "" || params.GatewayOrderID == "" || params.AmountMinorUnits <= 0 || params.Currency == "" {
		return nil, apperrors.Validation("incomplete checkout parameters")
	}

	h := &handle{
		gateway: g,
		orderID: params.GatewayOrderID,
		events:  events,
		widget: ports.CheckoutWidget{
			Key:         params.ProviderKeyID,
			Amount:      params.AmountMinorUnits,
			Currency:    params.Currency,
			Name:        params.DisplayName,
			Description: params.Description,
			Image:       g.image,
			OrderID:     params.GatewayOrderID,
			Prefill:     ports.CheckoutPrefill{Name: params.PrefillName, Email: params.PrefillEmail},
			Theme:       ports.CheckoutTheme{Color: g.themeColor},
		},
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.open[h.orderID]; exists {
		return nil, apperrors.Conflict("a checkout is already open for this order")
	}
	g.open[h.orderID] = h

	g.logger.Debug("checkout opened", zap.String("order_id", h.orderID))
	return h, nil
}

// OpenCount returns the number of checkouts still waiting for a callback.
func (g *Gateway) OpenCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.open)
}

func (g *Gateway) close(orderID string) {
	g.mu.Lock()
	delete(g.open, orderID)
	g.mu.Unlock()
}

type handle struct {
	gateway *Gateway
	orderID string
	widget  ports.CheckoutWidget
	events  ports.GatewayEvents

	mu   sync.Mutex
	done bool
}

func (h *handle) OrderID() string              { return h.orderID }
func (h *handle) Widget() ports.CheckoutWidget { return h.widget }

// Close marks the checkout spent and removes it from the registry.
func (h *handle) Close() bool {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return false
	}
	h.done = true
	h.mu.Unlock()

	h.gateway.close(h.orderID)
	h.gateway.logger.Debug("checkout withdrawn", zap.String("order_id", h.orderID))
	return true
}

// Emit delivers the first well-formed callback and closes the checkout.
// Callbacks for another order, unknown kinds and anything after the first
// are dropped.
func (h *handle) Emit(ctx context.Context, ev ports.GatewayEvent) bool {
	switch ev.Kind {
	case ports.GatewayEventSuccess:
		if ev.Success.Validate() != nil || ev.Success.OrderID != h.orderID {
			h.gateway.logger.Warn("dropping malformed checkout success",
				zap.String("order_id", h.orderID),
				zap.String("callback_order_id", ev.Success.OrderID))
			return false
		}
	case ports.GatewayEventFailure, ports.GatewayEventDismiss:
	default:
		return false
	}

	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return false
	}
	h.done = true
	h.mu.Unlock()

	h.gateway.close(h.orderID)

	switch ev.Kind {
	case ports.GatewayEventSuccess:
		h.events.OnSuccess(ctx, ev.Success)
	case ports.GatewayEventFailure:
		h.events.OnFailure(ctx, ev.Reason)
	case ports.GatewayEventDismiss:
		h.events.OnDismiss(ctx)
	}
	return true
}
