// Package booking holds the booking attempt model and its state machine.
package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PaymentMethod is how a viewing fee gets settled. The set is fixed.
type PaymentMethod string

const (
	MethodGateway    PaymentMethod = "Razorpay"
	MethodPayOnVisit PaymentMethod = "Pay on Visit"
)

// PaymentMethods lists the accepted methods in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{MethodGateway, MethodPayOnVisit}
}

// ParsePaymentMethod accepts exactly one of the supported method labels.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodGateway, MethodPayOnVisit:
		return PaymentMethod(s), nil
	default:
		return "", fmt.Errorf("unsupported payment method %q", s)
	}
}

// Request is one user action asking to book a viewing.
type Request struct {
	PropertyID string        `json:"propertyId"`
	Method     PaymentMethod `json:"paymentMethod"`
}

// Validate checks the request before anything leaves the process.
func (r Request) Validate() error {
	if strings.TrimSpace(r.PropertyID) == "" {
		return errors.New("propertyId is required")
	}
	if _, err := ParsePaymentMethod(string(r.Method)); err != nil {
		return err
	}
	return nil
}

// Initiation is the backend's answer to a booking request.
type Initiation struct {
	PayOnVisit    bool
	AppointmentID string
	KeyID         string
	OrderID       string
	Amount        int64
	Currency      string
	UserName      string
	UserEmail     string
}

// CheckoutParams are handed to the payment gateway unchanged.
type CheckoutParams struct {
	ProviderKeyID    string `json:"key"`
	GatewayOrderID   string `json:"order_id"`
	AmountMinorUnits int64  `json:"amount"`
	Currency         string `json:"currency"`
	DisplayName      string `json:"name"`
	Description      string `json:"description"`
	PrefillName      string `json:"-"`
	PrefillEmail     string `json:"-"`
}

// CheckoutParams derives gateway parameters from a non-deferred initiation.
// Missing fields mean the backend answer cannot drive a checkout.
func (in Initiation) CheckoutParams(displayName, description string) (CheckoutParams, error) {
	var missing []string
	if in.KeyID == "" {
		missing = append(missing, "razorpayKeyId")
	}
	if in.OrderID == "" {
		missing = append(missing, "razorpayOrderId")
	}
	if in.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if in.Currency == "" {
		missing = append(missing, "currency")
	}
	if in.AppointmentID == "" {
		missing = append(missing, "appointmentId")
	}
	if len(missing) > 0 {
		return CheckoutParams{}, fmt.Errorf("incomplete payment details: missing %s", strings.Join(missing, ", "))
	}
	return CheckoutParams{
		ProviderKeyID:    in.KeyID,
		GatewayOrderID:   in.OrderID,
		AmountMinorUnits: in.Amount,
		Currency:         in.Currency,
		DisplayName:      displayName,
		Description:      description,
		PrefillName:      in.UserName,
		PrefillEmail:     in.UserEmail,
	}, nil
}

// GatewaySuccess is the payload of a gateway success callback.
type GatewaySuccess struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Validate reports whether every field needed for verification is present.
func (g GatewaySuccess) Validate() error {
	if g.OrderID == "" || g.PaymentID == "" || g.Signature == "" {
		return errors.New("gateway success requires order id, payment id and signature")
	}
	return nil
}

// Verification is what the backend needs to confirm a gateway payment.
type Verification struct {
	OrderID       string `json:"razorpay_order_id"`
	PaymentID     string `json:"razorpay_payment_id"`
	Signature     string `json:"razorpay_signature"`
	AppointmentID string `json:"appointmentId"`
}

// OutcomeKind is the live result of an attempt as presented to the client.
type OutcomeKind string

const (
	OutcomePending           OutcomeKind = "pending"
	OutcomeConfirmedDeferred OutcomeKind = "confirmed_deferred"
	OutcomeAwaitingGateway   OutcomeKind = "awaiting_gateway_confirmation"
	OutcomeConfirmedPaid     OutcomeKind = "confirmed_paid"
	OutcomeFailed            OutcomeKind = "failed"
	OutcomeCancelled         OutcomeKind = "cancelled"
)

// Outcome carries the fields relevant to its Kind.
type Outcome struct {
	Kind           OutcomeKind `json:"kind"`
	AppointmentID  string      `json:"appointmentId,omitempty"`
	GatewayOrderID string      `json:"gatewayOrderId,omitempty"`
	Reason         string      `json:"reason,omitempty"`
}

// Attempt is one booking attempt by one user for one property.
type Attempt struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	PropertyID     string        `json:"propertyId"`
	Method         PaymentMethod `json:"paymentMethod"`
	State          State         `json:"state"`
	AppointmentID  string        `json:"appointmentId,omitempty"`
	GatewayOrderID string        `json:"gatewayOrderId,omitempty"`
	PaymentID      string        `json:"paymentId,omitempty"`
	Reason         string        `json:"reason,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Outcome projects the attempt state onto the client-facing outcome.
func (a Attempt) Outcome() Outcome {
	switch a.State {
	case StateConfirmedDeferred:
		return Outcome{Kind: OutcomeConfirmedDeferred, AppointmentID: a.AppointmentID}
	case StateAwaitingGateway, StateVerifying:
		return Outcome{Kind: OutcomeAwaitingGateway, AppointmentID: a.AppointmentID, GatewayOrderID: a.GatewayOrderID}
	case StateConfirmedPaid:
		return Outcome{Kind: OutcomeConfirmedPaid, AppointmentID: a.AppointmentID}
	case StateInitiationFailed, StateGatewayFailed, StateVerificationFailed:
		return Outcome{Kind: OutcomeFailed, AppointmentID: a.AppointmentID, GatewayOrderID: a.GatewayOrderID, Reason: a.Reason}
	case StateGatewayCancelled:
		return Outcome{Kind: OutcomeCancelled}
	default:
		return Outcome{Kind: OutcomePending}
	}
}

// SlotKey identifies the (user, property) pair that may hold one live attempt.
func SlotKey(userID, propertyID string) string {
	return userID + ":" + propertyID
}

// Notice is the user-facing message for a terminal outcome.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	IsError bool   `json:"isError"`
}
