package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainauth "github.com/tejinder0007/real-estate-frontend/internal/domain/auth"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	obserrors "github.com/tejinder0007/real-estate-frontend/internal/observability/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/observability/notify"
	"github.com/tejinder0007/real-estate-frontend/internal/ports"
)

const (
	defaultInitiationFailure   = "Failed to create appointment."
	defaultVerificationFailure = "Payment verification failed."
)

// BookingPorts groups the collaborators of BookingCoordinator.
type BookingPorts struct {
	Booking ports.BookingAPI
	Catalog ports.CatalogAPI // Optional: used for the checkout description
	Gateway ports.PaymentGateway
	Slots   ports.AttemptSlots
	Ledger  ports.BookingLedger // Optional: durable transition record
	Alerts  notify.Sink         // Optional: reconciliation alerts
}

// BookingConfig tunes BookingCoordinator.
type BookingConfig struct {
	// DisplayName is the merchant name shown in the checkout.
	DisplayName string
	// SlotTTL bounds how long one attempt can hold its (user, property) slot.
	SlotTTL time.Duration
	// VerifyTimeout bounds a payment verification call.
	VerifyTimeout time.Duration
	// Retention keeps finished attempts readable for this long.
	Retention time.Duration
	// RejectDuplicates refuses new attempts for a property the user already booked.
	RejectDuplicates bool
}

// BookingCoordinatorOptions groups dependencies for BookingCoordinator.
type BookingCoordinatorOptions struct {
	Ports     BookingPorts
	Config    BookingConfig
	Telemetry Telemetry
}

// AttemptSnapshot is a consistent copy of an attempt. Checkout is set while
// the attempt waits for the gateway.
type AttemptSnapshot struct {
	Attempt  booking.Attempt
	Checkout *ports.CheckoutWidget
}

type liveAttempt struct {
	mu         sync.Mutex
	rec        booking.Attempt
	credential string
	handle     ports.CheckoutHandle
	expiresAt  time.Time
	finishedAt time.Time
	done       chan struct{}
}

func (a *liveAttempt) snapshotLocked() AttemptSnapshot {
	snap := AttemptSnapshot{Attempt: a.rec}
	if a.rec.State == booking.StateAwaitingGateway && a.handle != nil {
		w := a.handle.Widget()
		snap.Checkout = &w
	}
	return snap
}

func (a *liveAttempt) snapshot() AttemptSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// BookingCoordinator drives booking attempts through their state machine.
// It holds at most one live attempt per (user, property), both in its own
// table and through AttemptSlots, accepts exactly one gateway event per
// attempt and releases the slot on every terminal state. A checkout left open
// past SlotTTL is withdrawn and cancelled. Attempts live in this process only.
type BookingCoordinator struct {
	ports     BookingPorts
	cfg       BookingConfig
	telemetry Telemetry
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	attempts map[string]*liveAttempt

	background sync.WaitGroup
}

// NewBookingCoordinator constructs a new BookingCoordinator.
func NewBookingCoordinator(opts BookingCoordinatorOptions) *BookingCoordinator {
	if opts.Ports.Booking == nil {
		panic("BookingAPI is required")
	}
	if opts.Ports.Gateway == nil {
		panic("PaymentGateway is required")
	}
	if opts.Ports.Slots == nil {
		panic("AttemptSlots is required")
	}
	cfg := opts.Config
	if cfg.SlotTTL <= 0 {
		cfg.SlotTTL = 30 * time.Minute
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 20 * time.Second
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 15 * time.Minute
	}
	return &BookingCoordinator{
		ports:     opts.Ports,
		cfg:       cfg,
		telemetry: opts.Telemetry,
		logger:    opts.Telemetry.logger(),
		now:       time.Now,
		attempts:  make(map[string]*liveAttempt),
	}
}

// Initiate starts a booking attempt for the session's user. Admins, anonymous
// and still-resolving sessions are refused before anything leaves the process,
// as is a second attempt while one is live for the same property. Backend and
// gateway failures end the attempt in a terminal state instead of an error.
func (c *BookingCoordinator) Initiate(ctx context.Context, state domainauth.SessionState, req booking.Request) (AttemptSnapshot, error) {
	ident, err := bookingIdentity(state)
	if err != nil {
		return AttemptSnapshot{}, err
	}
	if err := req.Validate(); err != nil {
		return AttemptSnapshot{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	key := booking.SlotKey(ident.UserID(), req.PropertyID)
	if err := c.claimPair(ctx, ident.UserID(), req.PropertyID); err != nil {
		return AttemptSnapshot{}, err
	}
	if c.cfg.RejectDuplicates {
		booked, err := c.ports.Slots.IsBooked(ctx, key)
		if err != nil {
			return AttemptSnapshot{}, fmt.Errorf("check booked: %w", err)
		}
		if booked {
			return AttemptSnapshot{}, apperrors.Conflict("You already have an appointment for this property.")
		}
	}
	attemptID := uuid.NewString()
	acquired, err := c.ports.Slots.Acquire(ctx, key, attemptID, c.cfg.SlotTTL)
	if err != nil {
		return AttemptSnapshot{}, fmt.Errorf("acquire booking slot: %w", err)
	}
	if !acquired {
		return AttemptSnapshot{}, errBookingInProgress
	}

	now := c.now()
	a := &liveAttempt{
		rec: booking.Attempt{
			ID:         attemptID,
			UserID:     ident.UserID(),
			PropertyID: req.PropertyID,
			Method:     req.Method,
			State:      booking.StateIdle,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		credential: ident.Credential(),
		expiresAt:  now.Add(c.cfg.SlotTTL),
		done:       make(chan struct{}),
	}
	c.mu.Lock()
	c.attempts[a.rec.ID] = a
	c.mu.Unlock()

	// The backend call must finish even if the client goes away; an appointment
	// it creates has to end up in a recorded state.
	work := context.WithoutCancel(ctx)
	c.advance(work, a, booking.StateInitiating, nil)

	in, err := c.ports.Booking.Book(work, a.credential, req)
	if err != nil {
		c.logger.Warn("booking initiation failed",
			zap.String("attempt_id", a.rec.ID),
			zap.String("property_id", req.PropertyID),
			zap.Error(err))
		c.finish(work, a, booking.StateInitiationFailed, err, func(r *booking.Attempt) {
			r.Reason = apperrors.UserMessage(err, defaultInitiationFailure)
		})
		return a.snapshot(), nil
	}

	if in.PayOnVisit {
		c.finish(work, a, booking.StateConfirmedDeferred, nil, func(r *booking.Attempt) {
			r.AppointmentID = in.AppointmentID
		})
		return a.snapshot(), nil
	}

	params, err := in.CheckoutParams(c.cfg.DisplayName, c.describe(work, req.PropertyID))
	if err != nil {
		c.finish(work, a, booking.StateInitiationFailed, err, func(r *booking.Attempt) {
			r.AppointmentID = in.AppointmentID
			r.Reason = err.Error()
		})
		return a.snapshot(), nil
	}

	a.mu.Lock()
	handle, err := c.ports.Gateway.Open(work, params, &attemptEvents{coordinator: c, attempt: a})
	if err != nil {
		a.mu.Unlock()
		c.finish(work, a, booking.StateInitiationFailed, err, func(r *booking.Attempt) {
			r.AppointmentID = in.AppointmentID
			r.GatewayOrderID = in.OrderID
			r.Reason = apperrors.UserMessage(err, "Could not open the payment window.")
		})
		return a.snapshot(), nil
	}
	a.handle = handle
	c.transitionLocked(a, booking.StateAwaitingGateway, func(r *booking.Attempt) {
		r.AppointmentID = in.AppointmentID
		r.GatewayOrderID = in.OrderID
	})
	snap := a.snapshotLocked()
	a.mu.Unlock()

	c.record(work, snap.Attempt)
	return snap, nil
}

var errBookingInProgress = apperrors.Conflict("A booking for this property is already in progress.")

// claimPair refuses a new attempt while one of the user's attempts for the
// property is live. Checkouts open past their deadline are withdrawn first.
func (c *BookingCoordinator) claimPair(ctx context.Context, userID, propertyID string) error {
	now := c.now()
	for _, a := range c.liveAttempts() {
		a.mu.Lock()
		match := a.rec.UserID == userID && a.rec.PropertyID == propertyID
		state := a.rec.State
		stale := !now.Before(a.expiresAt)
		a.mu.Unlock()
		if !match || state.Terminal() {
			continue
		}
		if stale && c.expire(ctx, a) {
			continue
		}
		return errBookingInProgress
	}
	return nil
}

// expire withdraws the checkout of an attempt still waiting for the gateway
// and cancels the attempt. It reports false when the attempt was not waiting
// or the checkout had already reported.
func (c *BookingCoordinator) expire(ctx context.Context, a *liveAttempt) bool {
	a.mu.Lock()
	handle := a.handle
	waiting := a.rec.State == booking.StateAwaitingGateway
	a.mu.Unlock()
	if !waiting || handle == nil || !handle.Close() {
		return false
	}
	c.finish(ctx, a, booking.StateGatewayCancelled, nil, func(r *booking.Attempt) {
		r.Reason = "Checkout expired."
	})
	c.logger.Info("booking checkout expired", zap.String("attempt_id", a.snapshot().Attempt.ID))
	return true
}

func (c *BookingCoordinator) liveAttempts() []*liveAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*liveAttempt, 0, len(c.attempts))
	for _, a := range c.attempts {
		out = append(out, a)
	}
	return out
}

func bookingIdentity(state domainauth.SessionState) (domainauth.Identity, error) {
	if state.Resolving {
		return domainauth.Identity{}, apperrors.Unauthorized("Your session is still loading. Please try again.")
	}
	switch state.Identity.Kind() {
	case domainauth.KindUser:
		return state.Identity, nil
	case domainauth.KindAdmin:
		return domainauth.Identity{}, apperrors.Forbidden("Admins cannot book appointments.")
	default:
		return domainauth.Identity{}, apperrors.Unauthorized("Please log in to book an appointment.")
	}
}

func (c *BookingCoordinator) describe(ctx context.Context, propertyID string) string {
	if c.ports.Catalog == nil {
		return "Property viewing"
	}
	p, err := c.ports.Catalog.GetProperty(ctx, propertyID)
	if err != nil || strings.TrimSpace(p.Location) == "" {
		return "Property viewing"
	}
	return "Booking for " + p.Location
}

// HandleGatewayEvent forwards a checkout callback for one of the user's
// attempts. Only the first event counts; later ones return the current state.
// For a success it waits, as long as ctx allows, for verification to finish.
func (c *BookingCoordinator) HandleGatewayEvent(
	ctx context.Context,
	ident domainauth.Identity,
	attemptID string,
	ev ports.GatewayEvent,
) (AttemptSnapshot, error) {
	switch ev.Kind {
	case ports.GatewayEventSuccess:
		if err := ev.Success.Validate(); err != nil {
			return AttemptSnapshot{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Incomplete payment confirmation.")
		}
	case ports.GatewayEventFailure, ports.GatewayEventDismiss:
	default:
		return AttemptSnapshot{}, apperrors.Validationf("unknown gateway event %q", ev.Kind)
	}

	a, err := c.lookup(ident, attemptID)
	if err != nil {
		return AttemptSnapshot{}, err
	}

	a.mu.Lock()
	handle := a.handle
	a.mu.Unlock()

	accepted := handle != nil && handle.Emit(context.WithoutCancel(ctx), ev)
	c.telemetry.Metrics.RecordGatewayEvent(string(ev.Kind), accepted)
	if !accepted {
		c.logger.Debug("gateway event ignored",
			zap.String("attempt_id", attemptID),
			zap.String("kind", string(ev.Kind)))
		return a.snapshot(), nil
	}

	if ev.Kind == ports.GatewayEventSuccess {
		select {
		case <-a.done:
		case <-ctx.Done():
		}
	}
	return a.snapshot(), nil
}

// Attempt returns one of the user's attempts.
func (c *BookingCoordinator) Attempt(_ context.Context, ident domainauth.Identity, attemptID string) (AttemptSnapshot, error) {
	a, err := c.lookup(ident, attemptID)
	if err != nil {
		return AttemptSnapshot{}, err
	}
	return a.snapshot(), nil
}

// Acknowledge discards a terminal attempt once its notice has been shown.
func (c *BookingCoordinator) Acknowledge(_ context.Context, ident domainauth.Identity, attemptID string) (booking.Attempt, error) {
	a, err := c.lookup(ident, attemptID)
	if err != nil {
		return booking.Attempt{}, err
	}
	snap := a.snapshot()
	if !snap.Attempt.State.Terminal() {
		return booking.Attempt{}, apperrors.Conflict("This booking is still in progress.")
	}
	c.mu.Lock()
	delete(c.attempts, attemptID)
	c.mu.Unlock()
	return snap.Attempt, nil
}

// ReconciliationCases lists payments that succeeded at the gateway but were
// not confirmed by the backend, newest first.
func (c *BookingCoordinator) ReconciliationCases(ctx context.Context, limit int) ([]booking.Attempt, error) {
	if c.ports.Ledger != nil {
		cases, err := c.ports.Ledger.ListByState(ctx, booking.StateVerificationFailed, limit)
		if err != nil {
			return nil, fmt.Errorf("list reconciliation cases: %w", err)
		}
		return cases, nil
	}

	var out []booking.Attempt
	for _, a := range c.liveAttempts() {
		if snap := a.snapshot(); snap.Attempt.State == booking.StateVerificationFailed {
			out = append(out, snap.Attempt)
		}
	}
	sortAttemptsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortAttemptsNewestFirst(in []booking.Attempt) {
	for i := 1; i < len(in); i++ {
		for j := i; j > 0 && in[j].UpdatedAt.After(in[j-1].UpdatedAt); j-- {
			in[j], in[j-1] = in[j-1], in[j]
		}
	}
}

func (c *BookingCoordinator) lookup(ident domainauth.Identity, attemptID string) (*liveAttempt, error) {
	c.mu.Lock()
	a, ok := c.attempts[attemptID]
	c.mu.Unlock()
	if !ok || ident.IsAnonymous() {
		return nil, apperrors.NotFound("Booking not found.")
	}
	a.mu.Lock()
	owner := a.rec.UserID
	a.mu.Unlock()
	if owner != ident.UserID() {
		return nil, apperrors.NotFound("Booking not found.")
	}
	return a, nil
}

// attemptEvents receives the single event of one checkout.
type attemptEvents struct {
	coordinator *BookingCoordinator
	attempt     *liveAttempt
}

func (e *attemptEvents) OnSuccess(ctx context.Context, payload booking.GatewaySuccess) {
	c, a := e.coordinator, e.attempt
	a.mu.Lock()
	if a.rec.State != booking.StateAwaitingGateway {
		a.mu.Unlock()
		return
	}
	c.transitionLocked(a, booking.StateVerifying, func(r *booking.Attempt) {
		r.PaymentID = payload.PaymentID
	})
	snap := a.rec
	a.mu.Unlock()
	c.record(ctx, snap)

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.verify(ctx, a, payload)
	}()
}

func (e *attemptEvents) OnFailure(ctx context.Context, reason string) {
	e.coordinator.finish(ctx, e.attempt, booking.StateGatewayFailed, apperrors.PaymentDeclined(reason), func(r *booking.Attempt) {
		r.Reason = strings.TrimSpace(reason)
	})
}

func (e *attemptEvents) OnDismiss(ctx context.Context) {
	e.coordinator.finish(ctx, e.attempt, booking.StateGatewayCancelled, nil, nil)
}

// verify confirms a gateway payment with the backend. It is never retried:
// a failure here means money moved and the attempt needs reconciliation.
func (c *BookingCoordinator) verify(ctx context.Context, a *liveAttempt, payload booking.GatewaySuccess) {
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.VerifyTimeout)
	defer cancel()

	a.mu.Lock()
	credential := a.credential
	appointmentID := a.rec.AppointmentID
	a.mu.Unlock()

	start := c.now()
	err := c.ports.Booking.VerifyPayment(vctx, credential, booking.Verification{
		OrderID:       payload.OrderID,
		PaymentID:     payload.PaymentID,
		Signature:     payload.Signature,
		AppointmentID: appointmentID,
	})
	c.telemetry.Metrics.ObserveVerification(c.now().Sub(start), err == nil)

	if err == nil {
		c.finish(vctx, a, booking.StateConfirmedPaid, nil, nil)
		return
	}

	reason := apperrors.UserMessage(err, defaultVerificationFailure)
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "Payment confirmation timed out."
	}
	c.logger.Error("payment verification failed",
		zap.String("attempt_id", a.snapshot().Attempt.ID),
		zap.String("order_id", payload.OrderID),
		zap.String("payment_id", payload.PaymentID),
		zap.Error(err))
	c.finish(vctx, a, booking.StateVerificationFailed, apperrors.Reconciliation(reason, err), func(r *booking.Attempt) {
		r.Reason = reason
	})
	c.alert(ctx, a.snapshot().Attempt)
}

func (c *BookingCoordinator) alert(ctx context.Context, rec booking.Attempt) {
	if c.ports.Alerts == nil {
		return
	}
	err := c.ports.Alerts.SendReconciliation(context.WithoutCancel(ctx), notify.ReconciliationPayload{
		AttemptID:      rec.ID,
		UserID:         rec.UserID,
		PropertyID:     rec.PropertyID,
		AppointmentID:  rec.AppointmentID,
		GatewayOrderID: rec.GatewayOrderID,
		PaymentID:      rec.PaymentID,
		Reason:         rec.Reason,
		Severity:       notify.SeverityCritical,
		OccurredAt:     rec.UpdatedAt,
		Metadata:       map[string]string{"payment_method": string(rec.Method)},
	})
	c.telemetry.Metrics.RecordNotification(err == nil)
	if err != nil {
		c.logger.Error("send reconciliation alert failed", zap.String("attempt_id", rec.ID), zap.Error(err))
	}
}

// advance moves a non-terminal attempt and records the transition.
func (c *BookingCoordinator) advance(ctx context.Context, a *liveAttempt, to booking.State, mutate func(*booking.Attempt)) {
	a.mu.Lock()
	ok := c.transitionLocked(a, to, mutate)
	snap := a.rec
	a.mu.Unlock()
	if ok {
		c.record(ctx, snap)
	}
}

// transitionLocked applies one state machine edge. Callers hold a.mu.
func (c *BookingCoordinator) transitionLocked(a *liveAttempt, to booking.State, mutate func(*booking.Attempt)) bool {
	if !booking.CanTransition(a.rec.State, to) {
		c.logger.Warn("illegal booking transition",
			zap.String("attempt_id", a.rec.ID),
			zap.String("from", string(a.rec.State)),
			zap.String("to", string(to)))
		return false
	}
	if mutate != nil {
		mutate(&a.rec)
	}
	a.rec.State = to
	a.rec.UpdatedAt = c.now()
	return true
}

// finish moves the attempt to a terminal state, releases its slot, records
// the transition and counts the outcome. Waiters on done are woken last.
func (c *BookingCoordinator) finish(ctx context.Context, a *liveAttempt, to booking.State, cause error, mutate func(*booking.Attempt)) {
	a.mu.Lock()
	if !c.transitionLocked(a, to, mutate) {
		a.mu.Unlock()
		return
	}
	a.handle = nil
	a.finishedAt = a.rec.UpdatedAt
	snap := a.rec
	a.mu.Unlock()
	defer close(a.done)

	ctx = context.WithoutCancel(ctx)
	key := booking.SlotKey(snap.UserID, snap.PropertyID)
	if err := c.ports.Slots.Release(ctx, key, snap.ID); err != nil {
		c.logger.Error("release booking slot failed", zap.String("slot", key), zap.Error(err))
	}
	if to.Confirmed() && c.cfg.RejectDuplicates {
		if err := c.ports.Slots.MarkBooked(ctx, key); err != nil {
			c.logger.Error("mark property booked failed", zap.String("slot", key), zap.Error(err))
		}
	}
	c.record(ctx, snap)
	class := "none"
	if cause != nil {
		class = obserrors.Classify(cause)
	}
	c.telemetry.Metrics.RecordBookingOutcome(string(to), string(snap.Method), class)

	c.logger.Info("booking attempt finished",
		zap.String("attempt_id", snap.ID),
		zap.String("user_id", snap.UserID),
		zap.String("property_id", snap.PropertyID),
		zap.String("state", string(to)))
}

func (c *BookingCoordinator) record(ctx context.Context, snap booking.Attempt) {
	if c.ports.Ledger == nil {
		return
	}
	if err := c.ports.Ledger.Record(context.WithoutCancel(ctx), snap); err != nil {
		c.logger.Warn("record booking transition failed",
			zap.String("attempt_id", snap.ID),
			zap.String("state", string(snap.State)),
			zap.Error(err))
	}
}

// Sweep cancels checkouts open past their deadline and forgets terminal
// attempts finished before now-Retention. It returns the number forgotten.
func (c *BookingCoordinator) Sweep(now time.Time) int {
	cutoff := now.Add(-c.cfg.Retention)

	var overdue []*liveAttempt
	var forget []string
	for _, a := range c.liveAttempts() {
		a.mu.Lock()
		switch {
		case a.rec.State.Terminal() && a.finishedAt.Before(cutoff):
			forget = append(forget, a.rec.ID)
		case a.rec.State == booking.StateAwaitingGateway && !now.Before(a.expiresAt):
			overdue = append(overdue, a)
		}
		a.mu.Unlock()
	}

	for _, a := range overdue {
		c.expire(context.Background(), a)
	}

	c.mu.Lock()
	for _, id := range forget {
		delete(c.attempts, id)
	}
	c.mu.Unlock()
	return len(forget)
}

// Run sweeps attempts until ctx is done.
func (c *BookingCoordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(max(min(c.cfg.Retention, c.cfg.SlotTTL)/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep(c.now())
		}
	}
}

// Wait blocks until in-flight verifications finish or ctx is done.
func (c *BookingCoordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
