package booking

// State is a node of the booking attempt state machine.
type State string

const (
	StateIdle               State = "idle"
	StateInitiating         State = "initiating"
	StateConfirmedDeferred  State = "confirmed_deferred"
	StateAwaitingGateway    State = "awaiting_gateway"
	StateVerifying          State = "verifying"
	StateConfirmedPaid      State = "confirmed_paid"
	StateVerificationFailed State = "verification_failed"
	StateInitiationFailed   State = "initiation_failed"
	StateGatewayFailed      State = "gateway_failed"
	StateGatewayCancelled   State = "gateway_cancelled"
)

var transitions = map[State][]State{
	StateIdle:            {StateInitiating},
	StateInitiating:      {StateConfirmedDeferred, StateAwaitingGateway, StateInitiationFailed},
	StateAwaitingGateway: {StateVerifying, StateGatewayFailed, StateGatewayCancelled},
	StateVerifying:       {StateConfirmedPaid, StateVerificationFailed},
}

// CanTransition reports whether from -> to is an edge of the state machine.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s {
	case StateConfirmedDeferred, StateConfirmedPaid, StateVerificationFailed,
		StateInitiationFailed, StateGatewayFailed, StateGatewayCancelled:
		return true
	default:
		return false
	}
}

// Confirmed reports whether the attempt ended with a booked appointment.
func (s State) Confirmed() bool {
	return s == StateConfirmedDeferred || s == StateConfirmedPaid
}

// Failed reports whether the attempt ended with an error the user must see.
func (s State) Failed() bool {
	return s == StateInitiationFailed || s == StateGatewayFailed || s == StateVerificationFailed
}
