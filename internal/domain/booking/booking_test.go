package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("Razorpay")
	require.NoError(t, err)
	assert.Equal(t, MethodGateway, m)

	m, err = ParsePaymentMethod("Pay on Visit")
	require.NoError(t, err)
	assert.Equal(t, MethodPayOnVisit, m)

	_, err = ParsePaymentMethod("razorpay")
	assert.Error(t, err)
	_, err = ParsePaymentMethod("")
	assert.Error(t, err)
}

func TestRequest_Validate(t *testing.T) {
	assert.NoError(t, Request{PropertyID: "P123", Method: MethodPayOnVisit}.Validate())
	assert.Error(t, Request{PropertyID: "  ", Method: MethodPayOnVisit}.Validate())
	assert.Error(t, Request{PropertyID: "P123", Method: "Cash"}.Validate())
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]State{
		{StateIdle, StateInitiating},
		{StateInitiating, StateConfirmedDeferred},
		{StateInitiating, StateAwaitingGateway},
		{StateInitiating, StateInitiationFailed},
		{StateAwaitingGateway, StateVerifying},
		{StateAwaitingGateway, StateGatewayFailed},
		{StateAwaitingGateway, StateGatewayCancelled},
		{StateVerifying, StateConfirmedPaid},
		{StateVerifying, StateVerificationFailed},
	}
	for _, edge := range allowed {
		assert.True(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	denied := [][2]State{
		{StateVerifying, StateGatewayCancelled},
		{StateAwaitingGateway, StateConfirmedPaid},
		{StateConfirmedPaid, StateVerifying},
		{StateGatewayCancelled, StateAwaitingGateway},
		{StateIdle, StateAwaitingGateway},
	}
	for _, edge := range denied {
		assert.False(t, CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}
}

func TestState_TerminalStatesHaveNoExits(t *testing.T) {
	all := []State{
		StateIdle, StateInitiating, StateConfirmedDeferred, StateAwaitingGateway, StateVerifying,
		StateConfirmedPaid, StateVerificationFailed, StateInitiationFailed, StateGatewayFailed, StateGatewayCancelled,
	}
	for _, s := range all {
		if s.Terminal() {
			assert.Empty(t, transitions[s], "terminal state %s has exits", s)
		} else {
			assert.NotEmpty(t, transitions[s], "non-terminal state %s has no exits", s)
		}
	}
}

func TestInitiation_CheckoutParams(t *testing.T) {
	in := Initiation{
		AppointmentID: "A1",
		KeyID:         "K",
		OrderID:       "O1",
		Amount:        100000,
		Currency:      "INR",
		UserName:      "Asha",
		UserEmail:     "asha@example.com",
	}
	p, err := in.CheckoutParams("Merchant", "Booking for Sector 17")
	require.NoError(t, err)
	assert.Equal(t, CheckoutParams{
		ProviderKeyID:    "K",
		GatewayOrderID:   "O1",
		AmountMinorUnits: 100000,
		Currency:         "INR",
		DisplayName:      "Merchant",
		Description:      "Booking for Sector 17",
		PrefillName:      "Asha",
		PrefillEmail:     "asha@example.com",
	}, p)

	in.OrderID = ""
	in.Amount = 0
	_, err = in.CheckoutParams("Merchant", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "razorpayOrderId")
	assert.Contains(t, err.Error(), "amount")
}

func TestAttempt_Outcome(t *testing.T) {
	tests := []struct {
		state State
		want  OutcomeKind
	}{
		{StateIdle, OutcomePending},
		{StateInitiating, OutcomePending},
		{StateConfirmedDeferred, OutcomeConfirmedDeferred},
		{StateAwaitingGateway, OutcomeAwaitingGateway},
		{StateVerifying, OutcomeAwaitingGateway},
		{StateConfirmedPaid, OutcomeConfirmedPaid},
		{StateGatewayFailed, OutcomeFailed},
		{StateVerificationFailed, OutcomeFailed},
		{StateGatewayCancelled, OutcomeCancelled},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			a := Attempt{State: tt.state, AppointmentID: "A1", GatewayOrderID: "O1", Reason: "r"}
			assert.Equal(t, tt.want, a.Outcome().Kind)
		})
	}
}

func TestGatewaySuccess_Validate(t *testing.T) {
	assert.NoError(t, GatewaySuccess{OrderID: "O", PaymentID: "P", Signature: "S"}.Validate())
	assert.Error(t, GatewaySuccess{OrderID: "O", PaymentID: "P"}.Validate())
}
