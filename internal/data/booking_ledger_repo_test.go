package data

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
	"github.com/tejinder0007/real-estate-frontend/internal/testutil"
)

func newAttempt(state booking.State, at time.Time) booking.Attempt {
	return booking.Attempt{
		ID:         uuid.NewString(),
		UserID:     "u1",
		PropertyID: "P123",
		Method:     booking.MethodGateway,
		State:      state,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

func TestBookingLedgerRepo_RecordUpserts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	repo := NewBookingLedgerRepo(db)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Millisecond)

	a := newAttempt(booking.StateInitiating, start)
	require.NoError(t, repo.Record(ctx, a))

	a.State = booking.StateAwaitingGateway
	a.AppointmentID = "A1"
	a.GatewayOrderID = "O1"
	a.UpdatedAt = start.Add(time.Second)
	require.NoError(t, repo.Record(ctx, a))

	a.State = booking.StateVerifying
	a.PaymentID = "pay_1"
	a.UpdatedAt = start.Add(2 * time.Second)
	require.NoError(t, repo.Record(ctx, a))

	a.State = booking.StateVerificationFailed
	a.Reason = "signature mismatch"
	a.UpdatedAt = start.Add(3 * time.Second)
	require.NoError(t, repo.Record(ctx, a))

	got, err := repo.ListByState(ctx, booking.StateVerificationFailed, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, "A1", got[0].AppointmentID)
	assert.Equal(t, "O1", got[0].GatewayOrderID)
	assert.Equal(t, "pay_1", got[0].PaymentID)
	assert.Equal(t, "signature mismatch", got[0].Reason)
	assert.Equal(t, booking.MethodGateway, got[0].Method)
}

func TestBookingLedgerRepo_StaleSnapshotIgnored(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	repo := NewBookingLedgerRepo(db)
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Millisecond)

	a := newAttempt(booking.StateConfirmedPaid, start.Add(time.Minute))
	require.NoError(t, repo.Record(ctx, a))

	stale := a
	stale.State = booking.StateVerifying
	stale.UpdatedAt = start
	require.NoError(t, repo.Record(ctx, stale))

	got, err := repo.ListByState(ctx, booking.StateConfirmedPaid, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestBookingLedgerRepo_RejectsUnknownMethod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	repo := NewBookingLedgerRepo(db)
	a := newAttempt(booking.StateInitiating, time.Now())
	a.Method = "Cash"

	err := repo.Record(context.Background(), a)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBookingLedgerRepo_RecordRequiresID(t *testing.T) {
	repo := NewBookingLedgerRepo(nil)
	assert.Error(t, repo.Record(context.Background(), booking.Attempt{}))
}
