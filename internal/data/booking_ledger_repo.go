package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tejinder0007/real-estate-frontend/internal/data/pgxutil"
	"github.com/tejinder0007/real-estate-frontend/internal/domain/booking"
	apperrors "github.com/tejinder0007/real-estate-frontend/internal/errors"
)

const defaultLedgerListLimit = 100

// BookingLedgerRepo stores the latest snapshot of every booking attempt.
type BookingLedgerRepo struct {
	DB *sql.DB
}

// NewBookingLedgerRepo creates a new BookingLedgerRepo.
func NewBookingLedgerRepo(db *sql.DB) *BookingLedgerRepo {
	return &BookingLedgerRepo{DB: db}
}

// Record upserts the attempt. Older snapshots never overwrite newer ones.
func (r *BookingLedgerRepo) Record(ctx context.Context, a booking.Attempt) error {
	if a.ID == "" {
		return errors.New("attempt id is required")
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO booking_attempts (
			id, user_id, property_id, payment_method, state, appointment_id,
			gateway_order_id, payment_id, reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			state            = EXCLUDED.state,
			appointment_id   = COALESCE(EXCLUDED.appointment_id, booking_attempts.appointment_id),
			gateway_order_id = COALESCE(EXCLUDED.gateway_order_id, booking_attempts.gateway_order_id),
			payment_id       = COALESCE(EXCLUDED.payment_id, booking_attempts.payment_id),
			reason           = EXCLUDED.reason,
			updated_at       = EXCLUDED.updated_at
		WHERE booking_attempts.updated_at <= EXCLUDED.updated_at
	`,
		a.ID, a.UserID, a.PropertyID, string(a.Method), string(a.State), a.AppointmentID,
		a.GatewayOrderID, a.PaymentID, a.Reason, a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record attempt %s: %w", a.ID, apperrors.MapDBError(err))
	}
	return nil
}

// ListByState returns attempts currently in state, most recently updated first.
func (r *BookingLedgerRepo) ListByState(ctx context.Context, state booking.State, limit int) ([]booking.Attempt, error) {
	if limit <= 0 || limit > defaultLedgerListLimit {
		limit = defaultLedgerListLimit
	}

	var out []booking.Attempt
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id::text, user_id, property_id, payment_method, state,
				COALESCE(appointment_id, ''), COALESCE(gateway_order_id, ''),
				COALESCE(payment_id, ''), COALESCE(reason, ''), created_at, updated_at
			FROM booking_attempts
			WHERE state = $1
			ORDER BY updated_at DESC
			LIMIT $2
		`, string(state), limit)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, scanAttempt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list attempts by state: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

func scanAttempt(row pgx.CollectableRow) (booking.Attempt, error) {
	var (
		a             booking.Attempt
		method, state string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.PropertyID, &method, &state,
		&a.AppointmentID, &a.GatewayOrderID, &a.PaymentID, &a.Reason, &a.CreatedAt, &a.UpdatedAt,
	)
	a.Method = booking.PaymentMethod(method)
	a.State = booking.State(state)
	return a, err
}
