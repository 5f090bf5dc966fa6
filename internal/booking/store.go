package booking

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrConflict means the row was not in the expected status. Callers treat
	// it as "somebody else already moved this booking".
	ErrConflict = errors.New("booking status conflict")
)

type Store interface {
	// Create persists a draft and fills in ID, BookingNumber and timestamps.
	Create(ctx context.Context, b *Booking) error

	GetByReference(ctx context.Context, reference string) (*Booking, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*Booking, error)

	// Transition moves the booking from exactly the given status to the next
	// one. Returns ErrConflict when the row is not in from anymore.
	Transition(ctx context.Context, reference string, from, to Status) error

	// AttachPaymentSession stores the checkout session (and intent when
	// already known) on a draft booking.
	AttachPaymentSession(ctx context.Context, reference, sessionID, intentID string) error

	// ClaimForFinalization atomically flips payment_pending → paid for the
	// booking owning the session. claimed is false when another signal won
	// the race or the booking is in any other state; the booking returned is
	// the current row either way.
	ClaimForFinalization(ctx context.Context, sessionID string, amountPaid float64, intentID string) (*Booking, bool, error)

	// SetReservationOutcome records the supplier reservation result alongside
	// the status change.
	SetReservationOutcome(ctx context.Context, reference string, status Status, supplierReference *string) error

	AddPayment(ctx context.Context, payment Payment) error

	ListByStatus(ctx context.Context, status Status) ([]Booking, error)
}
