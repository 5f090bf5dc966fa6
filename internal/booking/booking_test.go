package booking_test

import (
	"testing"

	"bitbucket.org/crgw/booking-engine/internal/booking"
	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, booking.StatusDraft.CanTransitionTo(booking.StatusPaymentPending))
	assert.True(t, booking.StatusPaymentPending.CanTransitionTo(booking.StatusPaid))
	assert.True(t, booking.StatusPaymentPending.CanTransitionTo(booking.StatusCancelledByUser))
	assert.True(t, booking.StatusPaid.CanTransitionTo(booking.StatusReservationFailed))
	assert.True(t, booking.StatusReservationFailed.CanTransitionTo(booking.StatusReservationCreated))

	// money states never move backwards
	assert.False(t, booking.StatusPaid.CanTransitionTo(booking.StatusPaymentPending))
	assert.False(t, booking.StatusConfirmed.CanTransitionTo(booking.StatusDraft))
	assert.False(t, booking.StatusCancelledByUser.CanTransitionTo(booking.StatusPaymentPending))
	assert.False(t, booking.StatusExpired.CanTransitionTo(booking.StatusPaid))
}

func TestStatusFinal(t *testing.T) {
	assert.True(t, booking.StatusConfirmed.Final())
	assert.True(t, booking.StatusExpired.Final())
	assert.True(t, booking.StatusReservationFailed.Final())
	assert.False(t, booking.StatusDraft.Final())
	assert.False(t, booking.StatusPaid.Final())
}

func TestFormatBookingNumber(t *testing.T) {
	assert.Equal(t, "BK-2026-000042", booking.FormatBookingNumber(2026, 42))
	assert.Equal(t, "BK-2027-1000000", booking.FormatBookingNumber(2027, 1000000))
}
