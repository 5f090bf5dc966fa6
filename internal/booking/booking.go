// Package booking drives the draft → payment → supplier-reservation →
// confirmed lifecycle. Money captured from the customer is never re-derived
// after draft time: the reservation payload and both currency breakdowns are
// snapshotted on the booking row and replayed verbatim.
package booking

import (
	"fmt"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
)

type Status string

const (
	StatusDraft              Status = "draft"
	StatusPaymentPending     Status = "payment_pending"
	StatusPaid               Status = "paid"
	StatusReservationCreated Status = "reservation_created"
	StatusConfirmed          Status = "confirmed"
	StatusPaymentFailed      Status = "payment_failed"
	StatusReservationFailed  Status = "reservation_failed"
	StatusCancelledByUser    Status = "cancelled_by_user"
	StatusExpired            Status = "expired"
)

// transitions is the full lifecycle graph. reservation_failed is terminal for
// the automatic flow but operators can push it back through the reservation
// step.
var transitions = map[Status][]Status{
	StatusDraft:              {StatusPaymentPending},
	StatusPaymentPending:     {StatusPaid, StatusPaymentFailed, StatusCancelledByUser, StatusExpired},
	StatusPaid:               {StatusReservationCreated, StatusReservationFailed},
	StatusReservationCreated: {StatusConfirmed},
	StatusReservationFailed:  {StatusReservationCreated},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Final reports whether the automatic flow is done with the booking.
func (s Status) Final() bool {
	switch s {
	case StatusConfirmed, StatusPaymentFailed, StatusReservationFailed, StatusCancelledByUser, StatusExpired:
		return true
	}
	return false
}

type Booking struct {
	ID int64 `json:"-"`

	// Reference is the opaque internal id, BookingNumber the customer-facing
	// one.
	Reference     string `json:"reference"`
	BookingNumber string `json:"bookingNumber"`
	Status        Status `json:"status"`

	Source            string  `json:"source"`
	SupplierVehicleID string  `json:"supplierVehicleId"`
	SupplierReference *string `json:"supplierReference,omitempty"`

	PaymentSessionID *string `json:"paymentSessionId,omitempty"`
	PaymentIntentID  *string `json:"paymentIntentId,omitempty"`
	AmountPaid       *float64 `json:"amountPaid,omitempty"`

	Customer schema.Customer `json:"customer"`

	// Vehicle and Breakdown are immutable snapshots taken at draft time.
	// Breakdown is in the customer's currency, its Provider block carries the
	// supplier-currency amounts.
	Vehicle   schema.Vehicle       `json:"vehicle"`
	Breakdown schema.PriceBreakdown `json:"breakdown"`

	// ReservationPayload is the exact supplier request captured at draft
	// time, replayed after payment and on operator retries.
	ReservationPayload schema.ReservationRequest `json:"reservationPayload"`

	AffiliateCode string `json:"affiliateCode,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Payment is one append-only completion-signal record. Both the webhook and
// the redirect path write one, so a double signal is visible in the audit
// trail while the booking itself transitions once.
type Payment struct {
	ID        int64     `json:"-"`
	BookingID int64     `json:"-"`
	SessionID string    `json:"sessionId"`
	IntentID  string    `json:"intentId,omitempty"`
	Signal    string    `json:"signal"`
	Status    string    `json:"status"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"createdAt"`
}

// FormatBookingNumber renders the customer-facing number, e.g. BK-2026-000042.
func FormatBookingNumber(year int, sequence int64) string {
	return fmt.Sprintf("BK-%d-%06d", year, sequence)
}
