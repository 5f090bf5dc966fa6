package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/payment"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"github.com/rs/zerolog"
)

var ErrUnknownSession = errors.New("no booking for checkout session")

// Reconciler turns payment signals into booking state. The webhook and the
// success redirect race for the same session; the store's conditional claim
// guarantees the supplier reservation runs exactly once.
type Reconciler struct {
	orchestrator *Orchestrator
	store        Store
	gateway      payment.Gateway
}

func NewReconciler(orchestrator *Orchestrator, gateway payment.Gateway) *Reconciler {
	return &Reconciler{
		orchestrator: orchestrator,
		store:        orchestrator.Store(),
		gateway:      gateway,
	}
}

// HandleEvent processes a parsed webhook event. A completed payment for a
// session we never issued surfaces ErrUnknownSession; expiry and failure
// signals for unknown bookings are dropped silently.
func (r *Reconciler) HandleEvent(ctx context.Context, event payment.Event, logger *zerolog.Logger) error {
	switch event.Type {
	case payment.EventCheckoutCompleted:
		if event.Session == nil {
			return nil
		}
		_, err := r.complete(ctx, event.Session, "webhook", logger)
		return err

	case payment.EventCheckoutExpired:
		if event.Session == nil {
			return nil
		}
		return r.expire(ctx, event.Session.ID, logger)

	case payment.EventPaymentIntentFailed:
		return r.paymentFailed(ctx, event.PaymentIntentID, logger)
	}

	logger.Debug().Str("type", event.Type).Msg("ignoring webhook event")
	return nil
}

// CompleteFromRedirect backs the customer's return page. It re-reads the
// session from the gateway rather than trusting the query string.
func (r *Reconciler) CompleteFromRedirect(ctx context.Context, sessionID string, logger *zerolog.Logger) (*Booking, error) {
	session, err := r.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.PaymentStatus != payment.PaymentStatusPaid {
		b, err := r.store.GetBySessionID(ctx, sessionID)
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownSession
		}
		return b, err
	}

	return r.complete(ctx, &session, "redirect", logger)
}

// complete claims the booking for finalization. Exactly one signal wins the
// claim and runs the supplier reservation; every other signal just observes
// the current state.
func (r *Reconciler) complete(ctx context.Context, session *payment.Session, signal string, logger *zerolog.Logger) (*Booking, error) {
	amountPaid := float64(session.AmountTotal) / 100

	b, claimed, err := r.store.ClaimForFinalization(ctx, session.ID, amountPaid, session.PaymentIntentID)
	if errors.Is(err, ErrNotFound) {
		// last resort: the money is captured but the local row is gone;
		// rebuild what the session metadata preserved and claim again
		if rebuildErr := r.rebuildFromSession(ctx, session, logger); rebuildErr != nil {
			return nil, rebuildErr
		}
		b, claimed, err = r.store.ClaimForFinalization(ctx, session.ID, amountPaid, session.PaymentIntentID)
	}
	if err != nil {
		return nil, err
	}

	if err := r.store.AddPayment(ctx, Payment{
		BookingID: b.ID,
		SessionID: session.ID,
		IntentID:  session.PaymentIntentID,
		Signal:    signal,
		Status:    session.PaymentStatus,
		Amount:    amountPaid,
		Currency:  session.Currency,
	}); err != nil {
		logger.Err(err).Str("reference", b.Reference).Msg("payment row insert failed")
	}

	if !claimed {
		logger.Info().
			Str("reference", b.Reference).
			Str("signal", signal).
			Str("status", string(b.Status)).
			Msg("payment already reconciled, skipping")
		return b, nil
	}

	logger.Info().
		Str("reference", b.Reference).
		Str("bookingNumber", b.BookingNumber).
		Str("signal", signal).
		Float64("amountPaid", amountPaid).
		Msg("payment captured, finalizing booking")

	if err := r.orchestrator.Finalize(ctx, b, logger); err != nil {
		// the reservation failure is already persisted and alerted on; the
		// signal itself was handled
		if errors.Is(err, ErrReservationFailedAfterPayment) {
			return b, nil
		}
		return b, err
	}

	return b, nil
}

func (r *Reconciler) rebuildFromSession(ctx context.Context, session *payment.Session, logger *zerolog.Logger) error {
	meta := session.Metadata
	if meta["booking_reference"] == "" || meta["source"] == "" {
		return ErrUnknownSession
	}

	grandTotal, _ := strconv.ParseFloat(meta["grand_total"], 64)
	pickUpAt, _ := time.Parse(schema.DateTimeFormat, meta["pickup_datetime"])
	dropOffAt, _ := time.Parse(schema.DateTimeFormat, meta["dropoff_datetime"])

	customer := schema.Customer{
		FirstName:        meta["customer_first_name"],
		LastName:         meta["customer_last_name"],
		Email:            meta["customer_email"],
		Phone:            meta["customer_phone"],
		ResidenceCountry: meta["customer_country"],
		AffiliateCode:    meta["affiliate_code"],
	}

	b := &Booking{
		Reference:         meta["booking_reference"],
		BookingNumber:     meta["booking_number"],
		Source:            meta["source"],
		SupplierVehicleID: meta["supplier_vehicle_id"],
		Customer:          customer,
		AffiliateCode:     meta["affiliate_code"],
		Breakdown: schema.PriceBreakdown{
			Currency:   meta["currency"],
			GrandTotal: schema.RoundedFloat(grandTotal),
		},
		ReservationPayload: schema.ReservationRequest{
			Source:            meta["source"],
			SupplierVehicleID: meta["supplier_vehicle_id"],
			RateReference:     meta["rate_reference"],
			PickUp:            schema.RequestLocation{Code: meta["pickup_code"], DateTime: pickUpAt},
			DropOff:           schema.RequestLocation{Code: meta["dropoff_code"], DateTime: dropOffAt},
			Customer:          customer,
			Extras:            decodeSessionExtras(meta["extras"], meta["supplier_currency"]),
			BookingNumber:     meta["booking_number"],
			BookingReference:  meta["booking_reference"],
		},
	}

	if err := r.store.Create(ctx, b); err != nil {
		return err
	}
	if err := r.store.AttachPaymentSession(ctx, b.Reference, session.ID, session.PaymentIntentID); err != nil {
		return err
	}
	if err := r.store.Transition(ctx, b.Reference, StatusDraft, StatusPaymentPending); err != nil {
		return err
	}

	logger.Warn().
		Str("reference", b.Reference).
		Str("sessionId", session.ID).
		Msg("rebuilt booking from session metadata")

	return nil
}

func (r *Reconciler) expire(ctx context.Context, sessionID string, logger *zerolog.Logger) error {
	b, err := r.store.GetBySessionID(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = r.store.Transition(ctx, b.Reference, StatusPaymentPending, StatusExpired)
	if errors.Is(err, ErrConflict) {
		// paid or cancelled before the session expired
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info().Str("reference", b.Reference).Msg("checkout session expired")
	return nil
}

func (r *Reconciler) paymentFailed(ctx context.Context, intentID string, logger *zerolog.Logger) error {
	if intentID == "" {
		return nil
	}

	b, err := r.store.GetByPaymentIntentID(ctx, intentID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = r.store.Transition(ctx, b.Reference, StatusPaymentPending, StatusPaymentFailed)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("marking payment failed: %w", err)
	}

	logger.Warn().
		Str("reference", b.Reference).
		Str("intentId", intentID).
		Msg("payment attempt failed")
	return nil
}
