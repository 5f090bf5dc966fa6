package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"bitbucket.org/crgw/booking-engine/internal/commission"
	"bitbucket.org/crgw/booking-engine/internal/currency"
	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/notify"
	"bitbucket.org/crgw/booking-engine/internal/payment"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/interfaces"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrUnsupportedSource = errors.New("source does not support reservations")
	ErrNotCancellable    = errors.New("booking can only be cancelled while payment is pending")
	ErrNotRetryable      = errors.New("only failed reservations can be retried")

	// ErrReservationFailedAfterPayment marks the one failure mode where money
	// is already captured. The booking keeps its amount and waits for an
	// operator.
	ErrReservationFailedAfterPayment = errors.New("supplier reservation failed after payment")
)

type SupplierResolver interface {
	GetSupplier(name string) (any, error)
}

type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (*currency.Conversion, error)
}

type CreateParams struct {
	Reservation      schema.ReservationRequest `json:"reservation" binding:"required"`
	Vehicle          schema.Vehicle            `json:"vehicle" binding:"required"`
	CustomerCurrency string                    `json:"customerCurrency"`
}

type CreateResult struct {
	Reference     string                `json:"reference"`
	BookingNumber string                `json:"bookingNumber"`
	Status        Status                `json:"status"`
	CheckoutUrl   string                `json:"checkoutUrl"`
	SessionID     string                `json:"sessionId"`
	Breakdown     schema.PriceBreakdown `json:"breakdown"`
}

// Orchestrator owns every booking state change outside the reconciler's
// atomic claim.
type Orchestrator struct {
	store      Store
	suppliers  SupplierResolver
	gateway    payment.Gateway
	converter  CurrencyConverter
	notifier   notify.Notifier
	commission commission.Recorder
}

func NewOrchestrator(
	store Store,
	suppliers SupplierResolver,
	gateway payment.Gateway,
	converter CurrencyConverter,
	notifier notify.Notifier,
	commissionRecorder commission.Recorder,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		suppliers:  suppliers,
		gateway:    gateway,
		converter:  converter,
		notifier:   notifier,
		commission: commissionRecorder,
	}
}

func (o *Orchestrator) Store() Store {
	return o.store
}

// CreateBooking snapshots the reservation, prices it in the customer's
// currency and opens a checkout session. The booking leaves here in
// payment_pending with the session attached.
func (o *Orchestrator) CreateBooking(ctx context.Context, params CreateParams, logger *zerolog.Logger) (CreateResult, error) {
	if _, err := o.reservationAdapter(params.Reservation.Source); err != nil {
		return CreateResult{}, err
	}

	// the extras list going to the supplier is rebuilt against the vehicle
	// offer, required and included items go out whether the customer picked
	// them or not
	if len(params.Vehicle.Extras) > 0 {
		params.Reservation.Extras = normalizer.MergeSelectedExtras(params.Vehicle.Extras, selectedExtraQuantities(params.Reservation.Extras))
	}

	breakdown, err := o.customerBreakdown(ctx, params)
	if err != nil {
		return CreateResult{}, err
	}

	b := &Booking{
		Source:             params.Reservation.Source,
		SupplierVehicleID:  params.Reservation.SupplierVehicleID,
		Customer:           params.Reservation.Customer,
		Vehicle:            params.Vehicle,
		Breakdown:          breakdown,
		ReservationPayload: params.Reservation,
		AffiliateCode:      params.Reservation.Customer.AffiliateCode,
	}

	if err := o.store.Create(ctx, b); err != nil {
		return CreateResult{}, err
	}

	// the payload is replayed verbatim later; it must carry the identifiers
	// allocated above. Its breakdown stays in the supplier's currency.
	b.ReservationPayload.BookingNumber = b.BookingNumber
	b.ReservationPayload.BookingReference = b.Reference

	session, err := o.gateway.CreateCheckoutSession(ctx, payment.CheckoutInput{
		Amount:        minorUnits(float64(breakdown.GrandTotal)),
		Currency:      breakdown.Currency,
		Description:   fmt.Sprintf("Car rental %s (%s)", params.Vehicle.Model, b.BookingNumber),
		CustomerEmail: params.Reservation.Customer.Email,
		Reference:     b.Reference,
		Metadata:      o.sessionMetadata(b),
	})
	if err != nil {
		logger.Err(err).Str("reference", b.Reference).Msg("checkout session creation failed")
		return CreateResult{}, err
	}

	if err := o.store.AttachPaymentSession(ctx, b.Reference, session.ID, session.PaymentIntentID); err != nil {
		return CreateResult{}, err
	}

	if err := o.store.Transition(ctx, b.Reference, StatusDraft, StatusPaymentPending); err != nil {
		return CreateResult{}, err
	}

	logger.Info().
		Str("reference", b.Reference).
		Str("bookingNumber", b.BookingNumber).
		Str("sessionId", session.ID).
		Msg("booking created, awaiting payment")

	return CreateResult{
		Reference:     b.Reference,
		BookingNumber: b.BookingNumber,
		Status:        StatusPaymentPending,
		CheckoutUrl:   session.URL,
		SessionID:     session.ID,
		Breakdown:     breakdown,
	}, nil
}

func (o *Orchestrator) GetBooking(ctx context.Context, reference string) (*Booking, error) {
	return o.store.GetByReference(ctx, reference)
}

// Cancel is customer-initiated and only valid before payment completes.
func (o *Orchestrator) Cancel(ctx context.Context, reference string) error {
	err := o.store.Transition(ctx, reference, StatusPaymentPending, StatusCancelledByUser)
	if errors.Is(err, ErrConflict) {
		return ErrNotCancellable
	}
	return err
}

// Finalize runs the supplier reservation for a paid booking and settles the
// final state. Failures after this point never lose the captured amount.
func (o *Orchestrator) Finalize(ctx context.Context, b *Booking, logger *zerolog.Logger) error {
	adapter, err := o.reservationAdapter(b.Source)
	if err != nil {
		return o.reservationFailed(ctx, b, err.Error(), logger)
	}

	payload := b.ReservationPayload
	payload.BookingNumber = b.BookingNumber
	payload.BookingReference = b.Reference

	result, err := adapter.CreateReservation(ctx, payload, logger)
	if err != nil {
		return o.reservationFailed(ctx, b, err.Error(), logger)
	}

	if result.Status == schema.ReservationStatusFailed {
		reason := "supplier rejected the reservation"
		if result.Errors != nil && len(*result.Errors) > 0 {
			reason = (*result.Errors)[0].Message
		}
		return o.reservationFailed(ctx, b, reason, logger)
	}

	if err := o.store.SetReservationOutcome(ctx, b.Reference, StatusReservationCreated, result.SupplierReference); err != nil {
		return err
	}
	b.Status = StatusReservationCreated
	b.SupplierReference = result.SupplierReference

	// a pending supplier reservation stays in reservation_created until the
	// supplier confirms out of band
	if result.Status != schema.ReservationStatusOK {
		logger.Info().
			Str("reference", b.Reference).
			Msg("supplier reservation pending confirmation")
		return nil
	}

	return o.confirm(ctx, b, logger)
}

// RetryReservation is the operator path back from reservation_failed.
func (o *Orchestrator) RetryReservation(ctx context.Context, reference string, logger *zerolog.Logger) (*Booking, error) {
	b, err := o.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusReservationFailed {
		return nil, ErrNotRetryable
	}

	if err := o.Finalize(ctx, b, logger); err != nil {
		return b, err
	}

	return o.store.GetByReference(ctx, reference)
}

func (o *Orchestrator) ListFailedReservations(ctx context.Context) ([]Booking, error) {
	return o.store.ListByStatus(ctx, StatusReservationFailed)
}

func (o *Orchestrator) confirm(ctx context.Context, b *Booking, logger *zerolog.Logger) error {
	if err := o.store.Transition(ctx, b.Reference, StatusReservationCreated, StatusConfirmed); err != nil {
		return err
	}
	b.Status = StatusConfirmed

	supplierReference := ""
	if b.SupplierReference != nil {
		supplierReference = *b.SupplierReference
	}

	if err := o.commission.RecordConfirmation(ctx, commission.Attribution{
		BookingReference: b.Reference,
		BookingNumber:    b.BookingNumber,
		AffiliateCode:    b.AffiliateCode,
		GrandTotal:       float64(b.Breakdown.GrandTotal),
		Currency:         b.Breakdown.Currency,
	}); err != nil {
		logger.Err(err).Str("reference", b.Reference).Msg("commission attribution failed")
	}

	if err := o.notifier.BookingConfirmed(ctx, notify.Confirmation{
		BookingNumber:     b.BookingNumber,
		SupplierReference: supplierReference,
		CustomerName:      b.Customer.FirstName + " " + b.Customer.LastName,
		CustomerEmail:     b.Customer.Email,
		VehicleModel:      b.Vehicle.Model,
		GrandTotal:        float64(b.Breakdown.GrandTotal),
		Currency:          b.Breakdown.Currency,
	}); err != nil {
		logger.Err(err).Str("reference", b.Reference).Msg("confirmation mail failed")
	}

	logger.Info().
		Str("reference", b.Reference).
		Str("bookingNumber", b.BookingNumber).
		Str("supplierReference", supplierReference).
		Msg("booking confirmed")

	return nil
}

func (o *Orchestrator) reservationFailed(ctx context.Context, b *Booking, reason string, logger *zerolog.Logger) error {
	if err := o.store.SetReservationOutcome(ctx, b.Reference, StatusReservationFailed, nil); err != nil {
		return err
	}
	b.Status = StatusReservationFailed

	logger.Error().
		Str("reference", b.Reference).
		Str("bookingNumber", b.BookingNumber).
		Str("source", b.Source).
		Str("reason", reason).
		Msg("reservation failed for a paid booking")

	if err := o.notifier.OperatorAlert(ctx, notify.Alert{
		BookingNumber: b.BookingNumber,
		Reference:     b.Reference,
		Source:        b.Source,
		Reason:        reason,
	}); err != nil {
		logger.Err(err).Str("reference", b.Reference).Msg("operator alert failed")
	}

	return fmt.Errorf("%w: %s", ErrReservationFailedAfterPayment, reason)
}

func (o *Orchestrator) reservationAdapter(source string) (interfaces.WithCreateReservation, error) {
	supplier, err := o.suppliers.GetSupplier(source)
	if err != nil {
		return nil, err
	}

	adapter, ok := supplier.(interfaces.WithCreateReservation)
	if !ok {
		return nil, ErrUnsupportedSource
	}

	return adapter, nil
}

// customerBreakdown converts the supplier-currency snapshot into the
// customer's currency, keeping the provider amounts and the applied rate on
// the booking. Degraded rates price the booking anyway, they never block it.
func (o *Orchestrator) customerBreakdown(ctx context.Context, params CreateParams) (schema.PriceBreakdown, error) {
	breakdown := params.Reservation.Breakdown
	if params.CustomerCurrency == "" {
		return breakdown, nil
	}

	target := normalizer.NormalizeCurrencyCode(params.CustomerCurrency)
	if target == breakdown.Currency {
		return breakdown, nil
	}

	conversion, err := o.converter.Convert(ctx, float64(breakdown.GrandTotal), breakdown.Currency, target)
	if err != nil {
		return schema.PriceBreakdown{}, err
	}

	rate := conversion.Rate
	converted := schema.PriceBreakdown{
		Currency:      target,
		VehicleTotal:  convertAmount(breakdown.VehicleTotal, rate),
		ExtrasTotal:   convertAmount(breakdown.ExtrasTotal, rate),
		TaxTotal:      convertAmount(breakdown.TaxTotal, rate),
		DiscountTotal: convertAmount(breakdown.DiscountTotal, rate),
		GrandTotal:    schema.RoundedFloat(conversion.ConvertedAmount),
		Provider: &schema.ProviderBreakdown{
			Currency:      breakdown.Currency,
			VehicleTotal:  breakdown.VehicleTotal,
			ExtrasTotal:   breakdown.ExtrasTotal,
			TaxTotal:      breakdown.TaxTotal,
			DiscountTotal: breakdown.DiscountTotal,
			GrandTotal:    breakdown.GrandTotal,
		},
		ExchangeRate:  &rate,
		RatesDegraded: conversion.Degraded,
	}

	return converted, nil
}

// sessionMetadata snapshots the whole reservation context onto the checkout
// session. If the local row is ever lost, this is the record the booking gets
// rebuilt from, so every field the supplier reservation needs travels along.
func (o *Orchestrator) sessionMetadata(b *Booking) map[string]string {
	payload := b.ReservationPayload

	meta := map[string]string{
		"booking_reference":   b.Reference,
		"booking_number":      b.BookingNumber,
		"source":              b.Source,
		"supplier_vehicle_id": b.SupplierVehicleID,
		"rate_reference":      payload.RateReference,
		"customer_first_name": b.Customer.FirstName,
		"customer_last_name":  b.Customer.LastName,
		"customer_email":      b.Customer.Email,
		"customer_phone":      b.Customer.Phone,
		"customer_country":    b.Customer.ResidenceCountry,
		"affiliate_code":      b.AffiliateCode,
		"pickup_code":         payload.PickUp.Code,
		"pickup_datetime":     payload.PickUp.DateTime.Format(schema.DateTimeFormat),
		"dropoff_code":        payload.DropOff.Code,
		"dropoff_datetime":    payload.DropOff.DateTime.Format(schema.DateTimeFormat),
		"supplier_currency":   payload.Breakdown.Currency,
		"currency":            b.Breakdown.Currency,
		"grand_total":         fmt.Sprintf("%.2f", float64(b.Breakdown.GrandTotal)),
	}

	if len(payload.Extras) > 0 {
		meta["extras"] = encodeSessionExtras(payload.Extras)
	}

	return meta
}

// sessionExtra is the compact extras form stored in the session metadata. The
// provider caps a metadata value at 500 characters, so only the fields the
// reservation call sends survive the round trip.
type sessionExtra struct {
	Code     string  `json:"code"`
	Name     string  `json:"name,omitempty"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

func encodeSessionExtras(extras []schema.Extra) string {
	compact := make([]sessionExtra, 0, len(extras))
	for _, extra := range extras {
		compact = append(compact, sessionExtra{
			Code:     extra.Code,
			Name:     extra.Name,
			Quantity: extra.Quantity,
			Total:    float64(extra.Total.Amount),
		})
	}

	encoded, err := json.Marshal(compact)
	if err != nil {
		return ""
	}

	return string(encoded)
}

func decodeSessionExtras(encoded, currency string) []schema.Extra {
	if encoded == "" {
		return nil
	}

	var compact []sessionExtra
	if err := json.Unmarshal([]byte(encoded), &compact); err != nil {
		return nil
	}

	extras := make([]schema.Extra, 0, len(compact))
	for _, extra := range compact {
		extras = append(extras, schema.Extra{
			Code:     extra.Code,
			Name:     extra.Name,
			Quantity: extra.Quantity,
			Total:    schema.PriceAmount{Amount: schema.RoundedFloat(extra.Total), Currency: currency},
		})
	}

	return extras
}

func selectedExtraQuantities(extras []schema.Extra) map[string]int {
	selected := make(map[string]int, len(extras))
	for _, extra := range extras {
		quantity := extra.Quantity
		if quantity < 1 {
			quantity = 1
		}
		selected[extra.Code] = quantity
	}
	return selected
}

func convertAmount(amount schema.RoundedFloat, rate float64) schema.RoundedFloat {
	converted := decimal.NewFromFloat(float64(amount)).Mul(decimal.NewFromFloat(rate)).Round(2)
	value, _ := converted.Float64()
	return schema.RoundedFloat(value)
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
