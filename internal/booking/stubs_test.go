package booking_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/booking"
	"bitbucket.org/crgw/booking-engine/internal/commission"
	"bitbucket.org/crgw/booking-engine/internal/currency"
	"bitbucket.org/crgw/booking-engine/internal/notify"
	"bitbucket.org/crgw/booking-engine/internal/payment"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"github.com/rs/zerolog"
)

type stubGateway struct {
	mu          sync.Mutex
	createInput payment.CheckoutInput
	createCalls int
	sessions    map[string]payment.Session
}

func newStubGateway() *stubGateway {
	return &stubGateway{sessions: map[string]payment.Session{}}
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, input payment.CheckoutInput) (payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.createCalls++
	g.createInput = input

	session := payment.Session{
		ID:            fmt.Sprintf("cs_test_%d", g.createCalls),
		URL:           "https://checkout.example.com/pay",
		AmountTotal:   input.Amount,
		Currency:      input.Currency,
		PaymentStatus: "unpaid",
		Metadata:      input.Metadata,
	}
	g.sessions[session.ID] = session

	return session, nil
}

func (g *stubGateway) GetSession(ctx context.Context, id string) (payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.sessions[id], nil
}

func (g *stubGateway) ParseWebhook(payload []byte, signatureHeader string) (payment.Event, error) {
	return payment.Event{}, nil
}

// markPaid flips the stored session into the state the gateway reports after
// a successful charge.
func (g *stubGateway) markPaid(sessionID, intentID string) payment.Session {
	g.mu.Lock()
	defer g.mu.Unlock()

	session := g.sessions[sessionID]
	session.PaymentStatus = payment.PaymentStatusPaid
	session.PaymentIntentID = intentID
	g.sessions[sessionID] = session

	return session
}

type stubSupplier struct {
	mu       sync.Mutex
	calls    int
	requests []schema.ReservationRequest
	result   schema.ReservationResult
	err      error
	delay    time.Duration
}

func (s *stubSupplier) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
	s.mu.Lock()
	s.calls++
	s.requests = append(s.requests, params)
	result, err, delay := s.result, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	return result, err
}

func (s *stubSupplier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubSupplier) setOutcome(result schema.ReservationResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.err = err
}

type stubResolver struct {
	supplier any
	err      error
}

func (r *stubResolver) GetSupplier(name string) (any, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.supplier, nil
}

type stubConverter struct {
	rate     float64
	degraded bool
	err      error
	calls    int
}

func (c *stubConverter) Convert(ctx context.Context, amount float64, from, to string) (*currency.Conversion, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}

	return &currency.Conversion{
		OriginalAmount:  amount,
		ConvertedAmount: amount * c.rate,
		From:            from,
		To:              to,
		Rate:            c.rate,
		Provider:        "test",
		Degraded:        c.degraded,
	}, nil
}

type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []notify.Confirmation
	alerts        []notify.Alert
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, confirmation notify.Confirmation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, confirmation)
	return nil
}

func (n *recordingNotifier) OperatorAlert(ctx context.Context, alert notify.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

type recordingCommission struct {
	mu           sync.Mutex
	attributions []commission.Attribution
}

func (c *recordingCommission) RecordConfirmation(ctx context.Context, attribution commission.Attribution) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attributions = append(c.attributions, attribution)
	return nil
}

type fixture struct {
	store        *booking.MemoryStore
	gateway      *stubGateway
	supplier     *stubSupplier
	converter    *stubConverter
	notifier     *recordingNotifier
	commission   *recordingCommission
	orchestrator *booking.Orchestrator
	reconciler   *booking.Reconciler
}

func newFixture() *fixture {
	f := &fixture{
		store:      booking.NewMemoryStore(),
		gateway:    newStubGateway(),
		supplier:   &stubSupplier{},
		converter:  &stubConverter{rate: 1.08},
		notifier:   &recordingNotifier{},
		commission: &recordingCommission{},
	}

	f.orchestrator = booking.NewOrchestrator(
		f.store,
		&stubResolver{supplier: f.supplier},
		f.gateway,
		f.converter,
		f.notifier,
		f.commission,
	)
	f.reconciler = booking.NewReconciler(f.orchestrator, f.gateway)

	return f
}

func completedEvent(session *payment.Session) payment.Event {
	return payment.Event{
		Type:    payment.EventCheckoutCompleted,
		Session: session,
	}
}

func createParamsTemplate() booking.CreateParams {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-09-10T09:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-09-12T09:00:00")

	return booking.CreateParams{
		Reservation: schema.ReservationRequest{
			Source:            schema.SourceRenteon,
			SupplierVehicleID: "ECAR-77",
			RateReference:     `{"offerId":"77"}`,
			PickUp:            schema.RequestLocation{Code: "SPU", DateTime: pickUp},
			DropOff:           schema.RequestLocation{Code: "SPU", DateTime: dropOff},
			Customer: schema.Customer{
				FirstName:     "Anna",
				LastName:      "Kovač",
				Email:         "anna@example.com",
				AffiliateCode: "AFF-7",
			},
			Breakdown: schema.PriceBreakdown{
				Currency:     "EUR",
				VehicleTotal: 100,
				GrandTotal:   100,
			},
		},
		Vehicle: schema.Vehicle{
			Source:            schema.SourceRenteon,
			SupplierVehicleID: "ECAR-77",
			Model:             "Opel Corsa",
			DailyPrice:        schema.PriceAmount{Amount: 50, Currency: "EUR"},
		},
		CustomerCurrency: "USD",
	}
}
