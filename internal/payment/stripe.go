package payment

import (
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"os"
	"strings"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

type stripeGateway struct {
	webhookSecret string
	successUrl    string
	cancelUrl     string
}

// NewStripeGateway reads its keys from the environment. The success url gets
// the session id templated in so the redirect completion path can identify
// the booking without a cookie.
func NewStripeGateway() Gateway {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	successUrl := os.Getenv("PAYMENT_SUCCESS_URL")
	if successUrl == "" {
		successUrl = "http://localhost:8080/payments/success"
	}
	if !strings.Contains(successUrl, "session_id=") {
		successUrl += "?session_id={CHECKOUT_SESSION_ID}"
	}

	cancelUrl := os.Getenv("PAYMENT_CANCEL_URL")
	if cancelUrl == "" {
		cancelUrl = "http://localhost:8080/payments/cancelled"
	}

	return &stripeGateway{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		successUrl:    successUrl,
		cancelUrl:     cancelUrl,
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(input.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.Description),
					},
					UnitAmount: stripe.Int64(input.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successUrl),
		CancelURL:         stripe.String(g.cancelUrl),
		CustomerEmail:     stripe.String(input.CustomerEmail),
		ClientReferenceID: stripe.String(input.Reference),
	}
	params.Context = ctx

	for key, value := range CompactMetadata(input.Metadata) {
		params.AddMetadata(key, value)
	}

	sess, err := session.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("creating checkout session: %w", err)
	}

	return fromStripeSession(sess), nil
}

func (g *stripeGateway) GetSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	sess, err := session.Get(id, params)
	if err != nil {
		return Session{}, fmt.Errorf("fetching checkout session %s: %w", id, err)
	}

	return fromStripeSession(sess), nil
}

func (g *stripeGateway) ParseWebhook(payload []byte, signatureHeader string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("webhook signature verification: %w", err)
	}

	event := Event{Type: string(stripeEvent.Type)}

	switch event.Type {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var sess stripe.CheckoutSession
		if err := jsonEncoding.Unmarshal(stripeEvent.Data.Raw, &sess); err != nil {
			return Event{}, fmt.Errorf("parsing checkout session event: %w", err)
		}

		mapped := fromStripeSession(&sess)
		event.Session = &mapped
		event.PaymentIntentID = mapped.PaymentIntentID
	case EventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err := jsonEncoding.Unmarshal(stripeEvent.Data.Raw, &intent); err != nil {
			return Event{}, fmt.Errorf("parsing payment intent event: %w", err)
		}

		event.PaymentIntentID = intent.ID
	}

	return event, nil
}

func fromStripeSession(sess *stripe.CheckoutSession) Session {
	mapped := Session{
		ID:            sess.ID,
		URL:           sess.URL,
		AmountTotal:   sess.AmountTotal,
		Currency:      strings.ToUpper(string(sess.Currency)),
		PaymentStatus: string(sess.PaymentStatus),
		Metadata:      sess.Metadata,
	}

	if sess.PaymentIntent != nil {
		mapped.PaymentIntentID = sess.PaymentIntent.ID
	}

	return mapped
}
