// Package payment wraps the payment provider behind a small gateway
// interface so the booking flow can be exercised without network access.
package payment

import "context"

// Stripe caps metadata at 50 keys and 500 characters per value. Oversized
// values are dropped here and survive only in the booking's audit payload.
const (
	MaxMetadataKeys        = 50
	MaxMetadataValueLength = 500
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventCheckoutExpired     = "checkout.session.expired"
	EventPaymentIntentFailed = "payment_intent.payment_failed"
)

// PaymentStatusPaid is the provider's session payment status once the charge
// has been captured.
const PaymentStatusPaid = "paid"

type CheckoutInput struct {
	// Amount in the currency's minor units.
	Amount        int64
	Currency      string
	Description   string
	CustomerEmail string
	Reference     string
	Metadata      map[string]string
}

type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
	PaymentStatus   string
	Metadata        map[string]string
}

// Event is a provider webhook notification reduced to what the reconciler
// consumes.
type Event struct {
	Type            string
	Session         *Session
	PaymentIntentID string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ParseWebhook(payload []byte, signatureHeader string) (Event, error)
}

// CompactMetadata enforces the provider's metadata limits. Values over the
// limit are dropped rather than truncated, a truncated rate reference would
// be worse than none.
func CompactMetadata(metadata map[string]string) map[string]string {
	compacted := make(map[string]string, len(metadata))

	for key, value := range metadata {
		if len(compacted) == MaxMetadataKeys {
			break
		}

		if len(value) > MaxMetadataValueLength {
			continue
		}

		compacted[key] = value
	}

	return compacted
}
