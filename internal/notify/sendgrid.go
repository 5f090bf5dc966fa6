package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridNotifier struct {
	client        *sendgrid.Client
	fromEmail     string
	fromName      string
	operatorEmail string
	logger        *zerolog.Logger
}

// NewSendgridNotifier falls back to a nop when the API key is missing so
// local environments run without mail credentials.
func NewSendgridNotifier(logger *zerolog.Logger) Notifier {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		logger.Warn().Msg("SENDGRID_API_KEY not set, notifications disabled")
		return NopNotifier{}
	}

	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Bookings"
	}

	return &sendgridNotifier{
		client:        sendgrid.NewSendClient(apiKey),
		fromEmail:     os.Getenv("SENDGRID_FROM_EMAIL"),
		fromName:      fromName,
		operatorEmail: os.Getenv("OPERATOR_ALERT_EMAIL"),
		logger:        logger,
	}
}

func (n *sendgridNotifier) BookingConfirmed(ctx context.Context, confirmation Confirmation) error {
	subject := fmt.Sprintf("Booking %s confirmed", confirmation.BookingNumber)
	body := fmt.Sprintf(
		"Your booking %s (%s) is confirmed.\nSupplier confirmation: %s\nTotal charged: %.2f %s\n",
		confirmation.BookingNumber,
		confirmation.VehicleModel,
		confirmation.SupplierReference,
		confirmation.GrandTotal,
		confirmation.Currency,
	)

	return n.send(confirmation.CustomerName, confirmation.CustomerEmail, subject, body)
}

func (n *sendgridNotifier) OperatorAlert(ctx context.Context, alert Alert) error {
	if n.operatorEmail == "" {
		n.logger.Error().
			Str("bookingNumber", alert.BookingNumber).
			Str("source", alert.Source).
			Str("reason", alert.Reason).
			Msg("no operator alert email configured, alert only logged")
		return nil
	}

	subject := fmt.Sprintf("ACTION REQUIRED: reservation failed for paid booking %s", alert.BookingNumber)
	body := fmt.Sprintf(
		"Booking %s (%s) was paid but the %s reservation failed.\nReason: %s\nRetry it from the operations endpoint.\n",
		alert.BookingNumber,
		alert.Reference,
		alert.Source,
		alert.Reason,
	)

	return n.send("Operations", n.operatorEmail, subject, body)
}

func (n *sendgridNotifier) send(toName, toEmail, subject, body string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	response, err := n.client.Send(message)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	return nil
}
