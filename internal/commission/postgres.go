package commission

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresRecorder struct {
	db   *sql.DB
	rate float64
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{
		db:   db,
		rate: RateFromEnv(),
	}
}

func (r *PostgresRecorder) RecordConfirmation(ctx context.Context, attribution Attribution) error {
	if attribution.AffiliateCode == "" {
		return nil
	}

	// the unique constraint on booking_reference makes a re-confirmed booking
	// idempotent for attribution
	query := `
	INSERT INTO affiliate_commissions (
		booking_reference, booking_number, affiliate_code,
		booking_total, commission_rate, commission_amount, currency, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	ON CONFLICT (booking_reference) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		attribution.BookingReference, attribution.BookingNumber, attribution.AffiliateCode,
		attribution.GrandTotal, r.rate, Amount(attribution.GrandTotal, r.rate), attribution.Currency,
	)
	if err != nil {
		return fmt.Errorf("recording commission for %s: %w", attribution.BookingReference, err)
	}

	return nil
}

var _ Recorder = (*PostgresRecorder)(nil)
