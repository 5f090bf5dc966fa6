// Package commission records affiliate attribution for confirmed bookings.
package commission

import (
	"context"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

const defaultRate = 0.10

// Attribution is one confirmed booking credited to an affiliate.
type Attribution struct {
	BookingReference string
	BookingNumber    string
	AffiliateCode    string
	GrandTotal       float64
	Currency         string
}

type Recorder interface {
	// RecordConfirmation is a no-op when the attribution carries no affiliate
	// code.
	RecordConfirmation(ctx context.Context, attribution Attribution) error
}

// RateFromEnv reads COMMISSION_RATE, falling back to the default when unset
// or unparsable.
func RateFromEnv() float64 {
	raw := os.Getenv("COMMISSION_RATE")
	if raw == "" {
		return defaultRate
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 || rate >= 1 {
		return defaultRate
	}

	return rate
}

// Amount computes the commission on a grand total, rounded to cents.
func Amount(grandTotal, rate float64) float64 {
	amount := decimal.NewFromFloat(grandTotal).Mul(decimal.NewFromFloat(rate)).Round(2)
	value, _ := amount.Float64()
	return value
}

type NopRecorder struct{}

func (NopRecorder) RecordConfirmation(ctx context.Context, attribution Attribution) error {
	return nil
}
