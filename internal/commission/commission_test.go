package commission_test

import (
	"testing"

	"bitbucket.org/crgw/booking-engine/internal/commission"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	assert.Equal(t, 10.80, commission.Amount(108, 0.10))
	assert.Equal(t, 12.35, commission.Amount(98.76, 0.125))
	assert.Equal(t, 0.0, commission.Amount(0, 0.10))
}

func TestRateFromEnv(t *testing.T) {
	t.Run("should use the configured rate", func(t *testing.T) {
		t.Setenv("COMMISSION_RATE", "0.15")
		assert.Equal(t, 0.15, commission.RateFromEnv())
	})

	t.Run("should fall back on garbage or out-of-range values", func(t *testing.T) {
		t.Setenv("COMMISSION_RATE", "fifteen percent")
		assert.Equal(t, 0.10, commission.RateFromEnv())

		t.Setenv("COMMISSION_RATE", "1.5")
		assert.Equal(t, 0.10, commission.RateFromEnv())
	})

	t.Run("should default when unset", func(t *testing.T) {
		t.Setenv("COMMISSION_RATE", "")
		assert.Equal(t, 0.10, commission.RateFromEnv())
	})
}
