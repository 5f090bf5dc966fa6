package payment_test

import (
	"strings"
	"testing"

	"bitbucket.org/crgw/booking-engine/internal/payment"
	"github.com/stretchr/testify/assert"
)

func TestCompactMetadata(t *testing.T) {
	t.Run("should drop oversized values instead of truncating them", func(t *testing.T) {
		compacted := payment.CompactMetadata(map[string]string{
			"booking_reference": "ref-1",
			"rate_reference":    strings.Repeat("x", payment.MaxMetadataValueLength+1),
		})

		assert.Equal(t, "ref-1", compacted["booking_reference"])
		_, present := compacted["rate_reference"]
		assert.False(t, present)
	})

	t.Run("should cap the number of keys", func(t *testing.T) {
		metadata := map[string]string{}
		for i := 0; i < payment.MaxMetadataKeys+10; i++ {
			metadata[strings.Repeat("k", i+1)] = "v"
		}

		compacted := payment.CompactMetadata(metadata)

		assert.Len(t, compacted, payment.MaxMetadataKeys)
	})

	t.Run("should keep a value at exactly the limit", func(t *testing.T) {
		compacted := payment.CompactMetadata(map[string]string{
			"rate_reference": strings.Repeat("x", payment.MaxMetadataValueLength),
		})

		assert.Len(t, compacted, 1)
	})
}
