package factory_test

import (
	"sync"
	"testing"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/factory"
	"bitbucket.org/crgw/booking-engine/internal/tools/redisfactory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory(t *testing.T) *factory.Factory {
	t.Setenv("SEARCH_GROUPING_REDIS_URI", "redis://localhost:6379/0")
	t.Setenv("RESPONSES_CACHE_REDIS_URI", "redis://localhost:6379/1")
	t.Setenv("CURRENCY_REDIS_URI", "redis://localhost:6379/2")

	return factory.NewFactory(redisfactory.New())
}

func TestGetSupplier(t *testing.T) {
	t.Run("should resolve a registered source to one shared adapter", func(t *testing.T) {
		f := newTestFactory(t)

		first, err := f.GetSupplier(schema.SourceGreenMotion)
		require.Nil(t, err)

		second, err := f.GetSupplier(schema.SourceGreenMotion)
		require.Nil(t, err)

		assert.Same(t, first, second)
	})

	t.Run("should reject an unknown source", func(t *testing.T) {
		f := newTestFactory(t)

		_, err := f.GetSupplier("does-not-exist")

		assert.NotNil(t, err)
	})

	t.Run("should hand out the same adapter under concurrent resolution", func(t *testing.T) {
		f := newTestFactory(t)

		suppliers := make([]any, 8)

		var wg sync.WaitGroup
		for i := 0; i < len(suppliers); i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()

				supplier, err := f.GetSupplier(schema.SourceRenteon)
				assert.Nil(t, err)
				suppliers[slot] = supplier
			}(i)
		}
		wg.Wait()

		for _, supplier := range suppliers {
			assert.Same(t, suppliers[0], supplier)
		}
	})
}
