package currency_test

import (
	"bytes"
	"compress/flate"
	"context"
	jsonEncoding "encoding/json"
	"errors"
	"testing"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/currency"
	"github.com/go-redis/redismock/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	table *currency.RateTable
	err   error
	calls int
}

func (p *stubProvider) FetchRates(ctx context.Context, base string) (*currency.RateTable, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.table, nil
}

func compressedTable(t *testing.T, table *currency.RateTable) []byte {
	t.Helper()

	marshalled, err := jsonEncoding.Marshal(table)
	require.Nil(t, err)

	var buffer bytes.Buffer
	writer, _ := flate.NewWriter(&buffer, flate.BestSpeed)
	_, err = writer.Write(marshalled)
	require.Nil(t, err)
	require.Nil(t, writer.Close())

	return buffer.Bytes()
}

func eurTable() *currency.RateTable {
	return &currency.RateTable{
		Base:      "EUR",
		Rates:     map[string]float64{"EUR": 1.0, "USD": 1.08, "GBP": 0.86},
		FetchedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Provider:  "exchangerate-api",
	}
}

func TestConvert(t *testing.T) {
	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should convert using the cached table", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet("currency:rates:EUR").SetVal(string(compressedTable(t, eurTable())))

		service := currency.NewService(redisClient, &stubProvider{}, time.Hour, &log)

		conversion, err := service.Convert(context.Background(), 100, "EUR", "USD")

		require.Nil(t, err)
		assert.Equal(t, 108.0, conversion.ConvertedAmount)
		assert.Equal(t, 1.08, conversion.Rate)
		assert.True(t, conversion.CacheHit)
		assert.False(t, conversion.Degraded)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("should refresh an expired table and cache both copies", func(t *testing.T) {
		table := eurTable()
		provider := &stubProvider{table: table}

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet("currency:rates:EUR").RedisNil()
		mock.ExpectSetNX("currency:refresh:EUR", "", 30*time.Second).SetVal(true)
		mock.ExpectSetEx("currency:rates:EUR", compressedTable(t, table), time.Hour).SetVal("OK")
		mock.ExpectSet("currency:rates:last:EUR", compressedTable(t, table), 0).SetVal("OK")
		mock.ExpectDel("currency:refresh:EUR").SetVal(1)

		service := currency.NewService(redisClient, provider, time.Hour, &log)

		conversion, err := service.Convert(context.Background(), 50, "eur", "usd")

		require.Nil(t, err)
		assert.Equal(t, 54.0, conversion.ConvertedAmount)
		assert.False(t, conversion.CacheHit)
		assert.False(t, conversion.Degraded)
		assert.Equal(t, 1, provider.calls)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("should serve the stale table when the provider is down", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("provider unavailable")}

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet("currency:rates:EUR").RedisNil()
		mock.ExpectSetNX("currency:refresh:EUR", "", 30*time.Second).SetVal(true)
		mock.ExpectGet("currency:rates:last:EUR").SetVal(string(compressedTable(t, eurTable())))
		mock.ExpectDel("currency:refresh:EUR").SetVal(1)

		service := currency.NewService(redisClient, provider, time.Hour, &log)

		conversion, err := service.Convert(context.Background(), 100, "EUR", "GBP")

		require.Nil(t, err)
		assert.Equal(t, 86.0, conversion.ConvertedAmount)
		assert.True(t, conversion.Degraded)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("should fall through to the static table when nothing was ever fetched", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("provider unavailable")}

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet("currency:rates:USD").RedisNil()
		mock.ExpectSetNX("currency:refresh:USD", "", 30*time.Second).SetVal(true)
		mock.ExpectGet("currency:rates:last:USD").RedisNil()
		mock.ExpectDel("currency:refresh:USD").SetVal(1)

		service := currency.NewService(redisClient, provider, time.Hour, &log)

		conversion, err := service.Convert(context.Background(), 100, "USD", "EUR")

		require.Nil(t, err)
		assert.Equal(t, 92.0, conversion.ConvertedAmount)
		assert.True(t, conversion.Degraded)
		assert.Equal(t, "static", conversion.Provider)
	})

	t.Run("should short-circuit identity conversions", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		service := currency.NewService(redisClient, &stubProvider{}, time.Hour, &log)

		conversion, err := service.Convert(context.Background(), 42, "EUR", "eur")

		require.Nil(t, err)
		assert.Equal(t, 42.0, conversion.ConvertedAmount)
		assert.Equal(t, 1.0, conversion.Rate)
	})

	t.Run("should round-trip a conversion within rounding tolerance", func(t *testing.T) {
		usdTable := &currency.RateTable{
			Base:      "USD",
			Rates:     map[string]float64{"USD": 1.0, "EUR": 1 / 1.08},
			FetchedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Provider:  "exchangerate-api",
		}

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet("currency:rates:EUR").SetVal(string(compressedTable(t, eurTable())))
		mock.ExpectGet("currency:rates:USD").SetVal(string(compressedTable(t, usdTable)))

		service := currency.NewService(redisClient, &stubProvider{}, time.Hour, &log)

		there, err := service.Convert(context.Background(), 100, "EUR", "USD")
		require.Nil(t, err)

		back, err := service.Convert(context.Background(), there.ConvertedAmount, "USD", "EUR")
		require.Nil(t, err)

		assert.InDelta(t, 100, back.ConvertedAmount, 0.01)
	})

	t.Run("should reject pairs missing from the table", func(t *testing.T) {
		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet("currency:rates:EUR").SetVal(string(compressedTable(t, eurTable())))

		service := currency.NewService(redisClient, &stubProvider{}, time.Hour, &log)

		_, err := service.Convert(context.Background(), 100, "EUR", "XXX")

		assert.ErrorIs(t, err, currency.ErrUnknownCurrency)
	})

	t.Run("should reject negative amounts", func(t *testing.T) {
		redisClient, _ := redismock.NewClientMock()
		service := currency.NewService(redisClient, &stubProvider{}, time.Hour, &log)

		_, err := service.Convert(context.Background(), -1, "EUR", "USD")

		assert.NotNil(t, err)
	})
}
