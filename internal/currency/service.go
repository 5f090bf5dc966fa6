package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
)

const (
	freshKeyPrefix     = "currency:rates:"
	lastKnownKeyPrefix = "currency:rates:last:"
	refreshLockPrefix  = "currency:refresh:"

	refreshLockTTL = 30 * time.Second
	waitInterval   = 200 * time.Millisecond
	waitAttempts   = 12
)

var ErrUnknownCurrency = errors.New("no rate available for currency pair")

type Conversion struct {
	OriginalAmount  float64 `json:"originalAmount"`
	ConvertedAmount float64 `json:"convertedAmount"`
	From            string  `json:"from"`
	To              string  `json:"to"`
	Rate            float64 `json:"rate"`
	Provider        string  `json:"provider"`
	CacheHit        bool    `json:"cacheHit"`
	// Degraded marks results computed from a stale or static table. Degraded
	// rates never block the caller, they only lower pricing accuracy.
	Degraded bool `json:"degraded"`
}

type Rate struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Rate     float64 `json:"rate"`
	Provider string  `json:"provider"`
	CacheHit bool    `json:"cacheHit"`
	Degraded bool    `json:"degraded"`
}

// Service serves conversions from a redis-cached rate table with a fallback
// chain: fresh fetch, cached-but-stale, static table. At most one refresh per
// base is in flight; concurrent callers wait on the cache instead of piling
// onto the provider.
type Service struct {
	redis    *redis.Client
	cache    *caching.Cacher
	provider Provider
	ttl      time.Duration
	log      *zerolog.Logger

	sleep func(time.Duration)
}

func NewService(redisClient *redis.Client, provider Provider, ttl time.Duration, log *zerolog.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Service{
		redis:    redisClient,
		cache:    caching.NewRedisCache(redisClient),
		provider: provider,
		ttl:      ttl,
		log:      log,
		sleep:    time.Sleep,
	}
}

// AllRates returns the table for base, fetching when the cached one expired.
// The bools report cache hit and degradation.
func (s *Service) AllRates(ctx context.Context, base string) (*RateTable, bool, bool) {
	base = normalizer.NormalizeCurrencyCode(base)

	var cached RateTable
	if s.cache.Fetch(ctx, freshKeyPrefix+base, &cached) {
		return &cached, true, false
	}

	acquired, err := s.redis.SetNX(ctx, refreshLockPrefix+base, "", refreshLockTTL).Result()
	if err == nil && acquired {
		return s.refresh(ctx, base)
	}

	// someone else is refreshing; wait for their result to land
	for i := 0; i < waitAttempts; i++ {
		s.sleep(waitInterval)
		if s.cache.Fetch(ctx, freshKeyPrefix+base, &cached) {
			return &cached, true, false
		}
	}

	return s.fallback(ctx, base)
}

func (s *Service) refresh(ctx context.Context, base string) (*RateTable, bool, bool) {
	defer s.redis.Del(context.Background(), refreshLockPrefix+base)

	table, err := s.provider.FetchRates(ctx, base)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("base", base).
			Msg("Rate fetch failed, serving fallback")
		return s.fallback(ctx, base)
	}

	if err := s.cache.Store(ctx, freshKeyPrefix+base, table, s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("Unable to cache fresh rate table")
	}
	// the last-known copy never expires, it backs the stale fallback
	if err := s.cache.Store(ctx, lastKnownKeyPrefix+base, table, 0); err != nil {
		s.log.Warn().Err(err).Msg("Unable to store last-known rate table")
	}

	return table, false, false
}

func (s *Service) fallback(ctx context.Context, base string) (*RateTable, bool, bool) {
	var lastKnown RateTable
	if s.cache.Fetch(ctx, lastKnownKeyPrefix+base, &lastKnown) {
		s.log.Info().
			Str("base", base).
			Time("fetchedAt", lastKnown.FetchedAt).
			Msg("Serving stale rate table")
		return &lastKnown, false, true
	}

	s.log.Warn().
		Str("base", base).
		Msg("No rate table ever fetched, serving static fallback")
	return staticTable(base), false, true
}

// GetRate resolves from→to through the base table (rates[to]/rates[from]).
func (s *Service) GetRate(ctx context.Context, from, to string) (*Rate, error) {
	from = normalizer.NormalizeCurrencyCode(from)
	to = normalizer.NormalizeCurrencyCode(to)

	if from == to {
		return &Rate{From: from, To: to, Rate: 1.0, Provider: "identity", CacheHit: true}, nil
	}

	table, cacheHit, degraded := s.AllRates(ctx, from)

	rate, err := crossRate(table, from, to)
	if err != nil {
		return nil, err
	}

	return &Rate{
		From:     from,
		To:       to,
		Rate:     rate,
		Provider: table.Provider,
		CacheHit: cacheHit,
		Degraded: degraded,
	}, nil
}

func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (*Conversion, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount cannot be negative: %f", amount)
	}

	rate, err := s.GetRate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	converted, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate.Rate)).
		Round(2).
		Float64()

	conversion := &Conversion{
		OriginalAmount:  amount,
		ConvertedAmount: converted,
		From:            rate.From,
		To:              rate.To,
		Rate:            rate.Rate,
		Provider:        rate.Provider,
		CacheHit:        rate.CacheHit,
		Degraded:        rate.Degraded,
	}

	// every conversion is logged with the rate and provider used; financial
	// reconciliation depends on reproducing the exact applied rate
	s.log.Info().
		Str("label", "currency-conversion").
		Float64("amount", amount).
		Float64("converted", converted).
		Str("from", conversion.From).
		Str("to", conversion.To).
		Float64("rate", conversion.Rate).
		Str("provider", conversion.Provider).
		Bool("cacheHit", conversion.CacheHit).
		Bool("degraded", conversion.Degraded).
		Msg("")

	return conversion, nil
}

func crossRate(table *RateTable, from, to string) (float64, error) {
	fromRate, okFrom := table.Rates[strings.ToUpper(from)]
	toRate, okTo := table.Rates[strings.ToUpper(to)]
	if !okFrom || !okTo || fromRate == 0 {
		return 0, fmt.Errorf("%w: %s to %s", ErrUnknownCurrency, from, to)
	}

	return toRate / fromRate, nil
}
