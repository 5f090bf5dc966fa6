package adobe

import (
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type configuration struct {
	BaseUrl      string
	Username     string
	Password     string
	CustomerCode string
}

func configFromEnv() configuration {
	customerCode := os.Getenv("ADOBE_CUSTOMER_CODE")
	if customerCode == "" {
		customerCode = "PRUEBA"
	}

	return configuration{
		BaseUrl:      strings.TrimRight(os.Getenv("ADOBE_URL"), "/"),
		Username:     os.Getenv("ADOBE_USERNAME"),
		Password:     os.Getenv("ADOBE_PASSWORD"),
		CustomerCode: customerCode,
	}
}

type adobe struct {
	redis         *redis.Client
	httpTransport *http.Transport
}

func (a *adobe) SearchGroupingCacheKey(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) string {
	keyPieces := []string{
		"grouping",
		"supplier-adobe",
		"1",
		params.PickUp.Code,
		params.DropOff.Code,
		params.PickUp.DateTime.Format(time.DateOnly),
		params.DropOff.DateTime.Format(time.DateOnly),
	}

	return strings.Join(keyPieces, ":")
}

func (a *adobe) Search(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) (schema.SearchResponse, error) {
	searchRequest := searchRequest{
		cache:         caching.NewRedisCache(a.redis),
		params:        params,
		configuration: configFromEnv(),
		logger:        logger,
		slowLogger:    slowlog.CreateLogger(logger),
	}

	return searchRequest.Execute(ctx, a.httpTransport)
}

func (a *adobe) GetExtras(ctx context.Context, params schema.ExtrasRequestParams, logger *zerolog.Logger) (schema.ExtrasResponse, error) {
	extrasRequest := extrasRequest{
		cache:         caching.NewRedisCache(a.redis),
		params:        params,
		configuration: configFromEnv(),
		logger:        logger,
	}

	return extrasRequest.Execute(ctx, a.httpTransport)
}

func (a *adobe) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
	var supplierRateReference mapping.SupplierRateReference
	err := jsonEncoding.Unmarshal([]byte(params.RateReference), &supplierRateReference)
	if err != nil {
		return schema.ReservationResult{Status: schema.ReservationStatusFailed}, errors.ErrInvalidRateReference
	}

	reservationRequest := reservationRequest{
		cache:                 caching.NewRedisCache(a.redis),
		params:                params,
		configuration:         configFromEnv(),
		supplierRateReference: supplierRateReference,
		logger:                logger,
	}

	return reservationRequest.Execute(a.httpTransport)
}

func New(redisClient *redis.Client) *adobe {
	transport := http.DefaultTransport.(*http.Transport)
	transport.DisableKeepAlives = true

	return &adobe{
		redis:         redisClient,
		httpTransport: transport,
	}
}
