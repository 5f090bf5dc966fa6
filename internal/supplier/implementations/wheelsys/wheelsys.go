// Package wheelsys talks to the Wheelsys web reservation system. The API is a
// set of agent-scoped HTML endpoints that return JSON when asked to
// (format=json), with all money expressed in integer cents.
package wheelsys

import (
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	supplierCurrency = "USD"
	dateFormat       = "02/01/2006"
	timeFormat       = "15:04"
)

type configuration struct {
	BaseUrl   string
	AccountNo string
	LinkCode  string
	AgentCode string
}

func configFromEnv() configuration {
	return configuration{
		BaseUrl:   strings.TrimRight(os.Getenv("WHEELSYS_URL"), "/"),
		AccountNo: os.Getenv("WHEELSYS_ACCOUNT_NO"),
		LinkCode:  os.Getenv("WHEELSYS_LINK_CODE"),
		AgentCode: os.Getenv("WHEELSYS_AGENT_CODE"),
	}
}

type wheelsys struct {
	redis         *redis.Client
	httpTransport *http.Transport
}

func (w *wheelsys) SearchGroupingCacheKey(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) string {
	keyPieces := []string{
		"grouping",
		"supplier-wheelsys",
		"1",
		params.PickUp.Code,
		params.DropOff.Code,
		params.PickUp.DateTime.Format(time.DateOnly),
		params.DropOff.DateTime.Format(time.DateOnly),
	}

	return strings.Join(keyPieces, ":")
}

func (w *wheelsys) Search(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) (schema.SearchResponse, error) {
	searchRequest := searchRequest{
		cache:         caching.NewRedisCache(w.redis),
		params:        params,
		configuration: configFromEnv(),
		logger:        logger,
		slowLogger:    slowlog.CreateLogger(logger),
	}

	return searchRequest.Execute(ctx, w.httpTransport)
}

func (w *wheelsys) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
	var supplierRateReference mapping.SupplierRateReference
	err := jsonEncoding.Unmarshal([]byte(params.RateReference), &supplierRateReference)
	if err != nil {
		return schema.ReservationResult{Status: schema.ReservationStatusFailed}, errors.ErrInvalidRateReference
	}

	reservationRequest := reservationRequest{
		params:                params,
		configuration:         configFromEnv(),
		supplierRateReference: supplierRateReference,
		logger:                logger,
	}

	return reservationRequest.Execute(w.httpTransport)
}

func New(redisClient *redis.Client) *wheelsys {
	transport := http.DefaultTransport.(*http.Transport)
	transport.DisableKeepAlives = true

	return &wheelsys{
		redis:         redisClient,
		httpTransport: transport,
	}
}
