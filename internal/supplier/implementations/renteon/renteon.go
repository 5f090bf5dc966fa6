package renteon

import (
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

type configuration struct {
	BaseUrl      string
	Username     string
	Password     string
	ProviderCode string
}

func configFromEnv() configuration {
	providerCode := os.Getenv("RENTEON_PROVIDER_CODE")
	if providerCode == "" {
		providerCode = "demo"
	}

	return configuration{
		BaseUrl:      strings.TrimRight(os.Getenv("RENTEON_URL"), "/"),
		Username:     os.Getenv("RENTEON_USERNAME"),
		Password:     os.Getenv("RENTEON_PASSWORD"),
		ProviderCode: providerCode,
	}
}

type renteon struct {
	httpTransport *http.Transport
}

func (r *renteon) SearchGroupingCacheKey(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) string {
	keyPieces := []string{
		"grouping",
		"supplier-renteon",
		"1",
		params.PickUp.Code,
		params.DropOff.Code,
		params.PickUp.DateTime.Format(time.DateOnly),
		params.DropOff.DateTime.Format(time.DateOnly),
	}

	return strings.Join(keyPieces, ":")
}

func (r *renteon) Search(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) (schema.SearchResponse, error) {
	searchRequest := searchRequest{
		params:        params,
		configuration: configFromEnv(),
		logger:        logger,
		slowLogger:    slowlog.CreateLogger(logger),
	}

	return searchRequest.Execute(ctx, r.httpTransport)
}

func (r *renteon) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
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

	return reservationRequest.Execute(r.httpTransport)
}

func New() *renteon {
	transport := http.DefaultTransport.(*http.Transport)
	transport.DisableKeepAlives = true

	return &renteon{
		httpTransport: transport,
	}
}
