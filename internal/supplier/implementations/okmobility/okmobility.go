package okmobility

import (
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

type configuration struct {
	BaseUrl      string
	CustomerCode string
	CompanyCode  string
}

func configurationFromEnv() configuration {
	return configuration{
		BaseUrl:      strings.TrimRight(os.Getenv("OKMOBILITY_URL"), "/"),
		CustomerCode: os.Getenv("OKMOBILITY_CUSTOMER_CODE"),
		CompanyCode:  os.Getenv("OKMOBILITY_COMPANY_CODE"),
	}
}

type okMobility struct {
	httpTransport *http.Transport
}

func (o *okMobility) SearchGroupingCacheKey(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) string {
	keyPieces := []string{
		"grouping",
		"supplier-okmobility",
		"1",
		params.PickUp.Code,
		params.DropOff.Code,
		params.PickUp.DateTime.Format(time.DateOnly),
		params.DropOff.DateTime.Format(time.DateOnly),
		strconv.Itoa(params.Age),
	}

	return strings.Join(keyPieces, ":")
}

func (o *okMobility) Search(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) (schema.SearchResponse, error) {
	searchRequest := searchRequest{
		params:        params,
		configuration: configurationFromEnv(),
		logger:        logger,
		slowLogger:    slowlog.CreateLogger(logger),
	}

	return searchRequest.Execute(ctx, o.httpTransport)
}

func (o *okMobility) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
	var supplierRateReference mapping.SupplierRateReference
	err := jsonEncoding.Unmarshal([]byte(params.RateReference), &supplierRateReference)
	if err != nil {
		return schema.ReservationResult{Status: schema.ReservationStatusFailed}, errors.ErrInvalidRateReference
	}

	reservationRequest := reservationRequest{
		params:                params,
		configuration:         configurationFromEnv(),
		supplierRateReference: supplierRateReference,
		logger:                logger,
	}

	return reservationRequest.Execute(o.httpTransport)
}

func New() *okMobility {
	transport := http.DefaultTransport.(*http.Transport)
	transport.DisableKeepAlives = true

	return &okMobility{
		httpTransport: transport,
	}
}
