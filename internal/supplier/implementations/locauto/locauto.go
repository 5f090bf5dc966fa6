package locauto

import (
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto/ota"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

const (
	defaultBaseUrl = "https://api.locautorent.com/NextRentWebService.asmx"

	// SOAPAction values must keep the surrounding quotes, the .asmx endpoint
	// rejects bare ones.
	searchSoapAction      = `"https://nextrent.locautorent.com/OTA_VehAvailRateRS"`
	reservationSoapAction = `"https://nextrent.locautorent.com/OTA_VehResRS"`
)

type configuration struct {
	BaseUrl  string
	Username string
	Password string
}

func configFromEnv() configuration {
	baseUrl := os.Getenv("LOCAUTO_URL")
	if baseUrl == "" {
		baseUrl = defaultBaseUrl
	}

	return configuration{
		BaseUrl:  baseUrl,
		Username: os.Getenv("LOCAUTO_USERNAME"),
		Password: os.Getenv("LOCAUTO_PASSWORD"),
	}
}

type locauto struct {
	httpTransport *http.Transport
}

func (l *locauto) SearchGroupingCacheKey(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) string {
	keyPieces := []string{
		"grouping",
		"supplier-locauto",
		"1",
		params.PickUp.Code,
		params.DropOff.Code,
		params.PickUp.DateTime.Format(time.DateOnly),
		params.DropOff.DateTime.Format(time.DateOnly),
	}

	return strings.Join(keyPieces, ":")
}

func (l *locauto) Search(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) (schema.SearchResponse, error) {
	searchRequest := searchRequest{
		params:        params,
		configuration: configFromEnv(),
		logger:        logger,
		slowLogger:    slowlog.CreateLogger(logger),
	}

	return searchRequest.Execute(ctx, l.httpTransport)
}

func (l *locauto) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
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

	return reservationRequest.Execute(l.httpTransport)
}

func newPOS(configuration configuration) ota.POS {
	return ota.POS{
		Source: ota.Source{
			ISOCountry:  "IT",
			ISOCurrency: "EUR",
			RequestorID: ota.RequestorID{
				IDContext:       configuration.Username,
				MessagePassword: configuration.Password,
			},
		},
	}
}

func New() *locauto {
	transport := http.DefaultTransport.(*http.Transport)
	transport.DisableKeepAlives = true

	return &locauto{
		httpTransport: transport,
	}
}
