package greenmotion

import (
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/breaker"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

type configuration struct {
	BaseUrl  string
	Username string
	Password string
	Version  string
}

// usave rides the same webservice with its own credentials, the env prefix
// follows the source tag.
func configFromEnv(source string) configuration {
	prefix := strings.ToUpper(source)

	version := os.Getenv(prefix + "_API_VERSION")
	if version == "" {
		version = "1.5"
	}

	return configuration{
		BaseUrl:  os.Getenv(prefix + "_URL"),
		Username: os.Getenv(prefix + "_USERNAME"),
		Password: os.Getenv(prefix + "_PASSWORD"),
		Version:  version,
	}
}

func breakerFromEnv(source string) *breaker.Breaker {
	prefix := strings.ToUpper(source)

	threshold := 5
	if v, err := strconv.Atoi(os.Getenv(prefix + "_BREAKER_THRESHOLD")); err == nil && v > 0 {
		threshold = v
	}

	coolDown := 30 * time.Second
	if v, err := strconv.Atoi(os.Getenv(prefix + "_BREAKER_COOLDOWN_MS")); err == nil && v > 0 {
		coolDown = time.Duration(v) * time.Millisecond
	}

	return breaker.New(threshold, coolDown)
}

type greenMotion struct {
	source        string
	httpTransport *http.Transport
	breaker       *breaker.Breaker
}

func (g *greenMotion) SearchGroupingCacheKey(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) string {
	keyPieces := []string{
		"grouping",
		"supplier-" + g.source,
		"1",
		params.PickUp.Code,
		params.DropOff.Code,
		params.PickUp.DateTime.Format(time.DateOnly),
		params.DropOff.DateTime.Format(time.DateOnly),
		params.RentalCode,
		strconv.Itoa(params.Age),
	}

	return strings.Join(keyPieces, ":")
}

func (g *greenMotion) Search(ctx context.Context, params schema.SearchRequestParams, logger *zerolog.Logger) (schema.SearchResponse, error) {
	if !g.breaker.Allow() {
		return unavailableSearchResponse(), nil
	}

	searchRequest := searchRequest{
		source:        g.source,
		params:        params,
		configuration: configFromEnv(g.source),
		breaker:       g.breaker,
		logger:        logger,
		slowLogger:    slowlog.CreateLogger(logger),
	}

	return searchRequest.Execute(ctx, g.httpTransport)
}

func (g *greenMotion) CreateReservation(ctx context.Context, params schema.ReservationRequest, logger *zerolog.Logger) (schema.ReservationResult, error) {
	var supplierRateReference mapping.SupplierRateReference
	err := jsonEncoding.Unmarshal([]byte(params.RateReference), &supplierRateReference)
	if err != nil {
		return schema.ReservationResult{Status: schema.ReservationStatusFailed}, errors.ErrInvalidRateReference
	}

	if !g.breaker.Allow() {
		return unavailableReservationResult(), nil
	}

	reservationRequest := reservationRequest{
		source:                g.source,
		params:                params,
		configuration:         configFromEnv(g.source),
		supplierRateReference: supplierRateReference,
		breaker:               g.breaker,
		logger:                logger,
	}

	return reservationRequest.Execute(g.httpTransport)
}

func unavailableSearchResponse() schema.SearchResponse {
	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()
	errorsBucket.AddError(schema.NewSupplierUnavailableError("supplier temporarily unavailable"))

	return schema.SearchResponse{
		Vehicles:         []schema.Vehicle{},
		Errors:           errorsBucket.Errors(),
		SupplierRequests: requestsBucket.SupplierRequests(),
	}
}

func unavailableReservationResult() schema.ReservationResult {
	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()
	errorsBucket.AddError(schema.NewSupplierUnavailableError("supplier temporarily unavailable"))

	return schema.ReservationResult{
		Status:           schema.ReservationStatusFailed,
		Errors:           errorsBucket.Errors(),
		SupplierRequests: requestsBucket.SupplierRequests(),
	}
}

func New(source string) *greenMotion {
	transport := http.DefaultTransport.(*http.Transport)
	transport.DisableKeepAlives = true

	return &greenMotion{
		source:        source,
		httpTransport: transport,
		breaker:       breakerFromEnv(source),
	}
}
