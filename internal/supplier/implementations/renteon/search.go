package renteon

import (
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon/json"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

type searchRequest struct {
	params        schema.SearchRequestParams
	configuration configuration
	logger        *zerolog.Logger
	slowLogger    slowlog.Logger
}

func (r *searchRequest) Execute(ctx context.Context, httpTransport *http.Transport) (schema.SearchResponse, error) {
	search := schema.SearchResponse{
		Vehicles: []schema.Vehicle{},
	}

	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()

	search.SupplierRequests = requestsBucket.SupplierRequests()
	search.Errors = errorsBucket.Errors()

	client := &http.Client{
		Timeout: time.Duration(r.params.Timeouts.ForSearch()) * time.Millisecond,
		Transport: &requesting.InterceptorTransport{
			Transport: httpTransport,
			Middlewares: []requesting.TransportMiddleware{
				requesting.NewLoggingTransportMiddleware(r.logger),
				requesting.NewBucketTransportMiddleware(&requestsBucket),
			},
		},
	}

	supplierVehicles, reqErr := r.makeRequest(client)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return search, nil
	}

	for _, supplierVehicle := range supplierVehicles {
		vehicle, err := r.parseVehicle(supplierVehicle)
		if err != nil {
			errorsBucket.AddError(schema.NewParseError(err.Error()))
			continue
		}

		search.Vehicles = append(search.Vehicles, vehicle)
	}

	return search, nil
}

func (r *searchRequest) makeRequest(client *http.Client) ([]json.Vehicle, *schema.SupplierResponseError) {
	opt := json.SearchRQ{
		PickupLocationCode:  r.params.PickUp.Code,
		DropoffLocationCode: r.params.DropOff.Code,
		StartDate:           r.params.PickUp.DateTime.Format(schema.DateTimeFormat),
		EndDate:             r.params.DropOff.DateTime.Format(schema.DateTimeFormat),
		ProviderCode:        r.configuration.ProviderCode,
	}
	v, _ := query.Values(opt)

	url := fmt.Sprintf("%v/api/vehicles/search?%v", r.configuration.BaseUrl, v.Encode())
	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Search)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, err
		}

		httpRequest.SetBasicAuth(r.configuration.Username, r.configuration.Password)
		httpRequest.Header.Set("Accept", "application/json")

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return nil, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var supplierVehicles []json.Vehicle
	err := jsonEncoding.Unmarshal(bodyBytes, &supplierVehicles)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return nil, &e
	}

	return supplierVehicles, nil
}

func (r *searchRequest) parseVehicle(supplierVehicle json.Vehicle) (schema.Vehicle, error) {
	currency := normalizer.NormalizeCurrencyCode(supplierVehicle.Currency)

	qualifier, err := jsonEncoding.Marshal(mapping.SupplierRateReference{
		VehicleId:           supplierVehicle.Id,
		DailyRate:           supplierVehicle.DailyRate,
		Currency:            currency,
		PickupLocationCode:  r.params.PickUp.Code,
		DropoffLocationCode: r.params.DropOff.Code,
		StartDate:           r.params.PickUp.DateTime.Format(schema.DateTimeFormat),
		EndDate:             r.params.DropOff.DateTime.Format(schema.DateTimeFormat),
	})
	if err != nil {
		return schema.Vehicle{}, err
	}

	rateReference := string(qualifier)

	days := rentalDays(r.params.PickUp.DateTime, r.params.DropOff.DateTime)
	grandTotal := supplierVehicle.DailyRate * float64(days)

	breakdown := normalizer.ResolveBreakdown(normalizer.PricingInput{
		Currency:   currency,
		GrandTotal: &grandTotal,
	})

	var acrissCode *string
	if len(supplierVehicle.Acriss) == 4 {
		acrissCode = converting.PointerToValue(supplierVehicle.Acriss)
	}

	var imageUrl *string
	if supplierVehicle.ImageUrl != "" {
		imageUrl = converting.PointerToValue(supplierVehicle.ImageUrl)
	}

	var mileage *schema.Mileage
	if supplierVehicle.Mileage != "" {
		mileage = &schema.Mileage{Unlimited: supplierVehicle.Mileage == "Unlimited"}
	}

	return schema.Vehicle{
		Source:            schema.SourceRenteon,
		SupplierVehicleID: supplierVehicle.Id,
		Brand:             supplierVehicle.Make,
		Model:             supplierVehicle.Model,
		Category:          supplierVehicle.Category,
		AcrissCode:        acrissCode,
		Transmission:      supplierVehicle.Transmission,
		Fuel:              supplierVehicle.FuelType,
		Seats:             supplierVehicle.Seats,
		Doors:             supplierVehicle.Doors,
		ImageUrl:          imageUrl,
		DailyPrice: schema.PriceAmount{
			Amount:   schema.RoundedFloat(supplierVehicle.DailyRate),
			Currency: currency,
		},
		Breakdown:     breakdown,
		Mileage:       mileage,
		RateReference: &rateReference,
		Status:        schema.Available,
	}, nil
}

func rentalDays(pickUp, dropOff time.Time) int {
	days := int(dropOff.Sub(pickUp).Hours() / 24)
	if dropOff.Sub(pickUp)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
