package adobe

import (
	"context"
	jsonEncoding "encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/json"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

type searchRequest struct {
	cache         *caching.Cacher
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

	authRequest := authRequest{
		configuration: r.configuration,
		logger:        r.logger,
		timeout:       r.params.Timeouts.Default,
		cache:         r.cache,
	}

	auth, err := authRequest.Execute(httpTransport)
	requestsBucket.AddRequests(*auth.SupplierRequests)
	errorsBucket.AddErrors(*auth.Errors)

	if err != nil {
		return search, err
	}

	if auth.Token == nil {
		return search, nil
	}

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

	response, reqErr := r.makeRequest(client, *auth.Token)

	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return search, nil
	}

	if response.Data == nil {
		errorsBucket.AddError(schema.NewParseError("missing data node in vehicles response"))
		return search, nil
	}

	for _, available := range response.Data.Vehicles {
		if !available.Available {
			continue
		}

		vehicle, err := r.parseVehicle(available)
		if err != nil {
			errorsBucket.AddError(schema.NewParseError(err.Error()))
			continue
		}

		search.Vehicles = append(search.Vehicles, vehicle)
	}

	return search, nil
}

func (r *searchRequest) makeRequest(
	client *http.Client,
	token string,
) (json.AvailableVehiclesRS, *schema.SupplierResponseError) {
	opt := json.AvailableVehiclesRQ{
		PickupOffice: r.params.PickUp.Code,
		ReturnOffice: r.params.DropOff.Code,
		StartDate:    r.params.PickUp.DateTime.Format(schema.DateTimeFormat),
		EndDate:      r.params.DropOff.DateTime.Format(schema.DateTimeFormat),
		Age:          r.params.Age,
	}
	v, _ := query.Values(opt)

	url := fmt.Sprintf("%v/Vehicles/Available?%v", r.configuration.BaseUrl, v.Encode())
	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Search)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodGet, url, http.NoBody)
		if err != nil {
			return nil, err
		}

		httpRequest.Header.Set("Authorization", "Bearer "+token)

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return json.AvailableVehiclesRS{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var vehiclesResponse json.AvailableVehiclesRS
	err := jsonEncoding.Unmarshal(bodyBytes, &vehiclesResponse)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return json.AvailableVehiclesRS{}, &e
	}

	message := vehiclesResponse.ErrorMessage()
	if message != "" {
		e := schema.NewSupplierError(message)
		return json.AvailableVehiclesRS{}, &e
	}

	return vehiclesResponse, nil
}

func (r *searchRequest) parseVehicle(available json.AvailableVehicle) (schema.Vehicle, error) {
	qualifier, err := jsonEncoding.Marshal(mapping.SupplierRateReference{
		PickupOffice: r.params.PickUp.Code,
		ReturnOffice: r.params.DropOff.Code,
		StartDate:    r.params.PickUp.DateTime.Format(schema.DateTimeFormat),
		EndDate:      r.params.DropOff.DateTime.Format(schema.DateTimeFormat),
		Category:     available.Category,
	})
	if err != nil {
		return schema.Vehicle{}, err
	}

	if available.Category == "" {
		return schema.Vehicle{}, errors.New("vehicle without category in supplier response")
	}

	rateReference := string(qualifier)

	days := rentalDays(r.params.PickUp.DateTime, r.params.DropOff.DateTime)

	var topLevel *normalizer.PricingFields
	if available.Total != nil {
		topLevel = &normalizer.PricingFields{
			TaxTotal:   available.TaxTotal,
			GrandTotal: available.Total,
		}
	}

	grandTotal := available.Pli * float64(days)
	breakdown := normalizer.ResolveBreakdown(normalizer.PricingInput{
		Currency:   available.Currency,
		TopLevel:   topLevel,
		GrandTotal: &grandTotal,
	})

	var acrissCode *string
	if len(available.Acriss) == 4 {
		acrissCode = &available.Acriss
	}

	var deposit *schema.DepositInfo
	if available.Deposit != nil || available.Excess != nil {
		deposit = &schema.DepositInfo{
			DepositAmount: available.Deposit,
			ExcessAmount:  available.Excess,
			Currency:      breakdown.Currency,
		}
	}

	vehicle := schema.Vehicle{
		Source:            schema.SourceAdobe,
		SupplierVehicleID: available.Category,
		Model:             available.Model,
		Category:          available.Category,
		AcrissCode:        acrissCode,
		Transmission:      available.Transmission,
		Fuel:              available.Fuel,
		Seats:             converting.PointerToValue(available.Seats),
		Doors:             converting.PointerToValue(available.Doors),
		BigSuitcases:      converting.PointerToValue(available.Suitcases),
		DailyPrice: schema.PriceAmount{
			Amount:   schema.RoundedFloat(float64(breakdown.GrandTotal) / float64(days)),
			Currency: breakdown.Currency,
		},
		Breakdown:     breakdown,
		Deposit:       deposit,
		RateReference: &rateReference,
		Status:        schema.Available,
	}

	if available.ImageUrl != "" {
		vehicle.ImageUrl = converting.PointerToValue(available.ImageUrl)
	}

	return vehicle, nil
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
