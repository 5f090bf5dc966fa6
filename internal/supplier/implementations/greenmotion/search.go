package greenmotion

import (
	"bytes"
	"context"
	jsonEncoding "encoding/json"
	xmlEncoding "encoding/xml"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/breaker"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion/xml"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04"
)

type searchRequest struct {
	source        string
	params        schema.SearchRequestParams
	configuration configuration
	breaker       *breaker.Breaker
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

	response, reqErr := r.makeRequest(client)

	if reqErr != nil {
		if requesting.TripsBreaker(reqErr) {
			r.breaker.Failure()
		}

		errorsBucket.AddError(*reqErr)
		return search, nil
	}

	if response.Response == nil || response.Response.Vehicles == nil {
		r.breaker.Failure()
		errorsBucket.AddError(schema.NewParseError("missing vehicles node in supplier response"))
		return search, nil
	}

	r.breaker.Success()

	for _, supplierVehicle := range response.Response.Vehicles.Vehicles {
		if supplierVehicle.Status == "unavailable" {
			continue
		}

		vehicle, err := r.parseVehicle(supplierVehicle)
		if err != nil {
			errorsBucket.AddError(schema.NewParseError(err.Error()))
			continue
		}

		search.Vehicles = append(search.Vehicles, vehicle)
	}

	return search, nil
}

func (r *searchRequest) makeRequest(client *http.Client) (xml.GMWebServiceRS, *schema.SupplierResponseError) {
	requestBody, _ := xmlEncoding.Marshal(&xml.GetVehiclesRQ{
		Header: xml.Header{
			Username: r.configuration.Username,
			Password: r.configuration.Password,
			Version:  r.configuration.Version,
		},
		Request: xml.GetVehiclesParams{
			Type:       "GetVehicles",
			LocationId: r.params.PickUp.Code,
			StartDate:  r.params.PickUp.DateTime.Format(dateFormat),
			StartTime:  r.params.PickUp.DateTime.Format(timeFormat),
			EndDate:    r.params.DropOff.DateTime.Format(dateFormat),
			EndTime:    r.params.DropOff.DateTime.Format(timeFormat),
			RentalCode: r.params.RentalCode,
			Age:        r.params.Age,
		},
	})

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Search)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl, bytes.NewBuffer(append([]byte(xmlEncoding.Header), requestBody...)))
		if err != nil {
			return nil, err
		}

		httpRequest.Header.Set("Content-Type", "application/xml")

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return xml.GMWebServiceRS{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var webServiceResponse xml.GMWebServiceRS
	err := xmlEncoding.Unmarshal(bodyBytes, &webServiceResponse)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return xml.GMWebServiceRS{}, &e
	}

	message := webServiceResponse.ErrorMessage()
	if message != "" {
		e := schema.NewSupplierError(message)
		return xml.GMWebServiceRS{}, &e
	}

	return webServiceResponse, nil
}

func (r *searchRequest) parseVehicle(supplierVehicle xml.Vehicle) (schema.Vehicle, error) {
	qualifier, err := jsonEncoding.Marshal(mapping.SupplierRateReference{
		QuoteId:           supplierVehicle.QuoteId,
		VehicleId:         supplierVehicle.Id,
		LocationId:        r.params.PickUp.Code,
		DropOffLocationId: dropOffIfDifferent(r.params),
		StartDate:         r.params.PickUp.DateTime.Format(dateFormat),
		StartTime:         r.params.PickUp.DateTime.Format(timeFormat),
		EndDate:           r.params.DropOff.DateTime.Format(dateFormat),
		EndTime:           r.params.DropOff.DateTime.Format(timeFormat),
		RentalCode:        r.params.RentalCode,
		Age:               r.params.Age,
	})
	if err != nil {
		return schema.Vehicle{}, err
	}

	rateReference := string(qualifier)
	currency := normalizer.NormalizeCurrencyCode(supplierVehicle.Currency)

	extras := []schema.Extra{}
	if supplierVehicle.Options != nil {
		for _, option := range supplierVehicle.Options.Options {
			extras = append(extras, schema.Extra{
				Code: option.Id,
				Name: option.Name,
				Type: normalizer.CategorizeExtra(option.Type),
				UnitPrice: schema.PriceAmount{
					Amount:   schema.RoundedFloat(option.DailyRate),
					Currency: currency,
				},
				Total: schema.PriceAmount{
					Amount:   schema.RoundedFloat(option.Total),
					Currency: currency,
				},
				Included: option.Included == "yes",
				Required: option.Required == "yes",
			})
		}
	}

	total := supplierVehicle.Total
	breakdown := normalizer.ResolveBreakdown(normalizer.PricingInput{
		Currency:   currency,
		GrandTotal: &total,
	})

	var deposit *schema.DepositInfo
	if supplierVehicle.Deposit != nil || supplierVehicle.Excess != nil {
		deposit = &schema.DepositInfo{
			DepositAmount: supplierVehicle.Deposit,
			ExcessAmount:  supplierVehicle.Excess,
			Currency:      currency,
		}
	}

	var acrissCode *string
	if len(supplierVehicle.Acriss) == 4 {
		acrissCode = converting.PointerToValue(supplierVehicle.Acriss)
	}

	var hasAirco *bool
	if supplierVehicle.Aircon != "" {
		hasAirco = converting.PointerToValue(supplierVehicle.Aircon == "yes")
	}

	days := rentalDays(r.params.PickUp.DateTime, r.params.DropOff.DateTime)

	status := schema.Available
	if supplierVehicle.Status == "on_request" {
		status = schema.OnRequest
	}

	return schema.Vehicle{
		Source:            r.source,
		SupplierVehicleID: supplierVehicle.Id,
		Model:             supplierVehicle.Name,
		Category:          supplierVehicle.Group,
		AcrissCode:        acrissCode,
		Transmission:      supplierVehicle.Transmission,
		Fuel:              supplierVehicle.Fuel,
		Seats:             supplierVehicle.Adults,
		Doors:             supplierVehicle.Doors,
		BigSuitcases:      supplierVehicle.LuggageLarge,
		SmallSuitcases:    supplierVehicle.LuggageSmall,
		HasAirco:          hasAirco,
		DailyPrice: schema.PriceAmount{
			Amount:   schema.RoundedFloat(float64(breakdown.GrandTotal) / float64(days)),
			Currency: currency,
		},
		Breakdown:     breakdown,
		Deposit:       deposit,
		RateReference: &rateReference,
		Status:        status,
		Extras:        extras,
	}, nil
}

func dropOffIfDifferent(params schema.SearchRequestParams) string {
	if params.DropOff.Code != params.PickUp.Code {
		return params.DropOff.Code
	}
	return ""
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
