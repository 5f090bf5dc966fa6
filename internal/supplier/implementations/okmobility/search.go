package okmobility

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
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility/soap"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

// supplierCurrency is fixed, the webservice quotes euros only.
const (
	supplierCurrency = "EUR"
	dateTimeFormat   = "2006-01-02 15:04:05"
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

	result, reqErr := r.makeRequest(client)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return search, nil
	}

	for _, groupPrice := range result.Prices {
		vehicle, err := r.parseGroupPrice(groupPrice)
		if err != nil {
			errorsBucket.AddError(schema.NewParseError(err.Error()))
			continue
		}

		search.Vehicles = append(search.Vehicles, vehicle)
	}

	return search, nil
}

func (r *searchRequest) makeRequest(client *http.Client) (soap.MultiplePricesResult, *schema.SupplierResponseError) {
	envelope := soap.NewRequestEnvelope(soap.RequestBody{
		MultiplePrices: &soap.MultiplePricesRQ{
			ObjRequest: soap.MultiplePricesParams{
				CustomerCode: r.configuration.CustomerCode,
				CompanyCode:  r.configuration.CompanyCode,
				PickUp: soap.RentalPoint{
					Date:          r.params.PickUp.DateTime.Format(dateTimeFormat),
					RentalStation: r.params.PickUp.Code,
				},
				DropOff: soap.RentalPoint{
					Date:          r.params.DropOff.DateTime.Format(dateTimeFormat),
					RentalStation: r.params.DropOff.Code,
				},
				ExtendedModel: true,
			},
		},
	})

	requestBody, _ := xmlEncoding.Marshal(envelope)

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Search)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl+"/getMultiplePrices", bytes.NewBuffer(append([]byte(xmlEncoding.Header), requestBody...)))
		if err != nil {
			return nil, err
		}

		httpRequest.Header.Set("Content-Type", "text/xml; charset=utf-8")
		httpRequest.Header.Set("SOAPAction", "getMultiplePrices")

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return soap.MultiplePricesResult{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var responseEnvelope soap.ResponseEnvelope
	err := xmlEncoding.Unmarshal(bodyBytes, &responseEnvelope)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return soap.MultiplePricesResult{}, &e
	}

	if responseEnvelope.Body.MultiplePrices == nil {
		e := schema.NewParseError("missing getMultiplePricesResponse in supplier response")
		return soap.MultiplePricesResult{}, &e
	}

	result := responseEnvelope.Body.MultiplePrices.Result
	if result.Failed() {
		e := schema.NewSupplierError(result.Message())
		return soap.MultiplePricesResult{}, &e
	}

	return result, nil
}

func (r *searchRequest) parseGroupPrice(groupPrice soap.GroupPrice) (schema.Vehicle, error) {
	qualifier, err := jsonEncoding.Marshal(mapping.SupplierRateReference{
		Token:          groupPrice.Token,
		GroupID:        groupPrice.GroupID,
		GroupCode:      groupPrice.Sipp,
		RateCode:       groupPrice.RateCode,
		PickUpStation:  r.params.PickUp.Code,
		DropOffStation: r.params.DropOff.Code,
		PickUpDate:     r.params.PickUp.DateTime.Format(dateTimeFormat),
		DropOffDate:    r.params.DropOff.DateTime.Format(dateTimeFormat),
	})
	if err != nil {
		return schema.Vehicle{}, err
	}

	rateReference := string(qualifier)

	extras := []schema.Extra{}
	if groupPrice.AllExtras != nil {
		for _, groupExtra := range groupPrice.AllExtras.Extras {
			typeTag := "equipment"
			if groupExtra.Insurance == "true" {
				typeTag = "insurance"
			}

			extras = append(extras, schema.Extra{
				Code: groupExtra.ExtraID,
				Name: groupExtra.Name,
				Type: normalizer.CategorizeExtra(typeTag),
				UnitPrice: schema.PriceAmount{
					Amount:   schema.RoundedFloat(groupExtra.ValueWithTax),
					Currency: supplierCurrency,
				},
				Total: schema.PriceAmount{
					Amount:   schema.RoundedFloat(groupExtra.ValueWithTax),
					Currency: supplierCurrency,
				},
				Included: groupExtra.Included == "true",
				Required: groupExtra.Required == "true",
			})
		}
	}

	taxTotal := groupPrice.PreviewValue - groupPrice.ValueWithoutTax
	breakdown := normalizer.ResolveBreakdown(normalizer.PricingInput{
		Currency: supplierCurrency,
		TopLevel: &normalizer.PricingFields{
			TaxTotal:   &taxTotal,
			GrandTotal: &groupPrice.PreviewValue,
		},
	})

	dailyPrice := groupPrice.DayValue
	if dailyPrice == 0 {
		days := rentalDays(r.params.PickUp.DateTime, r.params.DropOff.DateTime)
		dailyPrice = float64(breakdown.GrandTotal) / float64(days)
	}

	var acrissCode *string
	if len(groupPrice.Sipp) == 4 {
		acrissCode = converting.PointerToValue(groupPrice.Sipp)
	}

	var imageUrl *string
	if groupPrice.ImageURL != "" {
		imageUrl = converting.PointerToValue(groupPrice.ImageURL)
	}

	var mileage *schema.Mileage
	if groupPrice.KmsIncluded == "true" {
		mileage = &schema.Mileage{Unlimited: true}
	}

	return schema.Vehicle{
		Source:            schema.SourceOkMobility,
		SupplierVehicleID: groupPrice.GroupID,
		Model:             groupPrice.GroupName,
		Category:          groupPrice.GroupName,
		AcrissCode:        acrissCode,
		ImageUrl:          imageUrl,
		DailyPrice: schema.PriceAmount{
			Amount:   schema.RoundedFloat(dailyPrice),
			Currency: supplierCurrency,
		},
		Breakdown:     breakdown,
		Mileage:       mileage,
		RateReference: &rateReference,
		Status:        schema.Available,
		Extras:        extras,
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
