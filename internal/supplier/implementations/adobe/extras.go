package adobe

import (
	"bytes"
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/json"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"github.com/rs/zerolog"
)

// Adobe has no dedicated catalogue endpoint. A throwaway booking for the
// requested office/category returns the items list with protections and
// extras priced for the rental window.
type extrasRequest struct {
	cache         *caching.Cacher
	params        schema.ExtrasRequestParams
	configuration configuration
	logger        *zerolog.Logger
}

func (r *extrasRequest) Execute(ctx context.Context, httpTransport *http.Transport) (schema.ExtrasResponse, error) {
	extras := schema.ExtrasResponse{
		Extras: []schema.Extra{},
	}

	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()

	extras.SupplierRequests = requestsBucket.SupplierRequests()
	extras.Errors = errorsBucket.Errors()

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
		return extras, err
	}

	if auth.Token == nil {
		return extras, nil
	}

	client := &http.Client{
		Timeout: time.Duration(r.params.Timeouts.Default) * time.Millisecond,
		Transport: &requesting.InterceptorTransport{
			Transport: httpTransport,
			Middlewares: []requesting.TransportMiddleware{
				requesting.NewLoggingTransportMiddleware(r.logger),
				requesting.NewBucketTransportMiddleware(&requestsBucket),
			},
		},
	}

	probe, reqErr := r.createProbeBooking(client, *auth.Token)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return extras, nil
	}

	details, reqErr := r.fetchBookingDetails(client, *auth.Token, probe)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return extras, nil
	}

	for _, item := range details {
		extras.Extras = append(extras.Extras, schema.Extra{
			Code: item.Code,
			Name: item.Name,
			Type: normalizer.CategorizeExtra(item.Type),
			UnitPrice: schema.PriceAmount{
				Amount:   schema.RoundedFloat(item.Price),
				Currency: normalizer.NormalizeCurrencyCode(item.Currency),
			},
			Included: item.Included,
			Required: item.Required,
		})
	}

	return extras, nil
}

func (r *extrasRequest) createProbeBooking(client *http.Client, token string) (string, *schema.SupplierResponseError) {
	requestBody, _ := jsonEncoding.Marshal(&json.BookingRQ{
		PickupOffice: r.params.LocationCode,
		ReturnOffice: r.params.LocationCode,
		StartDate:    r.params.PickUp.DateTime.Format(schema.DateTimeFormat),
		EndDate:      r.params.DropOff.DateTime.Format(schema.DateTimeFormat),
		Category:     r.params.VehicleCategory,
		CustomerCode: r.configuration.CustomerCode,
		Name:         "Test",
		LastName:     "User",
		Email:        "test@example.com",
		Phone:        "123456789",
	})

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Extras)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl+"/Booking", bytes.NewBuffer(requestBody))
		if err != nil {
			return nil, err
		}

		httpRequest.Header.Set("Content-Type", "application/json")
		httpRequest.Header.Set("Authorization", "Bearer "+token)

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return "", reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var bookingResponse json.BookingRS
	err := jsonEncoding.Unmarshal(bodyBytes, &bookingResponse)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return "", &e
	}

	message := bookingResponse.ErrorMessage()
	if message != "" {
		e := schema.NewSupplierError(message)
		return "", &e
	}

	if bookingResponse.Data == nil || bookingResponse.Data.BookingNumber == "" {
		e := schema.NewParseError("missing booking number in supplier response")
		return "", &e
	}

	return bookingResponse.Data.BookingNumber, nil
}

func (r *extrasRequest) fetchBookingDetails(client *http.Client, token, bookingNumber string) ([]json.BookingItem, *schema.SupplierResponseError) {
	values := url.Values{}
	values.Set("bookingNumber", bookingNumber)
	values.Set("customerCode", r.configuration.CustomerCode)

	requestUrl := fmt.Sprintf("%v/Booking?%v", r.configuration.BaseUrl, values.Encode())
	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Extras)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodGet, requestUrl, http.NoBody)
		if err != nil {
			return nil, err
		}

		httpRequest.Header.Set("Authorization", "Bearer "+token)

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return nil, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var bookingResponse json.BookingRS
	err := jsonEncoding.Unmarshal(bodyBytes, &bookingResponse)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return nil, &e
	}

	message := bookingResponse.ErrorMessage()
	if message != "" {
		e := schema.NewSupplierError(message)
		return nil, &e
	}

	if bookingResponse.Data == nil {
		e := schema.NewParseError("missing data node in booking details response")
		return nil, &e
	}

	return bookingResponse.Data.Items, nil
}
