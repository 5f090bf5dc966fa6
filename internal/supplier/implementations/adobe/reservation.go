package adobe

import (
	"bytes"
	"context"
	jsonEncoding "encoding/json"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/json"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/adobe/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"github.com/rs/zerolog"
)

type reservationRequest struct {
	cache                 *caching.Cacher
	params                schema.ReservationRequest
	configuration         configuration
	supplierRateReference mapping.SupplierRateReference
	logger                *zerolog.Logger
}

func (r *reservationRequest) Execute(httpTransport *http.Transport) (schema.ReservationResult, error) {
	reservation := schema.ReservationResult{
		Status: schema.ReservationStatusFailed,
	}

	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()

	reservation.SupplierRequests = requestsBucket.SupplierRequests()
	reservation.Errors = errorsBucket.Errors()

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
		return reservation, err
	}

	if auth.Token == nil {
		return reservation, nil
	}

	client := &http.Client{
		Timeout: time.Duration(r.params.Timeouts.ForReservation()) * time.Millisecond,
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
		return reservation, nil
	}

	if response.Data == nil || response.Data.BookingNumber == "" {
		errorsBucket.AddError(schema.NewParseError("missing booking number in supplier response"))
		return reservation, nil
	}

	reservation.Status = schema.ReservationStatusOK
	reservation.SupplierReference = converting.PointerToValue(response.Data.BookingNumber)

	return reservation, nil
}

func (r *reservationRequest) makeRequest(
	client *http.Client,
	token string,
) (json.BookingRS, *schema.SupplierResponseError) {
	body := bytes.NewBuffer(r.requestBody())

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Reservation)

	// reservation creation is never retried, a timed out attempt may have
	// landed on the supplier side
	httpRequest, _ := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl+"/Booking", body)
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+token)

	rs, reqErr := requesting.RequestErrors(client.Do(httpRequest))
	if reqErr != nil {
		return json.BookingRS{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var bookingResponse json.BookingRS
	err := jsonEncoding.Unmarshal(bodyBytes, &bookingResponse)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return json.BookingRS{}, &e
	}

	message := bookingResponse.ErrorMessage()
	if message != "" {
		e := schema.NewSupplierError(message)
		return json.BookingRS{}, &e
	}

	return bookingResponse, nil
}

func (r *reservationRequest) requestBody() []byte {
	items := []json.BookingRQItem{}
	for _, extra := range r.params.Extras {
		quantity := extra.Quantity
		if quantity < 1 {
			quantity = 1
		}

		items = append(items, json.BookingRQItem{
			Code:     extra.Code,
			Quantity: quantity,
		})
	}

	body, _ := jsonEncoding.Marshal(&json.BookingRQ{
		PickupOffice: r.supplierRateReference.PickupOffice,
		ReturnOffice: r.supplierRateReference.ReturnOffice,
		StartDate:    r.supplierRateReference.StartDate,
		EndDate:      r.supplierRateReference.EndDate,
		Category:     r.supplierRateReference.Category,
		CustomerCode: r.configuration.CustomerCode,
		Name:         converting.LatinCharacters(r.params.Customer.FirstName),
		LastName:     converting.LatinCharacters(r.params.Customer.LastName),
		Email:        r.params.Customer.Email,
		Phone:        r.params.Customer.Phone,
		Items:        items,
	})

	return body
}
