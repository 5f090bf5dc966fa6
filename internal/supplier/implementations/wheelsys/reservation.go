package wheelsys

import (
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys/json"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

type reservationRequest struct {
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

	booking, reqErr := r.makeRequest(client)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return reservation, nil
	}

	if booking.Error != "" {
		errorsBucket.AddError(schema.NewSupplierError(booking.Error))
		return reservation, nil
	}

	confirmation := booking.Irn
	if confirmation == "" {
		confirmation = booking.RefNo
	}

	if confirmation == "" {
		errorsBucket.AddError(schema.NewParseError("missing confirmation number in supplier response"))
		return reservation, nil
	}

	reservation.Status = schema.ReservationStatusPending
	if booking.Status == "CNF" {
		reservation.Status = schema.ReservationStatusOK
	}

	reservation.SupplierReference = converting.PointerToValue(confirmation)

	return reservation, nil
}

func (r *reservationRequest) makeRequest(client *http.Client) (json.BookingRS, *schema.SupplierResponseError) {
	v, _ := query.Values(r.requestPayload())

	url := fmt.Sprintf("%v/make-booking_%v.html?%v", r.configuration.BaseUrl, r.configuration.LinkCode, v.Encode())
	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Reservation)

	// a timed out attempt may have landed on the supplier side, never retry
	httpRequest, _ := http.NewRequestWithContext(c, http.MethodGet, url, http.NoBody)

	rs, reqErr := requesting.RequestErrors(client.Do(httpRequest))
	if reqErr != nil {
		return json.BookingRS{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var booking json.BookingRS
	err := jsonEncoding.Unmarshal(bodyBytes, &booking)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return json.BookingRS{}, &e
	}

	return booking, nil
}

func (r *reservationRequest) requestPayload() json.BookingRQ {
	optionCodes := make([]string, len(r.params.Extras))
	for i, extra := range r.params.Extras {
		optionCodes[i] = extra.Code
	}

	return json.BookingRQ{
		Agent:         r.configuration.AgentCode,
		Account:       r.configuration.AccountNo,
		DateFrom:      r.supplierRateReference.DateFrom,
		TimeFrom:      r.supplierRateReference.TimeFrom,
		DateTo:        r.supplierRateReference.DateTo,
		TimeTo:        r.supplierRateReference.TimeTo,
		PickupStation: r.supplierRateReference.PickUpStation,
		ReturnStation: r.supplierRateReference.ReturnStation,
		Group:         r.supplierRateReference.GroupCode,
		FirstName:     converting.LatinCharacters(r.params.Customer.FirstName),
		LastName:      converting.LatinCharacters(r.params.Customer.LastName),
		Email:         r.params.Customer.Email,
		Phone:         r.params.Customer.Phone,
		Reference:     r.params.BookingNumber,
		Options:       strings.Join(optionCodes, ","),
		Format:        "json",
	}
}
