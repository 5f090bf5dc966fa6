package renteon

import (
	"bytes"
	"context"
	jsonEncoding "encoding/json"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon/json"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
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

	if booking.Id == "" {
		errorsBucket.AddError(schema.NewParseError("missing booking id in supplier response"))
		return reservation, nil
	}

	reservation.Status = schema.ReservationStatusOK
	if booking.Status == "pending" {
		reservation.Status = schema.ReservationStatusPending
	}

	reservation.SupplierReference = converting.PointerToValue(booking.Id)

	return reservation, nil
}

func (r *reservationRequest) makeRequest(client *http.Client) (json.BookingRS, *schema.SupplierResponseError) {
	requestBody, _ := jsonEncoding.Marshal(r.requestPayload())

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Reservation)

	// a timed out attempt may have landed on the supplier side, never retry
	httpRequest, _ := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl+"/api/bookings", bytes.NewBuffer(requestBody))
	httpRequest.SetBasicAuth(r.configuration.Username, r.configuration.Password)
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Accept", "application/json")

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
	return json.BookingRQ{
		ProviderCode: r.configuration.ProviderCode,
		Vehicle: json.BookingVehicle{
			Id:        r.supplierRateReference.VehicleId,
			DailyRate: r.supplierRateReference.DailyRate,
			Currency:  r.supplierRateReference.Currency,
		},
		Customer: json.BookingCustomer{
			FirstName: converting.LatinCharacters(r.params.Customer.FirstName),
			LastName:  converting.LatinCharacters(r.params.Customer.LastName),
			Email:     r.params.Customer.Email,
			Phone:     r.params.Customer.Phone,
			Country:   r.params.Customer.ResidenceCountry,
		},
		Booking: json.BookingDetails{
			PickupLocationCode:  r.supplierRateReference.PickupLocationCode,
			DropoffLocationCode: r.supplierRateReference.DropoffLocationCode,
			StartDate:           r.supplierRateReference.StartDate,
			EndDate:             r.supplierRateReference.EndDate,
			Reference:           r.params.BookingNumber,
		},
	}
}
