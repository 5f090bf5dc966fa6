package greenmotion

import (
	"bytes"
	"context"
	xmlEncoding "encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/breaker"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion/xml"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"github.com/rs/zerolog"
)

type reservationRequest struct {
	source                string
	params                schema.ReservationRequest
	configuration         configuration
	supplierRateReference mapping.SupplierRateReference
	breaker               *breaker.Breaker
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

	response, reqErr := r.makeRequest(client)

	if reqErr != nil {
		if requesting.TripsBreaker(reqErr) {
			r.breaker.Failure()
		}

		errorsBucket.AddError(*reqErr)
		return reservation, nil
	}

	if response.Response == nil || response.Response.BookingRef == "" {
		r.breaker.Failure()
		errorsBucket.AddError(schema.NewParseError("missing booking reference in supplier response"))
		return reservation, nil
	}

	r.breaker.Success()

	reservation.Status = schema.ReservationStatusOK
	if response.Response.Status == "pending" {
		reservation.Status = schema.ReservationStatusPending
	}

	reservation.SupplierReference = converting.PointerToValue(response.Response.BookingRef)

	return reservation, nil
}

func (r *reservationRequest) makeRequest(client *http.Client) (xml.GMWebServiceRS, *schema.SupplierResponseError) {
	requestBody, _ := xmlEncoding.Marshal(r.requestPayload())

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Reservation)

	// a timed out attempt may have landed on the supplier side, never retry
	httpRequest, _ := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl, bytes.NewBuffer(append([]byte(xmlEncoding.Header), requestBody...)))
	httpRequest.Header.Set("Content-Type", "application/xml")

	rs, reqErr := requesting.RequestErrors(client.Do(httpRequest))
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

func (r *reservationRequest) requestPayload() *xml.MakeReservationRQ {
	options := []xml.SelectedOption{}
	for _, extra := range r.params.Extras {
		quantity := extra.Quantity
		if quantity < 1 {
			quantity = 1
		}

		options = append(options, xml.SelectedOption{
			Id:          extra.Code,
			OptionQty:   quantity,
			OptionTotal: fmt.Sprintf("%.2f", float64(extra.Total.Amount)),
			PrePay:      "no",
		})
	}

	return &xml.MakeReservationRQ{
		Header: xml.Header{
			Username: r.configuration.Username,
			Password: r.configuration.Password,
			Version:  r.configuration.Version,
		},
		Request: xml.MakeReservationParams{
			Type:              "MakeReservation",
			LocationId:        r.supplierRateReference.LocationId,
			DropOffLocationId: r.supplierRateReference.DropOffLocationId,
			StartDate:         r.supplierRateReference.StartDate,
			StartTime:         r.supplierRateReference.StartTime,
			EndDate:           r.supplierRateReference.EndDate,
			EndTime:           r.supplierRateReference.EndTime,
			RentalCode:        r.supplierRateReference.RentalCode,
			Age:               r.supplierRateReference.Age,
			Customer: xml.Customer{
				Firstname: converting.LatinCharacters(r.params.Customer.FirstName),
				Surname:   converting.LatinCharacters(r.params.Customer.LastName),
				Email:     r.params.Customer.Email,
				Phone:     r.params.Customer.Phone,
				Country:   r.params.Customer.ResidenceCountry,
				Comments:  r.params.BookingNumber,
			},
			Options: xml.Options{Options: options},
		},
	}
}
