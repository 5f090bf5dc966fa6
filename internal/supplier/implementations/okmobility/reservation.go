package okmobility

import (
	"bytes"
	"context"
	xmlEncoding "encoding/xml"
	"io"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility/soap"
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

	result, reqErr := r.makeRequest(client)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return reservation, nil
	}

	if result.ReservationNr == "" {
		errorsBucket.AddError(schema.NewParseError("missing reservation number in supplier response"))
		return reservation, nil
	}

	reservation.Status = schema.ReservationStatusOK
	if result.Status != "C" {
		reservation.Status = schema.ReservationStatusPending
	}

	reservation.SupplierReference = converting.PointerToValue(result.ReservationNr)

	return reservation, nil
}

func (r *reservationRequest) makeRequest(client *http.Client) (soap.CreateReservationResult, *schema.SupplierResponseError) {
	requestBody, _ := xmlEncoding.Marshal(r.requestPayload())

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Reservation)

	// a timed out attempt may have landed on the supplier side, never retry
	httpRequest, _ := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl+"/createReservation", bytes.NewBuffer(append([]byte(xmlEncoding.Header), requestBody...)))
	httpRequest.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpRequest.Header.Set("SOAPAction", "createReservation")

	rs, reqErr := requesting.RequestErrors(client.Do(httpRequest))
	if reqErr != nil {
		return soap.CreateReservationResult{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var responseEnvelope soap.ResponseEnvelope
	err := xmlEncoding.Unmarshal(bodyBytes, &responseEnvelope)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return soap.CreateReservationResult{}, &e
	}

	if responseEnvelope.Body.CreateReservation == nil {
		e := schema.NewParseError("missing createReservationResponse in supplier response")
		return soap.CreateReservationResult{}, &e
	}

	result := responseEnvelope.Body.CreateReservation.Result
	if result.Failed() {
		e := schema.NewSupplierError(result.Message())
		return soap.CreateReservationResult{}, &e
	}

	return result, nil
}

func (r *reservationRequest) requestPayload() soap.RequestEnvelope {
	extraIds := make([]string, 0, len(r.params.Extras))
	for _, extra := range r.params.Extras {
		extraIds = append(extraIds, extra.Code)
	}

	return soap.NewRequestEnvelope(soap.RequestBody{
		CreateReservation: &soap.CreateReservationRQ{
			ObjRequest: soap.ReservationParams{
				CustomerCode: r.configuration.CustomerCode,
				CompanyCode:  r.configuration.CompanyCode,
				RateCode:     r.supplierRateReference.RateCode,
				MessageType:  "N",
				Reference:    r.params.BookingNumber,
				Token:        r.supplierRateReference.Token,
				GroupCode:    r.supplierRateReference.GroupCode,
				PickUp: soap.Stop{
					Date:          r.supplierRateReference.PickUpDate,
					RentalStation: r.supplierRateReference.PickUpStation,
				},
				DropOff: soap.Stop{
					Date:          r.supplierRateReference.DropOffDate,
					RentalStation: r.supplierRateReference.DropOffStation,
				},
				Driver: soap.Driver{
					Name:    converting.LatinCharacters(r.params.Customer.FirstName + " " + r.params.Customer.LastName),
					Phone:   r.params.Customer.Phone,
					EMail:   r.params.Customer.Email,
					Country: r.params.Customer.ResidenceCountry,
				},
				Extras: strings.Join(extraIds, ","),
			},
		},
	})
}
