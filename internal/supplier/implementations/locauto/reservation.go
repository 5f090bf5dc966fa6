package locauto

import (
	"bytes"
	"context"
	xmlEncoding "encoding/xml"
	"io"
	"net/http"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto/ota"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"github.com/google/uuid"
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

	if result.UniqueID == nil || result.UniqueID.ID == "" {
		errorsBucket.AddError(schema.NewParseError("missing confirmation number in supplier response"))
		return reservation, nil
	}

	reservation.Status = schema.ReservationStatusOK
	reservation.SupplierReference = converting.PointerToValue(result.UniqueID.ID)

	return reservation, nil
}

func (r *reservationRequest) makeRequest(client *http.Client) (ota.VehResRSResult, *schema.SupplierResponseError) {
	requestBody, _ := xmlEncoding.Marshal(r.requestPayload())

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Reservation)

	// a timed out attempt may have landed on the supplier side, never retry
	httpRequest, _ := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl, bytes.NewBuffer(append([]byte(xmlEncoding.Header), requestBody...)))
	httpRequest.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpRequest.Header.Set("SOAPAction", reservationSoapAction)

	rs, reqErr := requesting.RequestErrors(client.Do(httpRequest))
	if reqErr != nil {
		return ota.VehResRSResult{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var responseEnvelope ota.ResponseEnvelope
	err := xmlEncoding.Unmarshal(bodyBytes, &responseEnvelope)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return ota.VehResRSResult{}, &e
	}

	if responseEnvelope.Body.VehRes == nil {
		e := schema.NewParseError("missing OTA_VehResRSResponse in supplier response")
		return ota.VehResRSResult{}, &e
	}

	result := responseEnvelope.Body.VehRes.Result
	if message := result.ErrorMessage(); message != "" {
		e := schema.NewSupplierError(message)
		return ota.VehResRSResult{}, &e
	}

	return result, nil
}

func (r *reservationRequest) requestPayload() ota.RequestEnvelope {
	var specialEquipPrefs *ota.SpecialEquipPrefs
	if len(r.params.Extras) > 0 {
		prefs := make([]ota.SpecialEquipPref, 0, len(r.params.Extras))
		for _, extra := range r.params.Extras {
			quantity := extra.Quantity
			if quantity < 1 {
				quantity = 1
			}

			prefs = append(prefs, ota.SpecialEquipPref{
				Code:     extra.Code,
				Quantity: quantity,
			})
		}
		specialEquipPrefs = &ota.SpecialEquipPrefs{SpecialEquipPref: prefs}
	}

	return ota.NewRequestEnvelope(ota.RequestBody{
		VehRes: &ota.VehResWrapper{
			VehResRQ: ota.VehResRQ{
				EchoToken: uuid.NewString(),
				TimeStamp: time.Now().UTC().Format(time.RFC3339),
				Target:    "Production",
				Version:   "1.0",
				POS:       newPOS(r.configuration),
				VehResRQCore: ota.VehResRQCore{
					VehRentalCore: ota.VehRentalCore{
						PickUpDateTime: r.supplierRateReference.PickUpDateTime,
						ReturnDateTime: r.supplierRateReference.ReturnDateTime,
						PickUpLocation: ota.Location{LocationCode: r.supplierRateReference.PickUpLocationCode},
						ReturnLocation: ota.Location{LocationCode: r.supplierRateReference.ReturnLocationCode},
					},
					Customer: ota.Customer{
						Primary: ota.Primary{
							PersonName: ota.PersonName{
								GivenName: converting.LatinCharacters(r.params.Customer.FirstName),
								Surname:   converting.LatinCharacters(r.params.Customer.LastName),
							},
						},
					},
					VehPref: ota.VehPref{
						Code:        r.supplierRateReference.SippCode,
						CodeContext: "SIPP",
					},
					SpecialEquipPrefs: specialEquipPrefs,
				},
			},
		},
	})
}

