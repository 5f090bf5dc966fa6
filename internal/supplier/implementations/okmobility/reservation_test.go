package okmobility_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/okmobility"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func reservationParamsTemplate() schema.ReservationRequest {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-11-05T09:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-11-08T09:00:00")

	return schema.ReservationRequest{
		Source:            schema.SourceOkMobility,
		SupplierVehicleID: "B1",
		RateReference:     `{"token":"tok-4411","groupId":"B1","groupCode":"MBMR","rateCode":"RC-9","pickUpStation":"PMI","dropOffStation":"PMI","pickUpDate":"2026-11-05 09:00:00","dropOffDate":"2026-11-08 09:00:00"}`,
		PickUp:            schema.RequestLocation{Code: "PMI", DateTime: pickUp},
		DropOff:           schema.RequestLocation{Code: "PMI", DateTime: dropOff},
		Customer: schema.Customer{
			FirstName:        "José",
			LastName:         "García",
			Email:            "jose@example.com",
			Phone:            "+34600000000",
			ResidenceCountry: "ES",
		},
		Extras: []schema.Extra{
			{Code: "21", Quantity: 1},
			{Code: "7", Quantity: 1},
		},
		BookingNumber: "BK-2026-000051",
		Timeouts:      schema.Timeouts{Default: 5000},
	}
}

func TestOkMobilityCreateReservation(t *testing.T) {
	t.Setenv("TEST", "true")

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should create the reservation and return the confirmation number", func(t *testing.T) {
		var requestBody []byte

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/createReservation", r.URL.Path)
			assert.Equal(t, "createReservation", r.Header.Get("SOAPAction"))

			requestBody, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
	<soapenv:Body>
		<createReservationResponse>
			<createReservationResult>
				<errorCode>SUCCESS</errorCode>
				<Status>C</Status>
				<Reservation_Nr>OK-339812</Reservation_Nr>
			</createReservationResult>
		</createReservationResponse>
	</soapenv:Body>
</soapenv:Envelope>`))
		}))
		defer testServer.Close()

		t.Setenv("OKMOBILITY_URL", testServer.URL)
		t.Setenv("OKMOBILITY_CUSTOMER_CODE", "60168")
		t.Setenv("OKMOBILITY_COMPANY_CODE", "9937")

		supplier := okmobility.New()

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusOK, result.Status)
		assert.Equal(t, "OK-339812", *result.SupplierReference)

		sent := string(requestBody)
		assert.Contains(t, sent, "<get:rateCode>RC-9</get:rateCode>")
		assert.Contains(t, sent, "<get:MessageType>N</get:MessageType>")
		assert.Contains(t, sent, "<get:Reference>BK-2026-000051</get:Reference>")
		assert.Contains(t, sent, "<get:token>tok-4411</get:token>")
		assert.Contains(t, sent, "<get:groupCode>MBMR</get:groupCode>")
		assert.Contains(t, sent, "<get:Name>Jose Garcia</get:Name>")
		assert.Contains(t, sent, "<get:Extras>21,7</get:Extras>")
	})

	t.Run("should report pending when the reservation is not confirmed", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
	<soapenv:Body>
		<createReservationResponse>
			<createReservationResult>
				<errorCode>SUCCESS</errorCode>
				<Status>P</Status>
				<Reservation_Nr>OK-339813</Reservation_Nr>
			</createReservationResult>
		</createReservationResponse>
	</soapenv:Body>
</soapenv:Envelope>`))
		}))
		defer testServer.Close()

		t.Setenv("OKMOBILITY_URL", testServer.URL)

		supplier := okmobility.New()

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusPending, result.Status)
	})

	t.Run("should surface the supplier rejection", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
	<soapenv:Body>
		<createReservationResponse>
			<createReservationResult>
				<errorCode>TOKEN_EXPIRED</errorCode>
				<errorMessage>quote token has expired</errorMessage>
			</createReservationResult>
		</createReservationResponse>
	</soapenv:Body>
</soapenv:Envelope>`))
		}))
		defer testServer.Close()

		t.Setenv("OKMOBILITY_URL", testServer.URL)

		supplier := okmobility.New()

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
		assert.Equal(t, schema.SupplierError, (*result.Errors)[0].Code)
		assert.Equal(t, "quote token has expired", (*result.Errors)[0].Message)
	})

	t.Run("should fail fast on an unreadable rate reference", func(t *testing.T) {
		supplier := okmobility.New()

		params := reservationParamsTemplate()
		params.RateReference = "{"

		result, err := supplier.CreateReservation(context.Background(), params, &log)

		assert.ErrorIs(t, err, errors.ErrInvalidRateReference)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
	})
}
