package greenmotion_test

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
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/greenmotion"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func reservationParamsTemplate() schema.ReservationRequest {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-10-01T10:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-10-03T10:00:00")

	return schema.ReservationRequest{
		Source:            schema.SourceGreenMotion,
		SupplierVehicleID: "1371",
		RateReference:     `{"quoteId":"Q-889","vehicleId":"1371","locationId":"12","startDate":"2026-10-01","startTime":"10:00","endDate":"2026-10-03","endTime":"10:00","rentalCode":"GB01","age":35}`,
		PickUp:            schema.RequestLocation{Code: "12", DateTime: pickUp},
		DropOff:           schema.RequestLocation{Code: "12", DateTime: dropOff},
		Customer: schema.Customer{
			FirstName:        "Zoë",
			LastName:         "Müller",
			Email:            "zoe@example.com",
			Phone:            "+4915111111111",
			ResidenceCountry: "DE",
		},
		Extras: []schema.Extra{
			{
				Code:     "5",
				Name:     "Sat Nav",
				Type:     schema.ExtraTypeEquipment,
				Quantity: 1,
				Total:    schema.PriceAmount{Amount: 16, Currency: "GBP"},
			},
		},
		BookingNumber: "BK-2026-000042",
		Timeouts:      schema.Timeouts{Default: 5000},
	}
}

func TestGreenMotionCreateReservation(t *testing.T) {
	t.Setenv("TEST", "true")

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should place the reservation and return the booking reference", func(t *testing.T) {
		var requestBody []byte

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestBody, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?><gm_webservice><response><booking_ref>GM-77120</booking_ref><status>confirmed</status></response></gm_webservice>`))
		}))
		defer testServer.Close()

		t.Setenv("GREENMOTION_URL", testServer.URL)
		t.Setenv("GREENMOTION_USERNAME", "gm-user")
		t.Setenv("GREENMOTION_PASSWORD", "gm-pass")

		supplier := greenmotion.New(schema.SourceGreenMotion)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusOK, result.Status)
		assert.Equal(t, "GM-77120", *result.SupplierReference)

		sent := string(requestBody)
		assert.Contains(t, sent, `<request type="MakeReservation">`)
		assert.Contains(t, sent, "<firstname>Zoe</firstname>")
		assert.Contains(t, sent, "<surname>Muller</surname>")
		assert.Contains(t, sent, "<comments>BK-2026-000042</comments>")
		assert.Contains(t, sent, `<option id="5" option_qty="1" option_total="16.00" pre_pay="no">`)
	})

	t.Run("should report pending when the supplier has not confirmed yet", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?><gm_webservice><response><booking_ref>GM-77121</booking_ref><status>pending</status></response></gm_webservice>`))
		}))
		defer testServer.Close()

		t.Setenv("GREENMOTION_URL", testServer.URL)

		supplier := greenmotion.New(schema.SourceGreenMotion)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusPending, result.Status)
	})

	t.Run("should fail fast on an unreadable rate reference", func(t *testing.T) {
		supplierCalls := 0

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplierCalls++
		}))
		defer testServer.Close()

		t.Setenv("GREENMOTION_URL", testServer.URL)

		supplier := greenmotion.New(schema.SourceGreenMotion)

		params := reservationParamsTemplate()
		params.RateReference = "not-json"

		result, err := supplier.CreateReservation(context.Background(), params, &log)

		assert.ErrorIs(t, err, errors.ErrInvalidRateReference)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
		assert.Equal(t, 0, supplierCalls)
	})

	t.Run("should never retry a failed reservation call", func(t *testing.T) {
		supplierCalls := 0

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplierCalls++

			hj := w.(http.Hijacker)
			conn, _, _ := hj.Hijack()
			conn.Close()
		}))
		defer testServer.Close()

		t.Setenv("GREENMOTION_URL", testServer.URL)

		supplier := greenmotion.New(schema.SourceGreenMotion)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
		assert.Equal(t, 1, supplierCalls)
		assert.Equal(t, schema.TransportError, (*result.Errors)[0].Code)
	})

	t.Run("should trip the breaker on consecutive unparseable responses", func(t *testing.T) {
		supplierCalls := 0

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplierCalls++

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`this is not xml`))
		}))
		defer testServer.Close()

		t.Setenv("GREENMOTION_URL", testServer.URL)
		t.Setenv("GREENMOTION_BREAKER_THRESHOLD", "2")
		t.Setenv("GREENMOTION_BREAKER_COOLDOWN_MS", "60000")

		supplier := greenmotion.New(schema.SourceGreenMotion)

		for i := 0; i < 2; i++ {
			result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)
			assert.Nil(t, err)
			assert.Equal(t, schema.ParseError, (*result.Errors)[0].Code)
		}

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, 2, supplierCalls, "open breaker must not touch the supplier")
		assert.Equal(t, schema.SupplierUnavailable, (*result.Errors)[0].Code)
	})
}
