package wheelsys_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/errors"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys"
	"github.com/go-redis/redismock/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func reservationParamsTemplate() schema.ReservationRequest {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-10-01T10:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-10-04T10:00:00")

	return schema.ReservationRequest{
		Source:            schema.SourceWheelsys,
		SupplierVehicleID: "B",
		RateReference:     `{"groupCode":"B","dailyRate":45,"pickUpStation":"TIA","returnStation":"TIA","dateFrom":"01/10/2026","timeFrom":"10:00","dateTo":"04/10/2026","timeTo":"10:00"}`,
		PickUp:            schema.RequestLocation{Code: "TIA", DateTime: pickUp},
		DropOff:           schema.RequestLocation{Code: "TIA", DateTime: dropOff},
		Customer: schema.Customer{
			FirstName: "Péter",
			LastName:  "Horváth",
			Email:     "peter@example.com",
			Phone:     "+355690000000",
		},
		Extras: []schema.Extra{
			{Code: "CDW", Quantity: 1},
			{Code: "BBS", Quantity: 1},
		},
		BookingNumber: "BK-2026-000091",
		Timeouts:      schema.Timeouts{Default: 5000},
	}
}

func TestWheelsysCreateReservation(t *testing.T) {
	t.Setenv("TEST", "true")

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should create the booking and return its reference", func(t *testing.T) {
		supplierCalls := 0

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplierCalls++

			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/make-booking_LNK123.html", r.URL.Path)
			assert.Equal(t, "AG1", r.URL.Query().Get("agent"))
			assert.Equal(t, "ACC-9", r.URL.Query().Get("account"))
			assert.Equal(t, "B", r.URL.Query().Get("GROUP"))
			assert.Equal(t, "01/10/2026", r.URL.Query().Get("DATE_FROM"))
			assert.Equal(t, "TIA", r.URL.Query().Get("PICKUP_STATION"))
			assert.Equal(t, "Peter", r.URL.Query().Get("FIRST_NAME"))
			assert.Equal(t, "Horvath", r.URL.Query().Get("LAST_NAME"))
			assert.Equal(t, "peter@example.com", r.URL.Query().Get("EMAIL"))
			assert.Equal(t, "BK-2026-000091", r.URL.Query().Get("REF"))
			assert.Equal(t, "CDW,BBS", r.URL.Query().Get("OPTIONS"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status": "CNF", "irn": "IRN-1001", "refno": "R-55"}`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")
		t.Setenv("WHEELSYS_ACCOUNT_NO", "ACC-9")

		redisClient, _ := redismock.NewClientMock()
		supplier := wheelsys.New(redisClient)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, 1, supplierCalls)
		assert.Equal(t, schema.ReservationStatusOK, result.Status)
		assert.Equal(t, "IRN-1001", *result.SupplierReference)
		assert.Empty(t, *result.Errors)
	})

	t.Run("should report pending while the booking sits in the request queue", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "REQ", "refno": "R-56"}`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")

		redisClient, _ := redismock.NewClientMock()
		supplier := wheelsys.New(redisClient)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusPending, result.Status)
		assert.Equal(t, "R-56", *result.SupplierReference)
	})

	t.Run("should surface the supplier rejection", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "ERR", "error": "group not available for the requested dates"}`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")

		redisClient, _ := redismock.NewClientMock()
		supplier := wheelsys.New(redisClient)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
		assert.Equal(t, schema.SupplierError, (*result.Errors)[0].Code)
		assert.Equal(t, "group not available for the requested dates", (*result.Errors)[0].Message)
	})

	t.Run("should collect a parse error when no confirmation number comes back", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": "CNF"}`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")

		redisClient, _ := redismock.NewClientMock()
		supplier := wheelsys.New(redisClient)

		result, err := supplier.CreateReservation(context.Background(), reservationParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
		assert.Equal(t, schema.ParseError, (*result.Errors)[0].Code)
	})

	t.Run("should fail fast on an unreadable rate reference", func(t *testing.T) {
		params := reservationParamsTemplate()
		params.RateReference = "not json"

		redisClient, _ := redismock.NewClientMock()
		supplier := wheelsys.New(redisClient)

		result, err := supplier.CreateReservation(context.Background(), params, &log)

		assert.ErrorIs(t, err, errors.ErrInvalidRateReference)
		assert.Equal(t, schema.ReservationStatusFailed, result.Status)
	})
}
