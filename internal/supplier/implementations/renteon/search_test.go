package renteon_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/renteon"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func searchParamsTemplate() schema.SearchRequestParams {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-09-10T12:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-09-14T12:00:00")

	return schema.SearchRequestParams{
		PickUp:   schema.RequestLocation{Code: "LJU", DateTime: pickUp},
		DropOff:  schema.RequestLocation{Code: "ZAG", DateTime: dropOff},
		Timeouts: schema.Timeouts{Default: 5000},
	}
}

func TestRenteonSearch(t *testing.T) {
	t.Setenv("TEST", "true")

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should request vehicles with basic auth and map the response", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/vehicles/search", r.URL.Path)

			username, password, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "renteon-user", username)
			assert.Equal(t, "renteon-pass", password)

			queryValues := r.URL.Query()
			assert.Equal(t, "LJU", queryValues.Get("pickup_location_code"))
			assert.Equal(t, "ZAG", queryValues.Get("dropoff_location_code"))
			assert.Equal(t, "2026-09-10T12:00:00", queryValues.Get("start_date"))
			assert.Equal(t, "demo", queryValues.Get("provider_code"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{
					"id": "veh-204",
					"make": "Skoda",
					"model": "Octavia",
					"category": "Compact",
					"acriss_code": "CDMR",
					"seats": 5,
					"doors": 5,
					"transmission": "Manual",
					"fuel_type": "Diesel",
					"daily_rate": 42.50,
					"currency": "EUR",
					"image_url": "https://img.example.com/octavia.png",
					"pickup_location_code": "LJU",
					"mileage": "Unlimited"
				}
			]`))
		}))
		defer testServer.Close()

		t.Setenv("RENTEON_URL", testServer.URL)
		t.Setenv("RENTEON_USERNAME", "renteon-user")
		t.Setenv("RENTEON_PASSWORD", "renteon-pass")

		supplier := renteon.New()

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Len(t, response.Vehicles, 1)

		vehicle := response.Vehicles[0]
		assert.Equal(t, schema.SourceRenteon, vehicle.Source)
		assert.Equal(t, "veh-204", vehicle.SupplierVehicleID)
		assert.Equal(t, "Skoda", vehicle.Brand)
		assert.Equal(t, "Octavia", vehicle.Model)
		assert.Equal(t, "CDMR", *vehicle.AcrissCode)
		assert.Equal(t, schema.RoundedFloat(42.5), vehicle.DailyPrice.Amount)
		// four rental days
		assert.Equal(t, schema.RoundedFloat(170), vehicle.Breakdown.GrandTotal)
		assert.Equal(t, "EUR", vehicle.Breakdown.Currency)
		assert.True(t, vehicle.Mileage.Unlimited)
		assert.Equal(t, schema.Available, vehicle.Status)
	})

	t.Run("should report a parse error on a non json body", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>maintenance</html>"))
		}))
		defer testServer.Close()

		t.Setenv("RENTEON_URL", testServer.URL)

		supplier := renteon.New()

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Empty(t, response.Vehicles)
		assert.Equal(t, schema.ParseError, (*response.Errors)[0].Code)
	})

	t.Run("should report a supplier error on a failure status code", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer testServer.Close()

		t.Setenv("RENTEON_URL", testServer.URL)

		supplier := renteon.New()

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.SupplierError, (*response.Errors)[0].Code)
	})
}
