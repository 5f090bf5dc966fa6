package wheelsys_test

import (
	"bytes"
	"compress/flate"
	"context"
	jsonEncoding "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys/json"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"github.com/go-redis/redismock/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const quoteCacheKey = "supplier-wheelsys:quote:1:TIA:TIA:2026-10-01T10:00:00:2026-10-04T10:00:00"

func compressedQuote(quote json.QuoteRS) []byte {
	marshalled, _ := jsonEncoding.Marshal(quote)

	var buffer bytes.Buffer
	writer, _ := flate.NewWriter(&buffer, flate.BestSpeed)
	writer.Write(marshalled)
	writer.Close()

	return buffer.Bytes()
}

func searchParamsTemplate() schema.SearchRequestParams {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-10-01T10:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-10-04T10:00:00")

	return schema.SearchRequestParams{
		PickUp:  schema.RequestLocation{Code: "TIA", DateTime: pickUp},
		DropOff: schema.RequestLocation{Code: "TIA", DateTime: dropOff},
		Timeouts: schema.Timeouts{
			Default: 5000,
		},
	}
}

func supplierQuote() json.QuoteRS {
	return json.QuoteRS{
		Rates: []json.Rate{
			{
				GroupCode:    "B",
				SampleModel:  "Hyundai i10",
				Category:     "Mini",
				Acriss:       "MDMR",
				TotalRate:    4500,
				Pax:          converting.PointerToValue(4),
				Doors:        converting.PointerToValue(4),
				Bags:         converting.PointerToValue(1),
				Suitcases:    converting.PointerToValue(1),
				Availability: "AVAILABLE",
				Options: []json.Option{
					{Code: "CDW", Rate: 1200, Mandatory: true},
					{Code: "GPS", Rate: 500, Inclusive: true},
				},
			},
			{
				GroupCode:    "F",
				SampleModel:  "Toyota Corolla",
				Acriss:       "CDAR",
				TotalRate:    7200,
				Availability: "SOLDOUT",
			},
		},
	}
}

func TestWheelsysSearch(t *testing.T) {
	t.Setenv("TEST", "true")

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should request a quote and map available rates", func(t *testing.T) {
		supplierCalls := 0

		quote := supplierQuote()
		quoteBody, _ := jsonEncoding.Marshal(quote)

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplierCalls++

			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/price-quote_LNK123.html", r.URL.Path)
			assert.Equal(t, "AG1", r.URL.Query().Get("agent"))
			assert.Equal(t, "01/10/2026", r.URL.Query().Get("DATE_FROM"))
			assert.Equal(t, "10:00", r.URL.Query().Get("TIME_FROM"))
			assert.Equal(t, "04/10/2026", r.URL.Query().Get("DATE_TO"))
			assert.Equal(t, "TIA", r.URL.Query().Get("PICKUP_STATION"))
			assert.Equal(t, "TIA", r.URL.Query().Get("RETURN_STATION"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))

			w.Header().Set("Content-Type", "application/json")
			w.Write(quoteBody)
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")
		t.Setenv("WHEELSYS_ACCOUNT_NO", "ACC-9")

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet(quoteCacheKey).RedisNil()
		mock.ExpectSetEx(quoteCacheKey, compressedQuote(quote), time.Hour).SetVal("")

		supplier := wheelsys.New(redisClient)

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, 1, supplierCalls)
		assert.Len(t, response.Vehicles, 1)

		vehicle := response.Vehicles[0]
		assert.Equal(t, schema.SourceWheelsys, vehicle.Source)
		assert.Equal(t, "B", vehicle.SupplierVehicleID)
		assert.Equal(t, "Hyundai", vehicle.Brand)
		assert.Equal(t, "Hyundai i10", vehicle.Model)
		assert.Equal(t, "MDMR", *vehicle.AcrissCode)
		assert.Equal(t, 4, *vehicle.Seats)
		assert.Equal(t, schema.Available, vehicle.Status)

		// three rental days at 45.00, the inclusive GPS carved out
		assert.Equal(t, schema.RoundedFloat(45), vehicle.DailyPrice.Amount)
		assert.Equal(t, "USD", vehicle.Breakdown.Currency)
		assert.Equal(t, schema.RoundedFloat(135), vehicle.Breakdown.GrandTotal)
		assert.Equal(t, schema.RoundedFloat(5), vehicle.Breakdown.ExtrasTotal)
		assert.Equal(t, schema.RoundedFloat(130), vehicle.Breakdown.VehicleTotal)

		assert.True(t, vehicle.Mileage.Unlimited)

		assert.Len(t, vehicle.Extras, 2)
		cdw := vehicle.Extras[0]
		assert.Equal(t, "CDW", cdw.Code)
		assert.Equal(t, "Collision Damage Waiver", cdw.Name)
		assert.Equal(t, schema.ExtraTypeProtection, cdw.Type)
		assert.Equal(t, schema.RoundedFloat(12), cdw.UnitPrice.Amount)
		assert.True(t, cdw.Required)

		gps := vehicle.Extras[1]
		assert.Equal(t, "GPS Navigation", gps.Name)
		assert.Equal(t, schema.ExtraTypeEquipment, gps.Type)
		assert.True(t, gps.Included)

		assert.NotNil(t, vehicle.RateReference)
		assert.Empty(t, *response.Errors)
	})

	t.Run("should serve a cached quote without touching the supplier", func(t *testing.T) {
		supplierCalls := 0

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplierCalls++
			w.Write([]byte(`{"Rates": []}`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet(quoteCacheKey).SetVal(string(compressedQuote(supplierQuote())))

		supplier := wheelsys.New(redisClient)

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, 0, supplierCalls)
		assert.Len(t, response.Vehicles, 1)
		assert.Equal(t, "B", response.Vehicles[0].SupplierVehicleID)
	})

	t.Run("should collect a parse error on a non-json payload", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>station closed</html>`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet(quoteCacheKey).RedisNil()

		supplier := wheelsys.New(redisClient)

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Empty(t, response.Vehicles)
		assert.Len(t, *response.Errors, 1)
		assert.Equal(t, schema.ParseError, (*response.Errors)[0].Code)
	})

	t.Run("should collect a parse error when the rates node is missing", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Message": "agent code not recognized"}`))
		}))
		defer testServer.Close()

		t.Setenv("WHEELSYS_URL", testServer.URL)
		t.Setenv("WHEELSYS_LINK_CODE", "LNK123")
		t.Setenv("WHEELSYS_AGENT_CODE", "AG1")

		redisClient, mock := redismock.NewClientMock()
		mock.ExpectGet(quoteCacheKey).RedisNil()

		supplier := wheelsys.New(redisClient)

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Empty(t, response.Vehicles)
		assert.Equal(t, schema.ParseError, (*response.Errors)[0].Code)
	})
}
