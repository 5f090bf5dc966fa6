package locauto_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func searchParamsTemplate() schema.SearchRequestParams {
	pickUp, _ := time.Parse(schema.DateTimeFormat, "2026-07-20T10:00:00")
	dropOff, _ := time.Parse(schema.DateTimeFormat, "2026-07-25T10:00:00")

	return schema.SearchRequestParams{
		PickUp:   schema.RequestLocation{Code: "FCO", DateTime: pickUp},
		DropOff:  schema.RequestLocation{Code: "FCO", DateTime: dropOff},
		Age:      35,
		Timeouts: schema.Timeouts{Default: 5000},
	}
}

func vehAvailResponse() string {
	return `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	<soap:Body>
		<OTA_VehAvailRateRSResponse xmlns="https://nextrent.locautorent.com">
			<OTA_VehAvailRateRSResult xmlns="http://www.opentravel.org/OTA/2003/05">
				<Success/>
				<VehAvailRSCore>
					<VehVendorAvails>
						<VehVendorAvail>
							<VehAvails>
								<VehAvail>
									<VehAvailCore Status="Available">
										<Vehicle Code="CDMR" TransmissionType="Manual" PassengerQuantity="5" BaggageQuantity="2">
											<VehMakeModel Code="CDMR" ModelYear="Fiat Tipo"/>
											<VehType DoorCount="5"/>
											<PictureURL>https://img.example.com/tipo.png</PictureURL>
										</Vehicle>
										<TotalCharge RateTotalAmount="235.00" CurrencyCode="EUR"/>
										<PricedEquips>
											<PricedEquip>
												<Equipment EquipType="8">
													<Description>Child seat</Description>
												</Equipment>
												<Charge Amount="45.00" CurrencyCode="EUR" IncludedInRate="false"/>
											</PricedEquip>
										</PricedEquips>
									</VehAvailCore>
								</VehAvail>
							</VehAvails>
						</VehVendorAvail>
					</VehVendorAvails>
				</VehAvailRSCore>
			</OTA_VehAvailRateRSResult>
		</OTA_VehAvailRateRSResponse>
	</soap:Body>
</soap:Envelope>`
}

func TestLocautoSearch(t *testing.T) {
	t.Setenv("TEST", "true")

	out := &bytes.Buffer{}
	log := zerolog.New(out)

	t.Run("should request availability and map the response", func(t *testing.T) {
		var requestBody []byte

		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, `"https://nextrent.locautorent.com/OTA_VehAvailRateRS"`, r.Header.Get("SOAPAction"))
			assert.Equal(t, "text/xml; charset=utf-8", r.Header.Get("Content-Type"))

			requestBody, _ = io.ReadAll(r.Body)

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(vehAvailResponse()))
		}))
		defer testServer.Close()

		t.Setenv("LOCAUTO_URL", testServer.URL)
		t.Setenv("LOCAUTO_USERNAME", "locauto-user")
		t.Setenv("LOCAUTO_PASSWORD", "locauto-pass")

		supplier := locauto.New()

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)

		sent := string(requestBody)
		assert.Contains(t, sent, `ID_Context="locauto-user" MessagePassword="locauto-pass"`)
		assert.Contains(t, sent, `PickUpDateTime="2026-07-20T10:00:00+02:00"`)
		assert.Contains(t, sent, `<ns1:PickUpLocation LocationCode="FCO">`)
		assert.Contains(t, sent, `<ns1:DriverType Age="35">`)
		assert.Contains(t, sent, `Status="Available"`)

		assert.Len(t, response.Vehicles, 1)

		vehicle := response.Vehicles[0]
		assert.Equal(t, schema.SourceLocauto, vehicle.Source)
		assert.Equal(t, "CDMR", vehicle.SupplierVehicleID)
		assert.Equal(t, "Fiat", vehicle.Brand)
		assert.Equal(t, "Fiat Tipo", vehicle.Model)
		assert.Equal(t, "CDMR", *vehicle.AcrissCode)
		assert.Equal(t, "manual", vehicle.Transmission)
		assert.Equal(t, 5, *vehicle.Seats)
		assert.Equal(t, 5, *vehicle.Doors)
		assert.Equal(t, schema.RoundedFloat(235), vehicle.Breakdown.GrandTotal)
		// five rental days
		assert.Equal(t, schema.RoundedFloat(47), vehicle.DailyPrice.Amount)
		assert.Equal(t, "EUR", vehicle.Breakdown.Currency)

		assert.Len(t, vehicle.Extras, 1)
		assert.Equal(t, "8", vehicle.Extras[0].Code)
		assert.Equal(t, "Child seat", vehicle.Extras[0].Name)
		assert.Equal(t, schema.RoundedFloat(45), vehicle.Extras[0].UnitPrice.Amount)
		assert.False(t, vehicle.Extras[0].Included)
	})

	t.Run("should surface an OTA error", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	<soap:Body>
		<OTA_VehAvailRateRSResponse>
			<OTA_VehAvailRateRSResult>
				<Errors>
					<Error Type="3" ShortText="Invalid location code">Invalid location code</Error>
				</Errors>
			</OTA_VehAvailRateRSResult>
		</OTA_VehAvailRateRSResponse>
	</soap:Body>
</soap:Envelope>`))
		}))
		defer testServer.Close()

		t.Setenv("LOCAUTO_URL", testServer.URL)

		supplier := locauto.New()

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Empty(t, response.Vehicles)
		assert.Equal(t, schema.SupplierError, (*response.Errors)[0].Code)
		assert.Equal(t, "Invalid location code", (*response.Errors)[0].Message)
	})

	t.Run("should report a parse error when the result is missing", func(t *testing.T) {
		testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
	<soap:Body></soap:Body>
</soap:Envelope>`))
		}))
		defer testServer.Close()

		t.Setenv("LOCAUTO_URL", testServer.URL)

		supplier := locauto.New()

		response, err := supplier.Search(context.Background(), searchParamsTemplate(), &log)

		assert.Nil(t, err)
		assert.Equal(t, schema.ParseError, (*response.Errors)[0].Code)
	})
}
