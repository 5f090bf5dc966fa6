package locauto

import (
	"bytes"
	"context"
	jsonEncoding "encoding/json"
	xmlEncoding "encoding/xml"
	"io"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto/mapping"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/locauto/ota"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/rs/zerolog"
)

// The endpoint wants Italian local time with the offset spelled out.
const dateTimeSuffix = "+02:00"

func otaDateTime(t time.Time) string {
	return t.Format(schema.DateTimeFormat) + dateTimeSuffix
}

type searchRequest struct {
	params        schema.SearchRequestParams
	configuration configuration
	logger        *zerolog.Logger
	slowLogger    slowlog.Logger
}

func (r *searchRequest) Execute(ctx context.Context, httpTransport *http.Transport) (schema.SearchResponse, error) {
	search := schema.SearchResponse{
		Vehicles: []schema.Vehicle{},
	}

	requestsBucket := schema.NewSupplierRequestsBucket()
	errorsBucket := schema.NewErrorsBucket()

	search.SupplierRequests = requestsBucket.SupplierRequests()
	search.Errors = errorsBucket.Errors()

	client := &http.Client{
		Timeout: time.Duration(r.params.Timeouts.ForSearch()) * time.Millisecond,
		Transport: &requesting.InterceptorTransport{
			Transport: httpTransport,
			Middlewares: []requesting.TransportMiddleware{
				requesting.NewLoggingTransportMiddleware(r.logger),
				requesting.NewBucketTransportMiddleware(&requestsBucket),
			},
		},
	}

	core, reqErr := r.makeRequest(client)
	if reqErr != nil {
		errorsBucket.AddError(*reqErr)
		return search, nil
	}

	for _, vehAvail := range core.VehVendorAvails.VehVendorAvail.VehAvails.VehAvail {
		if vehAvail.VehAvailCore.Status == "Unavailable" {
			continue
		}

		vehicle, err := r.parseVehAvail(vehAvail.VehAvailCore)
		if err != nil {
			errorsBucket.AddError(schema.NewParseError(err.Error()))
			continue
		}

		search.Vehicles = append(search.Vehicles, vehicle)
	}

	return search, nil
}

func (r *searchRequest) makeRequest(client *http.Client) (*ota.VehAvailRSCore, *schema.SupplierResponseError) {
	envelope := ota.NewRequestEnvelope(ota.RequestBody{
		VehAvailRate: &ota.VehAvailRateWrapper{
			VehAvailRateRQ: ota.VehAvailRateRQ{
				MaxResponses:  100,
				Version:       "1.0",
				Target:        "Production",
				SequenceNmbr:  1,
				PrimaryLangID: "en",
				POS:           newPOS(r.configuration),
				VehAvailRQCore: ota.VehAvailRQCore{
					Status: "Available",
					VehRentalCore: ota.VehRentalCore{
						PickUpDateTime: otaDateTime(r.params.PickUp.DateTime),
						ReturnDateTime: otaDateTime(r.params.DropOff.DateTime),
						PickUpLocation: ota.Location{LocationCode: r.params.PickUp.Code},
						ReturnLocation: ota.Location{LocationCode: r.params.DropOff.Code},
					},
					DriverType: driverType(r.params.Age),
				},
			},
		},
	})

	requestBody, _ := xmlEncoding.Marshal(envelope)

	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Search)

	build := func() (*http.Request, error) {
		httpRequest, err := http.NewRequestWithContext(c, http.MethodPost, r.configuration.BaseUrl, bytes.NewBuffer(append([]byte(xmlEncoding.Header), requestBody...)))
		if err != nil {
			return nil, err
		}

		httpRequest.Header.Set("Content-Type", "text/xml; charset=utf-8")
		httpRequest.Header.Set("SOAPAction", searchSoapAction)

		return httpRequest, nil
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return nil, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var responseEnvelope ota.ResponseEnvelope
	err := xmlEncoding.Unmarshal(bodyBytes, &responseEnvelope)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return nil, &e
	}

	if responseEnvelope.Body.VehAvailRate == nil {
		e := schema.NewParseError("missing OTA_VehAvailRateRSResponse in supplier response")
		return nil, &e
	}

	result := responseEnvelope.Body.VehAvailRate.Result
	if message := result.ErrorMessage(); message != "" {
		e := schema.NewSupplierError(message)
		return nil, &e
	}

	if result.VehAvailRSCore == nil {
		e := schema.NewParseError("missing VehAvailRSCore in supplier response")
		return nil, &e
	}

	return result.VehAvailRSCore, nil
}

func (r *searchRequest) parseVehAvail(core ota.VehAvailCore) (schema.Vehicle, error) {
	sippCode := core.Vehicle.Code

	qualifier, err := jsonEncoding.Marshal(mapping.SupplierRateReference{
		SippCode:           sippCode,
		PickUpLocationCode: r.params.PickUp.Code,
		ReturnLocationCode: r.params.DropOff.Code,
		PickUpDateTime:     otaDateTime(r.params.PickUp.DateTime),
		ReturnDateTime:     otaDateTime(r.params.DropOff.DateTime),
	})
	if err != nil {
		return schema.Vehicle{}, err
	}

	rateReference := string(qualifier)

	totalAmount := 0.0
	currency := "EUR"
	if core.TotalCharge != nil {
		totalAmount = core.TotalCharge.RateTotalAmount
		currency = normalizer.NormalizeCurrencyCode(core.TotalCharge.CurrencyCode)
	}
	if totalAmount == 0 && core.RentalRate != nil && len(core.RentalRate.VehicleCharges.VehicleCharge) > 0 {
		charge := core.RentalRate.VehicleCharges.VehicleCharge[0]
		totalAmount = charge.Amount
		currency = normalizer.NormalizeCurrencyCode(charge.CurrencyCode)
	}

	extras := []schema.Extra{}
	if core.PricedEquips != nil {
		for _, pricedEquip := range core.PricedEquips.PricedEquip {
			amount := 0.0
			included := false
			if pricedEquip.Charge != nil {
				amount = pricedEquip.Charge.Amount
				included = pricedEquip.Charge.IncludedInRate == "true"
			}

			extras = append(extras, schema.Extra{
				Code: pricedEquip.Equipment.EquipType,
				Name: pricedEquip.Equipment.Description,
				Type: normalizer.CategorizeExtra(strings.ToLower(pricedEquip.Equipment.EquipType)),
				UnitPrice: schema.PriceAmount{
					Amount:   schema.RoundedFloat(amount),
					Currency: currency,
				},
				Total: schema.PriceAmount{
					Amount:   schema.RoundedFloat(amount),
					Currency: currency,
				},
				Included: included,
			})
		}
	}

	breakdown := normalizer.ResolveBreakdown(normalizer.PricingInput{
		Currency:   currency,
		GrandTotal: &totalAmount,
	})

	// ModelYear carries the display name, the first word is the make
	model := core.Vehicle.VehMakeModel.ModelYear
	brand := ""
	if parts := strings.SplitN(model, " ", 2); len(parts) > 0 {
		brand = parts[0]
	}

	var acrissCode *string
	if len(sippCode) == 4 {
		acrissCode = converting.PointerToValue(sippCode)
	}

	var doors *int
	if core.Vehicle.VehType != nil {
		doors = core.Vehicle.VehType.DoorCount
	}

	var imageUrl *string
	if core.Vehicle.PictureURL != "" {
		imageUrl = converting.PointerToValue(core.Vehicle.PictureURL)
	}

	days := rentalDays(r.params.PickUp.DateTime, r.params.DropOff.DateTime)

	status := schema.Available
	if core.Status == "OnRequest" {
		status = schema.OnRequest
	}

	return schema.Vehicle{
		Source:            schema.SourceLocauto,
		SupplierVehicleID: sippCode,
		Brand:             brand,
		Model:             model,
		AcrissCode:        acrissCode,
		Transmission:      strings.ToLower(core.Vehicle.TransmissionType),
		Seats:             core.Vehicle.PassengerQuantity,
		Doors:             doors,
		BigSuitcases:      core.Vehicle.BaggageQuantity,
		ImageUrl:          imageUrl,
		DailyPrice: schema.PriceAmount{
			Amount:   schema.RoundedFloat(float64(breakdown.GrandTotal) / float64(days)),
			Currency: currency,
		},
		Breakdown:     breakdown,
		RateReference: &rateReference,
		Status:        status,
		Extras:        extras,
	}, nil
}

func driverType(age int) *ota.DriverType {
	if age == 0 {
		return nil
	}
	return &ota.DriverType{Age: age}
}

func rentalDays(pickUp, dropOff time.Time) int {
	days := int(dropOff.Sub(pickUp).Hours() / 24)
	if dropOff.Sub(pickUp)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
