package wheelsys

import (
	"context"
	jsonEncoding "encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/normalizer"
	"bitbucket.org/crgw/booking-engine/internal/schema"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys/json"
	"bitbucket.org/crgw/booking-engine/internal/supplier/implementations/wheelsys/mapping"
	"bitbucket.org/crgw/booking-engine/internal/tools/caching"
	"bitbucket.org/crgw/booking-engine/internal/tools/converting"
	"bitbucket.org/crgw/booking-engine/internal/tools/requesting"
	"bitbucket.org/crgw/booking-engine/internal/tools/slowlog"
	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"
)

const imageRoot = "https://wheels-assets.s3.eu-central-1.amazonaws.com/"

// optionNames maps the option codes of the quote response to something a
// customer can read, the endpoint itself only sends the codes.
var optionNames = map[string]string{
	"EI":   "Excess Insurance",
	"CDW":  "Collision Damage Waiver",
	"PCDW": "Premium Collision Damage Waiver",
	"BBS":  "Baby Booster Seat",
	"SLI":  "Supplemental Liability Insurance",
	"GPS":  "GPS Navigation",
	"ADD":  "Additional Driver",
	"TOL":  "Toll Pass",
	"YD":   "Young Driver Surcharge",
	"UM":   "Underage Driver",
	"RS":   "Roadside Service",
	"PPI":  "Personal Protection Insurance",
	"LF":   "Loss Damage Waiver",
	"UPG":  "Vehicle Upgrade",
	"SD":   "Sports Equipment",
	"TRV":  "Travel Insurance",
	"WT":   "Winter Tires",
	"PGAS": "Pre-Paid Gas",
	"SC":   "Service Charge",
}

func optionName(code string) string {
	if name, ok := optionNames[code]; ok {
		return name
	}
	return code
}

type searchRequest struct {
	cache         *caching.Cacher
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

	quote, ok := r.quoteFromCache()
	if !ok {
		var reqErr *schema.SupplierResponseError
		quote, reqErr = r.makeRequest(client)
		if reqErr != nil {
			errorsBucket.AddError(*reqErr)
			return search, nil
		}

		r.storeQuote(quote)
	}

	for _, rate := range quote.Rates {
		if rate.GroupCode == "" || rate.Availability != "AVAILABLE" {
			continue
		}

		search.Vehicles = append(search.Vehicles, r.parseRate(rate))
	}

	return search, nil
}

func (r *searchRequest) quoteCacheKey() string {
	return strings.Join([]string{
		"supplier-wheelsys",
		"quote",
		"1",
		r.params.PickUp.Code,
		r.params.DropOff.Code,
		r.params.PickUp.DateTime.Format(schema.DateTimeFormat),
		r.params.DropOff.DateTime.Format(schema.DateTimeFormat),
	}, ":")
}

func (r *searchRequest) quoteFromCache() (json.QuoteRS, bool) {
	var quote json.QuoteRS

	// timeouts are enforced by the client
	ok := r.cache.Fetch(context.Background(), r.quoteCacheKey(), &quote)
	return quote, ok
}

func (r *searchRequest) storeQuote(quote json.QuoteRS) {
	// timeouts are enforced by the client
	r.cache.Store(context.Background(), r.quoteCacheKey(), quote, time.Hour)
}

func (r *searchRequest) makeRequest(client *http.Client) (json.QuoteRS, *schema.SupplierResponseError) {
	opt := json.QuoteRQ{
		Agent:         r.configuration.AgentCode,
		DateFrom:      r.params.PickUp.DateTime.Format(dateFormat),
		TimeFrom:      r.params.PickUp.DateTime.Format(timeFormat),
		DateTo:        r.params.DropOff.DateTime.Format(dateFormat),
		TimeTo:        r.params.DropOff.DateTime.Format(timeFormat),
		PickupStation: r.params.PickUp.Code,
		ReturnStation: r.params.DropOff.Code,
		Format:        "json",
	}
	v, _ := query.Values(opt)

	url := fmt.Sprintf("%v/price-quote_%v.html?%v", r.configuration.BaseUrl, r.configuration.LinkCode, v.Encode())
	c := context.WithValue(context.Background(), schema.RequestingTypeKey, schema.Search)

	build := func() (*http.Request, error) {
		return http.NewRequestWithContext(c, http.MethodGet, url, http.NoBody)
	}

	rs, reqErr := requesting.DoWithRetry(client, build, requesting.DefaultAttempts, requesting.DefaultBackoff)
	if reqErr != nil {
		return json.QuoteRS{}, reqErr
	}

	bodyBytes, _ := io.ReadAll(rs.Body)
	rs.Body.Close()

	var quote json.QuoteRS
	err := jsonEncoding.Unmarshal(bodyBytes, &quote)
	if err != nil {
		e := schema.NewParseError(err.Error())
		return json.QuoteRS{}, &e
	}

	if quote.Rates == nil {
		e := schema.NewParseError("missing rates node in quote response")
		return json.QuoteRS{}, &e
	}

	return quote, nil
}

func (r *searchRequest) parseRate(rate json.Rate) schema.Vehicle {
	days := rentalDays(r.params.PickUp.DateTime, r.params.DropOff.DateTime)

	dailyRate := float64(rate.TotalRate) / 100
	grandTotal := dailyRate * float64(days)

	extras := make([]schema.Extra, len(rate.Options))
	knownExtras := 0.0
	for i, option := range rate.Options {
		extras[i] = parseOption(option)
		if extras[i].Included {
			knownExtras += float64(extras[i].Total.Amount)
		}
	}

	breakdown := normalizer.ResolveBreakdown(normalizer.PricingInput{
		Currency:    supplierCurrency,
		GrandTotal:  &grandTotal,
		KnownExtras: knownExtras,
	})

	qualifier, _ := jsonEncoding.Marshal(mapping.SupplierRateReference{
		GroupCode:     rate.GroupCode,
		DailyRate:     dailyRate,
		PickUpStation: r.params.PickUp.Code,
		ReturnStation: r.params.DropOff.Code,
		DateFrom:      r.params.PickUp.DateTime.Format(dateFormat),
		TimeFrom:      r.params.PickUp.DateTime.Format(timeFormat),
		DateTo:        r.params.DropOff.DateTime.Format(dateFormat),
		TimeTo:        r.params.DropOff.DateTime.Format(timeFormat),
	})
	rateReference := string(qualifier)

	var acrissCode *string
	if len(rate.Acriss) == 4 {
		acrissCode = converting.PointerToValue(rate.Acriss)
	}

	var brand string
	if rate.SampleModel != "" {
		brand = strings.SplitN(rate.SampleModel, " ", 2)[0]
	}

	mileage := &schema.Mileage{Unlimited: rate.Unlimited == nil || *rate.Unlimited}
	if !mileage.Unlimited && rate.IncKlm != nil {
		mileage.IncludedKm = rate.IncKlm
	}

	return schema.Vehicle{
		Source:            schema.SourceWheelsys,
		SupplierVehicleID: rate.GroupCode,
		Brand:             brand,
		Model:             rate.SampleModel,
		Category:          rate.Category,
		AcrissCode:        acrissCode,
		Seats:             rate.Pax,
		Doors:             rate.Doors,
		BigSuitcases:      rate.Suitcases,
		SmallSuitcases:    rate.Bags,
		ImageUrl:          converting.PointerToValue(vehicleImage(rate)),
		DailyPrice: schema.PriceAmount{
			Amount:   schema.RoundedFloat(dailyRate),
			Currency: breakdown.Currency,
		},
		Breakdown:     breakdown,
		Mileage:       mileage,
		RateReference: &rateReference,
		Status:        schema.Available,
		Extras:        extras,
	}
}

// coverageCodes are the option codes that are insurance products rather
// than physical equipment or surcharges.
var coverageCodes = map[string]bool{
	"EI":   true,
	"CDW":  true,
	"PCDW": true,
	"SLI":  true,
	"PPI":  true,
	"LF":   true,
	"TRV":  true,
	"TRVA": true,
}

func parseOption(option json.Option) schema.Extra {
	price := schema.PriceAmount{
		Amount:   schema.RoundedFloat(float64(option.Rate) / 100),
		Currency: supplierCurrency,
	}

	typeTag := "equipment"
	if coverageCodes[option.Code] {
		typeTag = "insurance"
	}

	return schema.Extra{
		Code:      option.Code,
		Name:      optionName(option.Code),
		Type:      normalizer.CategorizeExtra(typeTag),
		Quantity:  1,
		UnitPrice: price,
		Total:     price,
		Included:  option.Inclusive,
		Required:  option.Mandatory,
	}
}

// vehicleImage falls back to the supplier's asset bucket keyed by ACRISS or
// group code when the rate carries no image of its own.
func vehicleImage(rate json.Rate) string {
	if strings.HasPrefix(rate.ImageUrl, "http") {
		return rate.ImageUrl
	}

	if rate.ImageUrl != "" {
		return imageRoot + rate.ImageUrl
	}

	identifier := rate.Acriss
	if identifier == "" {
		identifier = rate.GroupCode
	}

	return imageRoot + identifier + ".png"
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
