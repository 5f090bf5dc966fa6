package currency

import "time"

// staticRates is the last-resort table used when no live table was ever
// fetched. Approximate major-currency rates against USD; conversions served
// from it are always flagged degraded.
var staticRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"CHF": 0.88,
	"SEK": 10.5,
	"NOK": 10.6,
	"DKK": 6.9,
	"PLN": 4.0,
	"CZK": 23.0,
	"HUF": 360.0,
	"TRY": 33.0,
	"AED": 3.67,
	"CAD": 1.36,
	"AUD": 1.51,
	"NZD": 1.65,
	"JPY": 150.0,
	"INR": 83.0,
	"MAD": 10.0,
	"ZAR": 18.5,
}

func staticTable(base string) *RateTable {
	baseRate, ok := staticRates[base]
	if !ok {
		base = "USD"
		baseRate = 1.0
	}

	rates := make(map[string]float64, len(staticRates))
	for code, usdRate := range staticRates {
		rates[code] = usdRate / baseRate
	}

	return &RateTable{
		Base:      base,
		Rates:     rates,
		FetchedAt: time.Time{},
		Provider:  "static",
	}
}
