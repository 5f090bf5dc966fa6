package normalizer

import "strings"

var symbolToCode = map[string]string{
	"$":   "USD",
	"€":   "EUR",
	"£":   "GBP",
	"¥":   "JPY",
	"₹":   "INR",
	"₺":   "TRY",
	"₪":   "ILS",
	"C$":  "CAD",
	"A$":  "AUD",
	"HK$": "HKD",
	"S$":  "SGD",
	"NZ$": "NZD",
	"Fr":  "CHF",
	"RM":  "MYR",
}

// NormalizeCurrencyCode folds currency symbols and sloppy casing into a
// three-letter ISO code. Suppliers send both. Unknown values default to USD.
func NormalizeCurrencyCode(currency string) string {
	currency = strings.TrimSpace(currency)

	if len(currency) == 3 && isAlpha(currency) {
		return strings.ToUpper(currency)
	}

	if code, ok := symbolToCode[currency]; ok {
		return code
	}

	return "USD"
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
