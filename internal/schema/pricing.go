package schema

// ProviderBreakdown mirrors PriceBreakdown in the supplier's own currency.
// Present only when the supplier currency differs from the customer currency.
type ProviderBreakdown struct {
	Currency      string       `json:"currency"`
	VehicleTotal  RoundedFloat `json:"vehicleTotal"`
	ExtrasTotal   RoundedFloat `json:"extrasTotal"`
	TaxTotal      RoundedFloat `json:"taxTotal"`
	DiscountTotal RoundedFloat `json:"discountTotal"`
	GrandTotal    RoundedFloat `json:"grandTotal"`
}

// PriceBreakdown is the customer-facing monetary snapshot for a quote or
// booking. GrandTotal always equals VehicleTotal+ExtrasTotal+TaxTotal-DiscountTotal
// within rounding tolerance.
type PriceBreakdown struct {
	Currency      string             `json:"currency"`
	VehicleTotal  RoundedFloat       `json:"vehicleTotal"`
	ExtrasTotal   RoundedFloat       `json:"extrasTotal"`
	TaxTotal      RoundedFloat       `json:"taxTotal"`
	DiscountTotal RoundedFloat       `json:"discountTotal"`
	GrandTotal    RoundedFloat       `json:"grandTotal"`
	Provider      *ProviderBreakdown `json:"provider,omitempty"`
	// ExchangeRate is the supplier→customer rate applied when Provider is set.
	ExchangeRate *float64 `json:"exchangeRate,omitempty"`
	// RatesDegraded marks totals computed from stale or static fallback rates.
	RatesDegraded bool `json:"ratesDegraded,omitempty"`
}
