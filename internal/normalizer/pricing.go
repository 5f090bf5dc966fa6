package normalizer

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/crgw/booking-engine/internal/schema"
)

// PricingInput carries the up-to-three places a supplier may report its
// totals in. Precedence: ProviderPricing block, then top-level fields, then
// derivation from the grand total minus known components. The order matters:
// applying a lower-precedence source on top of a higher one double-counts
// tax or extras.
type PricingInput struct {
	Currency string

	ProviderPricing *PricingFields
	TopLevel        *PricingFields

	// GrandTotal for derivation when neither block is present.
	GrandTotal  *float64
	KnownExtras float64
	KnownTax    float64
}

type PricingFields struct {
	VehicleTotal  *float64
	ExtrasTotal   *float64
	TaxTotal      *float64
	DiscountTotal *float64
	GrandTotal    *float64
}

func round2(f float64) schema.RoundedFloat {
	d := decimal.NewFromFloat(f).Round(2)
	v, _ := d.Float64()
	return schema.RoundedFloat(v)
}

func fromFields(currency string, f *PricingFields) schema.PriceBreakdown {
	vehicle := decimal.NewFromFloat(deref(f.VehicleTotal))
	extras := decimal.NewFromFloat(deref(f.ExtrasTotal))
	tax := decimal.NewFromFloat(deref(f.TaxTotal))
	discount := decimal.NewFromFloat(deref(f.DiscountTotal))

	grand := vehicle.Add(extras).Add(tax).Sub(discount)
	if f.GrandTotal != nil {
		grand = decimal.NewFromFloat(*f.GrandTotal)
		if f.VehicleTotal == nil {
			// grand total is authoritative, back the vehicle part out of it
			vehicle = grand.Sub(extras).Sub(tax).Add(discount)
		}
	}

	grandValue, _ := grand.Round(2).Float64()
	vehicleValue, _ := vehicle.Round(2).Float64()
	extrasValue, _ := extras.Round(2).Float64()
	taxValue, _ := tax.Round(2).Float64()
	discountValue, _ := discount.Round(2).Float64()

	return schema.PriceBreakdown{
		Currency:      currency,
		VehicleTotal:  schema.RoundedFloat(vehicleValue),
		ExtrasTotal:   schema.RoundedFloat(extrasValue),
		TaxTotal:      schema.RoundedFloat(taxValue),
		DiscountTotal: schema.RoundedFloat(discountValue),
		GrandTotal:    schema.RoundedFloat(grandValue),
	}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// ResolveBreakdown applies the pricing precedence and returns a breakdown in
// the supplier's currency.
func ResolveBreakdown(in PricingInput) schema.PriceBreakdown {
	currency := NormalizeCurrencyCode(in.Currency)

	if in.ProviderPricing != nil {
		return fromFields(currency, in.ProviderPricing)
	}

	if in.TopLevel != nil {
		return fromFields(currency, in.TopLevel)
	}

	grand := deref(in.GrandTotal)
	vehicle := grand - in.KnownExtras - in.KnownTax

	return schema.PriceBreakdown{
		Currency:     currency,
		VehicleTotal: round2(vehicle),
		ExtrasTotal:  round2(in.KnownExtras),
		TaxTotal:     round2(in.KnownTax),
		GrandTotal:   round2(grand),
	}
}
