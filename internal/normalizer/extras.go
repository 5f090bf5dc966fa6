package normalizer

import "bitbucket.org/crgw/booking-engine/internal/schema"

// protection type tags seen across suppliers. Categorization is by tag, not
// by name matching.
var protectionTags = map[string]bool{
	"coverage":   true,
	"insurance":  true,
	"protection": true,
	"cdw":        true,
	"scdw":       true,
	"tp":         true,
	"pai":        true,
}

func CategorizeExtra(typeTag string) schema.ExtraType {
	if protectionTags[typeTag] {
		return schema.ExtraTypeProtection
	}
	return schema.ExtraTypeEquipment
}

// MergeSelectedExtras builds the reservation extras list from what the
// supplier offers and what the customer picked. Required and included items
// always go out with quantity 1 regardless of selection; optional ones only
// when selected.
func MergeSelectedExtras(available []schema.Extra, selected map[string]int) []schema.Extra {
	merged := []schema.Extra{}

	for _, extra := range available {
		if extra.Required || extra.Included {
			forced := extra
			forced.Quantity = 1
			forced.Total = forced.UnitPrice
			if extra.Included {
				forced.Total = schema.PriceAmount{Amount: 0, Currency: extra.UnitPrice.Currency}
			}
			merged = append(merged, forced)
			continue
		}

		quantity := selected[extra.Code]
		if quantity <= 0 {
			continue
		}

		picked := extra
		picked.Quantity = quantity
		picked.Total = schema.PriceAmount{
			Amount:   schema.RoundedFloat(float64(extra.UnitPrice.Amount) * float64(quantity)),
			Currency: extra.UnitPrice.Currency,
		}
		merged = append(merged, picked)
	}

	return merged
}
