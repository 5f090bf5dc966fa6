package normalizer

import "bitbucket.org/crgw/booking-engine/internal/schema"

// FindDeposit scans the candidate blocks in priority order (benefits,
// top-level, provider_pricing) and returns the first one carrying any
// deposit/excess data. Suppliers are inconsistent about where they put this,
// so all three locations must be checked before concluding there is none.
func FindDeposit(candidates ...*schema.DepositInfo) *schema.DepositInfo {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if c.DepositAmount != nil || c.ExcessAmount != nil || c.ExcessTheftAmount != nil {
			return c
		}
	}
	return nil
}
