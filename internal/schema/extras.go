package schema

type ExtraType string

const (
	ExtraTypeProtection ExtraType = "protection"
	ExtraTypeEquipment  ExtraType = "equipment"
)

// Extra is a canonical optional/required add-on. Required and included
// extras always travel back to the supplier on reservation creation.
type Extra struct {
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      ExtraType   `json:"type"`
	Quantity  int         `json:"quantity"`
	UnitPrice PriceAmount `json:"unitPrice"`
	Total     PriceAmount `json:"total"`
	Included  bool        `json:"included"`
	Required  bool        `json:"required"`
}
