package schema

// Source tags for everything that can put a vehicle into a search result.
const (
	SourceInternal    = "internal"
	SourceAdobe       = "adobe"
	SourceGreenMotion = "greenmotion"
	SourceUSave       = "usave"
	SourceOkMobility  = "okmobility"
	SourceRenteon     = "renteon"
	SourceLocauto     = "locauto"
	SourceWheelsys    = "wheelsys"
)

type VehicleStatus string

const (
	Available   VehicleStatus = "AVAILABLE"
	OnRequest   VehicleStatus = "ON_REQUEST"
	Unavailable VehicleStatus = "UNAVAILABLE"
)

type PriceAmount struct {
	Amount   RoundedFloat `json:"amount"`
	Currency string       `json:"currency"`
}

type Mileage struct {
	Unlimited     bool     `json:"unlimited"`
	IncludedKm    *int     `json:"includedKm,omitempty"`
	ExtraKmCharge *float64 `json:"extraKmCharge,omitempty"`
}

// DepositInfo is the deposit/excess block extracted from whichever corner of
// the supplier payload happened to carry it. Amounts are in the supplier's
// currency.
type DepositInfo struct {
	DepositAmount     *float64 `json:"depositAmount,omitempty"`
	ExcessAmount      *float64 `json:"excessAmount,omitempty"`
	ExcessTheftAmount *float64 `json:"excessTheftAmount,omitempty"`
	Currency          string   `json:"currency,omitempty"`
}

// Vehicle is the canonical search-result vehicle, independent of supplier.
// It is immutable per search result and only ever persisted as part of a
// booking snapshot.
type Vehicle struct {
	Source             string         `json:"source"`
	SupplierVehicleID  string         `json:"supplierVehicleId"`
	Brand              string         `json:"brand,omitempty"`
	Model              string         `json:"model"`
	Category           string         `json:"category,omitempty"`
	AcrissCode         *string        `json:"acrissCode,omitempty"`
	Transmission       string         `json:"transmission,omitempty"`
	Fuel               string         `json:"fuel,omitempty"`
	Seats              *int           `json:"seats,omitempty"`
	Doors              *int           `json:"doors,omitempty"`
	BigSuitcases       *int           `json:"bigSuitcases,omitempty"`
	SmallSuitcases     *int           `json:"smallSuitcases,omitempty"`
	HasAirco           *bool          `json:"hasAirco,omitempty"`
	ImageUrl           *string        `json:"imageUrl,omitempty"`
	DailyPrice         PriceAmount    `json:"dailyPrice"`
	Breakdown          PriceBreakdown `json:"breakdown"`
	Deposit            *DepositInfo   `json:"deposit,omitempty"`
	Mileage            *Mileage       `json:"mileage,omitempty"`
	CancellationPolicy *string        `json:"cancellationPolicy,omitempty"`
	RateReference      *string        `json:"rateReference,omitempty"`
	Status             VehicleStatus  `json:"status"`
	Extras             []Extra        `json:"extras,omitempty"`
}

// ID is the composite identity of a search-result vehicle.
func (v Vehicle) ID() string {
	return v.Source + ":" + v.SupplierVehicleID
}

type Location struct {
	Code      string   `json:"code"`
	Name      string   `json:"name,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}
