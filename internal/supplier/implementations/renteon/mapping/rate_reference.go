package mapping

type SupplierRateReference struct {
	VehicleId           string  `json:"vehicleId"`
	DailyRate           float64 `json:"dailyRate"`
	Currency            string  `json:"currency"`
	PickupLocationCode  string  `json:"pickupLocationCode"`
	DropoffLocationCode string  `json:"dropoffLocationCode"`
	StartDate           string  `json:"startDate"`
	EndDate             string  `json:"endDate"`
}
