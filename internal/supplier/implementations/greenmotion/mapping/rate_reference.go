package mapping

// SupplierRateReference keeps the quote the reservation must replay. The
// quote id alone is not enough, the webservice wants the full original
// search context back.
type SupplierRateReference struct {
	QuoteId           string `json:"quoteId"`
	VehicleId         string `json:"vehicleId"`
	LocationId        string `json:"locationId"`
	DropOffLocationId string `json:"dropOffLocationId,omitempty"`
	StartDate         string `json:"startDate"`
	StartTime         string `json:"startTime"`
	EndDate           string `json:"endDate"`
	EndTime           string `json:"endTime"`
	RentalCode        string `json:"rentalCode"`
	Age               int    `json:"age"`
}
