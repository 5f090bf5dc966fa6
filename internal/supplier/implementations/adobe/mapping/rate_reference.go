package mapping

// SupplierRateReference pins the Adobe office/category/date combination a
// quote was produced for. It travels opaque through the booking flow and is
// unmarshalled again at reservation time.
type SupplierRateReference struct {
	PickupOffice string `json:"pickupOffice"`
	ReturnOffice string `json:"returnOffice"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Category     string `json:"category"`
}
