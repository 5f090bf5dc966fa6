package mapping

type SupplierRateReference struct {
	GroupCode     string  `json:"groupCode"`
	DailyRate     float64 `json:"dailyRate"`
	PickUpStation string  `json:"pickUpStation"`
	ReturnStation string  `json:"returnStation"`
	DateFrom      string  `json:"dateFrom"`
	TimeFrom      string  `json:"timeFrom"`
	DateTo        string  `json:"dateTo"`
	TimeTo        string  `json:"timeTo"`
}
