package json

// AvailableVehiclesRQ are the query params of GET /Vehicles/Available.
type AvailableVehiclesRQ struct {
	PickupOffice string `url:"pickupoffice"`
	ReturnOffice string `url:"returnoffice"`
	StartDate    string `url:"startdate"`
	EndDate      string `url:"enddate"`
	Age          int    `url:"age,omitempty"`
}

type AvailableVehiclesRS struct {
	Envelope
	Data *AvailableVehiclesData `json:"data"`
}

type AvailableVehiclesData struct {
	Vehicles []AvailableVehicle `json:"vehicles"`
}

type AvailableVehicle struct {
	Category     string  `json:"category"`
	Model        string  `json:"model"`
	Acriss       string  `json:"acriss"`
	Transmission string  `json:"transmission"`
	Fuel         string  `json:"fuel"`
	Seats        int     `json:"seats"`
	Doors        int     `json:"doors"`
	Suitcases    int     `json:"suitcases"`
	ImageUrl     string  `json:"imageUrl"`
	// Pli is the daily rate, tax inclusive.
	Pli        float64  `json:"pli"`
	Total      *float64 `json:"total"`
	TaxTotal   *float64 `json:"taxTotal"`
	Currency   string   `json:"currency"`
	Deposit    *float64 `json:"deposit"`
	Excess     *float64 `json:"excess"`
	Available  bool     `json:"available"`
}
