package json

// SearchRQ is the query string for api/vehicles/search.
type SearchRQ struct {
	PickupLocationCode  string `url:"pickup_location_code"`
	DropoffLocationCode string `url:"dropoff_location_code"`
	StartDate           string `url:"start_date"`
	EndDate             string `url:"end_date"`
	ProviderCode        string `url:"provider_code"`
}

// Vehicle search replies come back as a bare array of these.
type Vehicle struct {
	Id                 string   `json:"id"`
	Make               string   `json:"make"`
	Model              string   `json:"model"`
	Category           string   `json:"category"`
	Acriss             string   `json:"acriss_code"`
	Seats              *int     `json:"seats"`
	Doors              *int     `json:"doors"`
	Transmission       string   `json:"transmission"`
	FuelType           string   `json:"fuel_type"`
	DailyRate          float64  `json:"daily_rate"`
	Currency           string   `json:"currency"`
	ImageUrl           string   `json:"image_url"`
	PickupLocationCode string   `json:"pickup_location_code"`
	Mileage            string   `json:"mileage"`
	Features           []string `json:"features"`
}
