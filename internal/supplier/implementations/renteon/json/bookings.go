package json

type BookingRQ struct {
	ProviderCode string          `json:"provider_code"`
	Vehicle      BookingVehicle  `json:"vehicle"`
	Customer     BookingCustomer `json:"customer"`
	Booking      BookingDetails  `json:"booking"`
}

type BookingVehicle struct {
	Id        string  `json:"id"`
	DailyRate float64 `json:"daily_rate,omitempty"`
	Currency  string  `json:"currency,omitempty"`
}

type BookingCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country,omitempty"`
}

type BookingDetails struct {
	PickupLocationCode  string `json:"pickup_location_code"`
	DropoffLocationCode string `json:"dropoff_location_code"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	Reference           string `json:"reference,omitempty"`
}

type BookingRS struct {
	Id     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
