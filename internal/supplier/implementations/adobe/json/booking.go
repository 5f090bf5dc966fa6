package json

type BookingRQ struct {
	PickupOffice string `json:"pickupoffice"`
	ReturnOffice string `json:"returnoffice"`
	StartDate    string `json:"startdate"`
	EndDate      string `json:"enddate"`
	Category     string `json:"category"`
	CustomerCode string `json:"customerCode"`
	Name         string `json:"name"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	// Items are selected protection/extra codes with quantity.
	Items []BookingRQItem `json:"items,omitempty"`
}

type BookingRQItem struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

type BookingRS struct {
	Envelope
	Data *BookingData `json:"data"`
}

type BookingData struct {
	BookingNumber string        `json:"bookingNumber"`
	Items         []BookingItem `json:"items"`
}

// BookingItem is one protection or extra line on a booking. Type carries the
// supplier's own tag, Included marks bundled protections.
type BookingItem struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Included bool    `json:"included"`
	Required bool    `json:"required"`
}
