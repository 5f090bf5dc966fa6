package xml

import xmlEncoding "encoding/xml"

type Header struct {
	Username string `xml:"username"`
	Password string `xml:"password"`
	Version  string `xml:"version"`
}

type GetVehiclesRQ struct {
	XMLName    xmlEncoding.Name  `xml:"gm_webservice"`
	Header     Header            `xml:"header"`
	Request    GetVehiclesParams `xml:"request"`
}

type GetVehiclesParams struct {
	Type       string `xml:"type,attr"`
	LocationId string `xml:"location_id"`
	StartDate  string `xml:"start_date"`
	StartTime  string `xml:"start_time"`
	EndDate    string `xml:"end_date"`
	EndTime    string `xml:"end_time"`
	RentalCode string `xml:"rentalCode"`
	Age        int    `xml:"age"`
}

type MakeReservationRQ struct {
	XMLName xmlEncoding.Name      `xml:"gm_webservice"`
	Header  Header                `xml:"header"`
	Request MakeReservationParams `xml:"request"`
}

type MakeReservationParams struct {
	Type              string   `xml:"type,attr"`
	LocationId        string   `xml:"location_id"`
	DropOffLocationId string   `xml:"dropoff_location_id,omitempty"`
	StartDate         string   `xml:"start_date"`
	StartTime         string   `xml:"start_time"`
	EndDate           string   `xml:"end_date"`
	EndTime           string   `xml:"end_time"`
	RentalCode        string   `xml:"rentalCode"`
	Age               int      `xml:"age"`
	Customer          Customer `xml:"customer"`
	Options           Options  `xml:"options"`
}

type Customer struct {
	Title               string `xml:"title"`
	Firstname           string `xml:"firstname"`
	Surname             string `xml:"surname"`
	Email               string `xml:"email"`
	Phone               string `xml:"phone"`
	Address1            string `xml:"address1"`
	Town                string `xml:"town"`
	Postcode            string `xml:"postcode"`
	Country             string `xml:"country"`
	DriverLicenceNumber string `xml:"driver_licence_number"`
	FlightNumber        string `xml:"flight_number"`
	Comments            string `xml:"comments"`
}

type Options struct {
	Options []SelectedOption `xml:"option"`
}

type SelectedOption struct {
	Id          string `xml:"id,attr"`
	OptionQty   int    `xml:"option_qty,attr"`
	OptionTotal string `xml:"option_total,attr"`
	PrePay      string `xml:"pre_pay,attr"`
}

// GMWebServiceRS is the envelope of every gm_webservice reply. Which child
// is populated depends on the request type.
type GMWebServiceRS struct {
	XMLName  xmlEncoding.Name `xml:"gm_webservice"`
	Error    *ResponseError   `xml:"error"`
	Response *Response        `xml:"response"`
}

type ResponseError struct {
	Message string `xml:"message"`
}

func (r GMWebServiceRS) ErrorMessage() string {
	if r.Error != nil {
		if r.Error.Message != "" {
			return r.Error.Message
		}
		return "supplier rejected the request"
	}
	return ""
}

type Response struct {
	Vehicles   *Vehicles `xml:"vehicles"`
	BookingRef string    `xml:"booking_ref"`
	Status     string    `xml:"status"`
}

type Vehicles struct {
	Vehicles []Vehicle `xml:"vehicle"`
}

type Vehicle struct {
	Id           string         `xml:"id,attr"`
	Name         string         `xml:"name,attr"`
	Group        string         `xml:"group,attr"`
	Acriss       string         `xml:"acriss,attr"`
	QuoteId      string         `xml:"quoteid"`
	Total        float64        `xml:"total"`
	Currency     string         `xml:"currency"`
	Deposit      *float64       `xml:"deposit"`
	Excess       *float64       `xml:"excess"`
	Fuel         string         `xml:"fuel"`
	Transmission string         `xml:"transmission"`
	Adults       *int           `xml:"adults"`
	Doors        *int           `xml:"doors"`
	LuggageLarge *int           `xml:"luggage_large"`
	LuggageSmall *int           `xml:"luggage_small"`
	Aircon       string         `xml:"aircon"`
	Status       string         `xml:"status"`
	Options      *VehicleOptions `xml:"options"`
}

type VehicleOptions struct {
	Options []VehicleOption `xml:"option"`
}

type VehicleOption struct {
	Id        string  `xml:"id,attr"`
	Name      string  `xml:"name,attr"`
	Type      string  `xml:"type,attr"`
	DailyRate float64 `xml:"daily_rate,attr"`
	Total     float64 `xml:"total,attr"`
	PrePay    string  `xml:"prepay,attr"`
	Required  string  `xml:"required,attr"`
	Included  string  `xml:"included,attr"`
}
