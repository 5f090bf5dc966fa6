// Package soap carries the OK Mobility RentaCarWebService payloads. Requests
// go out as SOAP 1.1 with the vendor's "get" namespace prefix on every
// element, replies come back with whatever prefix the endpoint felt like so
// response structs match on local names only.
package soap

import xmlEncoding "encoding/xml"

const (
	soapEnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	wsdlNamespace         = "http://www.OKGroup.es/RentaCarWebService/getWSDL"
)

type RequestEnvelope struct {
	XMLName      xmlEncoding.Name `xml:"soapenv:Envelope"`
	XmlnsSoapEnv string           `xml:"xmlns:soapenv,attr"`
	XmlnsGet     string           `xml:"xmlns:get,attr"`
	Header       struct{}         `xml:"soapenv:Header"`
	Body         RequestBody      `xml:"soapenv:Body"`
}

type RequestBody struct {
	MultiplePrices    *MultiplePricesRQ    `xml:"get:getMultiplePricesRequest,omitempty"`
	CreateReservation *CreateReservationRQ `xml:"get:createReservation,omitempty"`
}

func NewRequestEnvelope(body RequestBody) RequestEnvelope {
	return RequestEnvelope{
		XmlnsSoapEnv: soapEnvelopeNamespace,
		XmlnsGet:     wsdlNamespace,
		Body:         body,
	}
}

type MultiplePricesRQ struct {
	ObjRequest MultiplePricesParams `xml:"get:objRequest"`
}

type MultiplePricesParams struct {
	CustomerCode  string      `xml:"get:customerCode"`
	CompanyCode   string      `xml:"get:companyCode"`
	PickUp        RentalPoint `xml:"get:pickUp"`
	DropOff       RentalPoint `xml:"get:dropOff"`
	ExtendedModel bool        `xml:"get:extendedModel"`
}

type RentalPoint struct {
	Date          string `xml:"get:Date"`
	RentalStation string `xml:"get:rentalStation"`
}

type CreateReservationRQ struct {
	ObjRequest ReservationParams `xml:"get:objRequest"`
}

type ReservationParams struct {
	CustomerCode string `xml:"get:customerCode"`
	CompanyCode  string `xml:"get:companyCode"`
	RateCode     string `xml:"get:rateCode"`
	// MessageType N creates, M modifies.
	MessageType  string `xml:"get:MessageType"`
	Reference    string `xml:"get:Reference"`
	Token        string `xml:"get:token"`
	GroupCode    string `xml:"get:groupCode"`
	PickUp       Stop   `xml:"get:PickUp"`
	DropOff      Stop   `xml:"get:DropOff"`
	Driver       Driver `xml:"get:Driver"`
	Observations string `xml:"get:Observations"`
	// Extras is a comma joined list of extra ids.
	Extras string `xml:"get:Extras"`
}

type Stop struct {
	Date          string `xml:"get:Date"`
	RentalStation string `xml:"get:rentalStation"`
	Place         string `xml:"get:Place,omitempty"`
	Flight        string `xml:"get:Flight,omitempty"`
}

type Driver struct {
	Name                string `xml:"get:Name"`
	Address             string `xml:"get:Address"`
	City                string `xml:"get:City"`
	PostalCode          string `xml:"get:Postal_code"`
	Phone               string `xml:"get:Phone"`
	DriverLicenceNumber string `xml:"get:DriverLicenceNumber"`
	EMail               string `xml:"get:EMail"`
	Country             string `xml:"get:Country"`
	DateOfBirth         string `xml:"get:Date_of_Birth"`
}
