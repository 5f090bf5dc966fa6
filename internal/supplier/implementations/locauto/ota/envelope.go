// Package ota carries the OTA 2003/05 payloads for the Locauto NextRent
// webservice. Requests need the ns1/ns2 prefixes spelled out, the endpoint
// rejects default-namespace envelopes. Responses are matched on local names.
package ota

import xmlEncoding "encoding/xml"

const (
	soapEnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	otaNamespace          = "http://www.opentravel.org/OTA/2003/05"
	nextRentNamespace     = "https://nextrent.locautorent.com"
)

type RequestEnvelope struct {
	XMLName       xmlEncoding.Name `xml:"SOAP-ENV:Envelope"`
	XmlnsSoapEnv  string           `xml:"xmlns:SOAP-ENV,attr"`
	XmlnsOta      string           `xml:"xmlns:ns1,attr"`
	XmlnsNextRent string           `xml:"xmlns:ns2,attr"`
	Body          RequestBody      `xml:"SOAP-ENV:Body"`
}

type RequestBody struct {
	VehAvailRate *VehAvailRateWrapper `xml:"ns2:OTA_VehAvailRateRS,omitempty"`
	VehRes       *VehResWrapper       `xml:"ns2:OTA_VehResRS,omitempty"`
}

func NewRequestEnvelope(body RequestBody) RequestEnvelope {
	return RequestEnvelope{
		XmlnsSoapEnv:  soapEnvelopeNamespace,
		XmlnsOta:      otaNamespace,
		XmlnsNextRent: nextRentNamespace,
		Body:          body,
	}
}

type POS struct {
	Source Source `xml:"ns1:Source"`
}

type Source struct {
	ISOCountry  string      `xml:"ISOCountry,attr"`
	ISOCurrency string      `xml:"ISOCurrency,attr"`
	RequestorID RequestorID `xml:"ns1:RequestorID"`
}

type RequestorID struct {
	IDContext       string `xml:"ID_Context,attr"`
	MessagePassword string `xml:"MessagePassword,attr"`
}

type Location struct {
	LocationCode string `xml:"LocationCode,attr"`
}

type VehRentalCore struct {
	PickUpDateTime string   `xml:"PickUpDateTime,attr"`
	ReturnDateTime string   `xml:"ReturnDateTime,attr"`
	PickUpLocation Location `xml:"ns1:PickUpLocation"`
	ReturnLocation Location `xml:"ns1:ReturnLocation"`
}
