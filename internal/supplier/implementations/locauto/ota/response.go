package ota

import xmlEncoding "encoding/xml"

type ResponseEnvelope struct {
	XMLName xmlEncoding.Name `xml:"Envelope"`
	Body    ResponseBody     `xml:"Body"`
}

type ResponseBody struct {
	VehAvailRate *VehAvailRateRSResponse `xml:"OTA_VehAvailRateRSResponse"`
	VehRes       *VehResRSResponse       `xml:"OTA_VehResRSResponse"`
}

type VehAvailRateRSResponse struct {
	Result VehAvailRateRSResult `xml:"OTA_VehAvailRateRSResult"`
}

type VehAvailRateRSResult struct {
	ErrorsMixin
	VehAvailRSCore *VehAvailRSCore `xml:"VehAvailRSCore"`
}

type VehResRSResponse struct {
	Result VehResRSResult `xml:"OTA_VehResRSResult"`
}

type VehResRSResult struct {
	ErrorsMixin
	UniqueID *UniqueID `xml:"UniqueID"`
}

type UniqueID struct {
	Type string `xml:"Type,attr"`
	ID   string `xml:"ID,attr"`
}

type ErrorsMixin struct {
	Success *struct{} `xml:"Success"`
	Errors  *Errors   `xml:"Errors"`
}

func (m ErrorsMixin) ErrorMessage() string {
	if m.Errors == nil || len(m.Errors.Error) == 0 {
		return ""
	}

	e := m.Errors.Error[0]
	if e.Text != "" {
		return e.Text
	}
	if e.ShortText != "" {
		return e.ShortText
	}
	return "supplier rejected the request"
}

type Errors struct {
	Error []Error `xml:"Error"`
}

type Error struct {
	Type      string `xml:"Type,attr"`
	ShortText string `xml:"ShortText,attr"`
	Code      string `xml:"Code,attr"`
	Text      string `xml:",chardata"`
}

type VehAvailRSCore struct {
	VehVendorAvails VehVendorAvails `xml:"VehVendorAvails"`
}

type VehVendorAvails struct {
	VehVendorAvail VehVendorAvail `xml:"VehVendorAvail"`
}

type VehVendorAvail struct {
	VehAvails VehAvails `xml:"VehAvails"`
}

type VehAvails struct {
	VehAvail []VehAvail `xml:"VehAvail"`
}

type VehAvail struct {
	VehAvailCore VehAvailCore `xml:"VehAvailCore"`
}

type VehAvailCore struct {
	Status       string        `xml:"Status,attr"`
	Vehicle      Vehicle       `xml:"Vehicle"`
	RentalRate   *RentalRate   `xml:"RentalRate"`
	TotalCharge  *TotalCharge  `xml:"TotalCharge"`
	PricedEquips *PricedEquips `xml:"PricedEquips"`
}

// Vehicle's ModelYear attribute carries the display name, not a year. That is
// how the NextRent endpoint ships it.
type Vehicle struct {
	Code              string       `xml:"Code,attr"`
	TransmissionType  string       `xml:"TransmissionType,attr"`
	PassengerQuantity *int         `xml:"PassengerQuantity,attr"`
	BaggageQuantity   *int         `xml:"BaggageQuantity,attr"`
	VehMakeModel      VehMakeModel `xml:"VehMakeModel"`
	VehType           *VehType     `xml:"VehType"`
	PictureURL        string       `xml:"PictureURL"`
}

type VehMakeModel struct {
	Name      string `xml:"Name,attr"`
	Code      string `xml:"Code,attr"`
	ModelYear string `xml:"ModelYear,attr"`
}

type VehType struct {
	DoorCount *int `xml:"DoorCount,attr"`
}

type TotalCharge struct {
	RateTotalAmount float64 `xml:"RateTotalAmount,attr"`
	CurrencyCode    string  `xml:"CurrencyCode,attr"`
}

type RentalRate struct {
	VehicleCharges VehicleCharges `xml:"VehicleCharges"`
}

type VehicleCharges struct {
	VehicleCharge []VehicleCharge `xml:"VehicleCharge"`
}

type VehicleCharge struct {
	Amount       float64 `xml:"Amount,attr"`
	CurrencyCode string  `xml:"CurrencyCode,attr"`
	Purpose      string  `xml:"Purpose,attr"`
}

type PricedEquips struct {
	PricedEquip []PricedEquip `xml:"PricedEquip"`
}

type PricedEquip struct {
	Equipment Equipment `xml:"Equipment"`
	Charge    *Charge   `xml:"Charge"`
}

type Equipment struct {
	EquipType   string `xml:"EquipType,attr"`
	Description string `xml:"Description"`
}

type Charge struct {
	Amount         float64 `xml:"Amount,attr"`
	CurrencyCode   string  `xml:"CurrencyCode,attr"`
	IncludedInRate string  `xml:"IncludedInRate,attr"`
}
